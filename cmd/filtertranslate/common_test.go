package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/oukeidos/filtertranslate/internal/auth"
	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/pipeline"
	"github.com/oukeidos/filtertranslate/internal/translator"
)

type keyStubs struct {
	promptCalls int
	keyCalls    int
	envCalls    int
}

func withKeyStubs(t *testing.T, terminal bool, promptVal string, keychainVal string, envVal string) *keyStubs {
	t.Helper()
	stubs := &keyStubs{}

	prevIsTerminal := isTerminal
	prevPrompt := promptForKey
	prevGetKey := getKey
	prevGetEnv := getEnvKey

	isTerminal = func(_ int) bool { return terminal }
	promptForKey = func(_ string) (string, error) {
		stubs.promptCalls++
		return promptVal, nil
	}
	getKey = func(_ string, _ bool) (string, string) {
		stubs.keyCalls++
		if keychainVal == "" {
			return "", ""
		}
		return keychainVal, auth.SourceKeychain
	}
	getEnvKey = func(_ string) (string, bool) {
		stubs.envCalls++
		if envVal == "" {
			return "", false
		}
		return envVal, true
	}

	t.Cleanup(func() {
		isTerminal = prevIsTerminal
		promptForKey = prevPrompt
		getKey = prevGetKey
		getEnvKey = prevGetEnv
	})
	return stubs
}

func TestResolveAPIKey_KeychainFirst(t *testing.T) {
	stubs := withKeyStubs(t, true, "", "keychain-key", "env-key")

	key, source, err := resolveAPIKey("gemini", true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "keychain-key" || source != auth.SourceKeychain {
		t.Fatalf("expected keychain key/source, got key=%q source=%q", key, source)
	}
	if stubs.envCalls != 0 {
		t.Fatalf("expected no env calls, got envCalls=%d", stubs.envCalls)
	}
}

func TestResolveAPIKey_EnvFallbackWhenAllowed(t *testing.T) {
	stubs := withKeyStubs(t, false, "", "", "env-key")

	key, source, err := resolveAPIKey("openai", true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "env-key" || source != auth.SourceEnv {
		t.Fatalf("expected env key/source, got key=%q source=%q", key, source)
	}
	if stubs.envCalls == 0 {
		t.Fatalf("expected env call")
	}
}

func TestResolveAPIKey_Errors(t *testing.T) {
	cases := []struct {
		name     string
		terminal bool
		keychain string
		env      string
		allowEnv bool
		envOnly  bool
		wantMsg  string
	}{
		{name: "env_disabled", env: "env-key", wantMsg: "non-interactive"},
		{name: "non_interactive", wantMsg: "non-interactive"},
		{name: "env_only_missing", keychain: "keychain-key", envOnly: true, wantMsg: "GEMINI_API_KEY"},
		{name: "prompt_skipped", terminal: true, wantMsg: "use --allow-env"},
		{name: "prompt_skipped_env_allowed", terminal: true, allowEnv: true, wantMsg: "keychain or environment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withKeyStubs(t, tc.terminal, "", tc.keychain, tc.env)
			key, _, err := resolveAPIKey("gemini", tc.allowEnv, tc.envOnly)
			if err == nil {
				t.Fatalf("expected error, got key=%q", key)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error = %q, want contains %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestResolveAPIKey_EnvOnlySkipsKeychainAndPrompt(t *testing.T) {
	stubs := withKeyStubs(t, true, "prompt-key", "keychain-key", "env-key")

	key, source, err := resolveAPIKey("gemini", false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "env-key" || source != auth.SourceEnv {
		t.Fatalf("expected env key/source, got key=%q source=%q", key, source)
	}
	if stubs.promptCalls != 0 || stubs.keyCalls != 0 {
		t.Fatalf("expected no prompt/keychain calls, got promptCalls=%d keyCalls=%d", stubs.promptCalls, stubs.keyCalls)
	}
}

func TestResolveAPIKey_PromptFallback(t *testing.T) {
	stubs := withKeyStubs(t, true, "  prompt-key ", "", "")

	key, source, err := resolveAPIKey("gemini", false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "prompt-key" || source != "Terminal Prompt" {
		t.Fatalf("expected prompt key/source, got key=%q source=%q", key, source)
	}
	if stubs.keyCalls == 0 {
		t.Fatalf("expected keychain lookup before prompt")
	}
}

func TestPrintExecutionStats(t *testing.T) {
	t.Run("skipped_without_status", func(t *testing.T) {
		buf := &bytes.Buffer{}
		printExecutionStats(buf, pipeline.TranslationResult{}, time.Second)
		if buf.Len() != 0 {
			t.Fatalf("expected no output, got %q", buf.String())
		}
	})

	t.Run("llm_usage", func(t *testing.T) {
		buf := &bytes.Buffer{}
		printExecutionStats(buf, pipeline.TranslationResult{
			Status:        pipeline.TranslationStatusSuccess,
			Backend:       "openai",
			Model:         "gpt-4o-mini",
			OutputPath:    "out.txt",
			Report:        translator.Report{Lines: 10, Passthrough: 3, Batches: 2, Calls: 2, Chars: 120, Completed: 2},
			Usage:         engine.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
			EstimatedCost: 0.00045,
		}, 1500*time.Millisecond)
		out := buf.String()
		for _, want := range []string{
			"--- Execution Stats ---",
			"Status: Success",
			"Time: 1.5s",
			"Backend: openai (gpt-4o-mini)",
			"Lines: 10 (passthrough 3, truncated 0)",
			"Requests: 2 of 2 batches completed, 2 calls, 120 chars",
			"Tokens: In=100, Out=50, Total=150",
			"Estimated Cost: $0.00045",
			"Output: out.txt",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q in:\n%s", want, out)
			}
		}
	})

	t.Run("failure_without_output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		printExecutionStats(buf, pipeline.TranslationResult{
			Status:  pipeline.TranslationStatusFailure,
			Backend: "google",
		}, time.Second)
		out := buf.String()
		if strings.Contains(out, "Output:") || strings.Contains(out, "Tokens:") {
			t.Fatalf("unexpected lines in:\n%s", out)
		}
		if !strings.Contains(out, "Backend: google\n") {
			t.Fatalf("missing backend line in:\n%s", out)
		}
	})
}
