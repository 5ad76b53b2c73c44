package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oukeidos/filtertranslate/internal/auth"
	"github.com/oukeidos/filtertranslate/internal/logger"
	"github.com/oukeidos/filtertranslate/internal/metadata"
	"github.com/oukeidos/filtertranslate/internal/pipeline"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	promptForKey = auth.PromptForAPIKey
)

func serviceLabel(service string) string {
	if b, ok := metadata.LookupBackend(service); ok {
		return b.Label
	}
	return service
}

// resolveAPIKey handles the logic for finding the API key.
func resolveAPIKey(service string, allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if key, ok := getEnvKey(service); ok {
			return key, auth.SourceEnv, nil
		}
		return "", "", fmt.Errorf("env-only set but %s is not set", auth.EnvVar(service))
	}

	if key, source := getKey(service, false); key != "" {
		return key, source, nil
	}

	if allowEnv {
		if key, ok := getEnvKey(service); ok {
			return key, auth.SourceEnv, nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no API key available (non-interactive shell); run 'filtertranslate key setup --service %s' or use --allow-env", service)
	}

	key, err := promptForKey(fmt.Sprintf("%s API Key (press Enter to skip): ", serviceLabel(service)))
	if err != nil {
		return "", "", fmt.Errorf("error reading API key: %w", err)
	}
	if key = strings.TrimSpace(key); key != "" {
		return key, "Terminal Prompt", nil
	}

	if allowEnv {
		return "", "", fmt.Errorf("API key is required; not found in keychain or environment")
	}
	return "", "", fmt.Errorf("API key is required; not found in keychain (environment disabled by default; use --allow-env)")
}

func printExecutionStats(w io.Writer, result pipeline.TranslationResult, duration time.Duration) {
	if result.Status == "" {
		return
	}
	r := result.Report
	fmt.Fprintln(w, "\n--- Execution Stats ---")
	fmt.Fprintf(w, "Status: %s\n", result.Status)
	fmt.Fprintf(w, "Time: %s\n", duration.Round(time.Millisecond))
	if result.Model != "" {
		fmt.Fprintf(w, "Backend: %s (%s)\n", result.Backend, result.Model)
	} else {
		fmt.Fprintf(w, "Backend: %s\n", result.Backend)
	}
	fmt.Fprintf(w, "Lines: %d (passthrough %d, truncated %d)\n", r.Lines, r.Passthrough, r.Truncated)
	fmt.Fprintf(w, "Requests: %d of %d batches completed, %d calls, %d chars\n", r.Completed, r.Batches, r.Calls, r.Chars)
	if u := result.Usage; u.TotalTokens > 0 {
		fmt.Fprintf(w, "Tokens: In=%d, Out=%d, Total=%d\n", u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	}
	if result.EstimatedCost > 0 {
		fmt.Fprintf(w, "Estimated Cost: $%.5f\n", result.EstimatedCost)
	}
	if result.OutputPath != "" {
		fmt.Fprintf(w, "Output: %s\n", result.OutputPath)
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
