package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/cloudtranslate"
	"github.com/oukeidos/filtertranslate/internal/engine"
)

func mockEngine(m *engine.MockEngine) func(context.Context, Config) (engine.Engine, error) {
	return func(context.Context, Config) (engine.Engine, error) { return m, nil }
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunTranslation_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := writeFile(t, tmpDir, "input.txt", "hallo\n")
	outPath := filepath.Join(tmpDir, "out.txt")
	mock := mockEngine(&engine.MockEngine{})

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "Same input and output",
			cfg:     Config{InputPath: inPath, OutputPath: inPath, NewEngine: mock},
			wantErr: "input and output files are the same",
		},
		{
			name:    "Filter without sign",
			cfg:     Config{InputPath: inPath, OutputPath: outPath, Filter: "^#", NewEngine: mock},
			wantErr: "filter argument must begin with + or -",
		},
		{
			name:    "Unknown backend",
			cfg:     Config{InputPath: inPath, OutputPath: outPath, Backend: "deepl"},
			wantErr: "unknown backend",
		},
		{
			name:    "Missing API key",
			cfg:     Config{InputPath: inPath, OutputPath: outPath, Backend: "gemini"},
			wantErr: "API key is required",
		},
		{
			name:    "Bad encoding",
			cfg:     Config{InputPath: inPath, OutputPath: outPath, Encoding: "ebcdic-klingon", NewEngine: mock},
			wantErr: "Unknown encoding",
		},
		{
			name:    "Negative rate limit",
			cfg:     Config{InputPath: inPath, OutputPath: outPath, RequestsPerSecond: -2, NewEngine: mock},
			wantErr: "rate limit must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunTranslation(context.Background(), tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("RunTranslation() error = %v, want %q", err, tt.wantErr)
			}
			if !apperrors.Is(err, apperrors.KindConfig) {
				t.Fatalf("expected config error, got %v", err)
			}
			if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
				t.Fatalf("no output may be written on configuration errors")
			}
		})
	}
}

func TestRunTranslation_GoogleWithoutCredentials(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(cloudtranslate.CredentialsEnvVar, "")
	inPath := writeFile(t, tmpDir, "input.txt", "hallo\n")

	_, err := RunTranslation(context.Background(), Config{InputPath: inPath, OutputPath: filepath.Join(tmpDir, "out.txt")})
	if !apperrors.Is(err, apperrors.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
	if !strings.Contains(err.Error(), cloudtranslate.CredentialsEnvVar) {
		t.Fatalf("error should name %s: %v", cloudtranslate.CredentialsEnvVar, err)
	}
}

func TestRunTranslation_Success(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := writeFile(t, tmpDir, "input.txt", "# kop\nhallo\nwereld\n")
	outPath := filepath.Join(tmpDir, "out.txt")
	m := &engine.MockEngine{}

	result, err := RunTranslation(context.Background(), Config{
		InputPath:  inPath,
		OutputPath: outPath,
		Filter:     "-^#",
		SourceLang: "nl",
		TargetLang: "zh",
		NewEngine:  mockEngine(m),
	})
	if err != nil {
		t.Fatalf("RunTranslation: %v", err)
	}
	if result.Status != TranslationStatusSuccess || result.OutputPath != outPath {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := m.Requests[0].TargetLang; got != "zh-CN" {
		t.Fatalf("target alias not resolved, got %q", got)
	}
	data, _ := os.ReadFile(outPath)
	if want := "# kop\n[zh-CN] hallo\n[zh-CN] wereld\n"; string(data) != want {
		t.Fatalf("output = %q, want %q", data, want)
	}
	if !m.Closed {
		t.Fatalf("backend client was not closed")
	}
	if result.Report.Chars != len("hallo\nwereld\n") || result.EstimatedCost <= 0 {
		t.Fatalf("unexpected report/cost: %+v", result)
	}
}

func TestRunTranslation_UnknownLanguagePassesThrough(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := writeFile(t, tmpDir, "input.txt", "hallo\n")
	m := &engine.MockEngine{}

	if _, err := RunTranslation(context.Background(), Config{
		InputPath:  inPath,
		OutputPath: filepath.Join(tmpDir, "out.txt"),
		TargetLang: "tlh",
		NewEngine:  mockEngine(m),
	}); err != nil {
		t.Fatalf("RunTranslation: %v", err)
	}
	if got := m.Requests[0].TargetLang; got != "tlh" {
		t.Fatalf("TargetLang = %q, want tlh", got)
	}
}

func TestRunTranslation_SameLanguagesReachBackend(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := writeFile(t, tmpDir, "input.txt", "hallo\n")
	m := &engine.MockEngine{}

	if _, err := RunTranslation(context.Background(), Config{
		InputPath:  inPath,
		OutputPath: filepath.Join(tmpDir, "out.txt"),
		SourceLang: "nl",
		TargetLang: "NL",
		NewEngine:  mockEngine(m),
	}); err != nil {
		t.Fatalf("RunTranslation: %v", err)
	}
	if m.Calls() != 1 || m.Requests[0].SourceLang != m.Requests[0].TargetLang {
		t.Fatalf("expected one nl->nl request, got %+v", m.Requests)
	}
}

func TestRunTranslation_CRLFAnchoredFilter(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := writeFile(t, tmpDir, "input.txt", "hallo;\r\nwereld\r\n")
	outPath := filepath.Join(tmpDir, "out.txt")
	m := &engine.MockEngine{}

	if _, err := RunTranslation(context.Background(), Config{
		InputPath:  inPath,
		OutputPath: outPath,
		Filter:     "-;$",
		NewEngine:  mockEngine(m),
	}); err != nil {
		t.Fatalf("RunTranslation: %v", err)
	}
	data, _ := os.ReadFile(outPath)
	if want := "hallo;\r\n[en] wereld\r\n"; string(data) != want {
		t.Fatalf("output = %q, want %q", data, want)
	}
	if m.Calls() != 1 || len(m.Requests[0].Contents) != 1 {
		t.Fatalf("expected only the unanchored line to be sent, got %+v", m.Requests)
	}
}

func TestPreflight(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := writeFile(t, tmpDir, "input.txt", "hallo\n")
	outPath := filepath.Join(tmpDir, "out.txt")
	logPath := filepath.Join(tmpDir, "run.jsonl")
	mock := mockEngine(&engine.MockEngine{})

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{InputPath: inPath, OutputPath: outPath, LogPath: logPath, NewEngine: mock},
		},
		{
			name:    "bad filter",
			cfg:     Config{InputPath: inPath, OutputPath: outPath, LogPath: logPath, Filter: "^#", NewEngine: mock},
			wantErr: "filter argument must begin with + or -",
		},
		{
			name:    "bad encoding",
			cfg:     Config{InputPath: inPath, OutputPath: outPath, LogPath: logPath, Encoding: "ebcdic-klingon", NewEngine: mock},
			wantErr: "Unknown encoding",
		},
		{
			name:    "missing credentials",
			cfg:     Config{InputPath: inPath, OutputPath: outPath, LogPath: logPath},
			wantErr: cloudtranslate.CredentialsEnvVar,
		},
	}

	t.Setenv(cloudtranslate.CredentialsEnvVar, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Preflight(tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Preflight() = %v, want nil", err)
				}
			} else if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Preflight() error = %v, want %q", err, tt.wantErr)
			}
			for _, p := range []string{outPath, logPath} {
				if _, statErr := os.Stat(p); !os.IsNotExist(statErr) {
					t.Fatalf("Preflight must not create %s", p)
				}
			}
		})
	}
}

func TestRunTranslation_PartialStatus(t *testing.T) {
	tmpDir := t.TempDir()
	inPath := writeFile(t, tmpDir, "input.txt", "hallo\n")
	outPath := filepath.Join(tmpDir, "out.txt")
	m := &engine.MockEngine{TranslateFunc: func(engine.Request) ([]string, error) {
		return nil, apperrors.Translation("", nil)
	}}

	result, err := RunTranslation(context.Background(), Config{
		InputPath:      inPath,
		OutputPath:     outPath,
		KeepIncomplete: true,
		NewEngine:      mockEngine(m),
	})
	if !apperrors.Is(err, apperrors.KindTranslation) {
		t.Fatalf("expected translation error, got %v", err)
	}
	if result.Status != TranslationStatusPartialSuccess || result.OutputPath != outPath {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name        string
		in          int
		want        int
		wantChanged bool
	}{
		{"below_min", 0, MinConcurrency, true},
		{"above_max", MaxConcurrency + 5, MaxConcurrency, true},
		{"within_range", MinConcurrency, MinConcurrency, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Concurrency: tt.in}
			gotCfg, notes := cfg.Normalize()
			if gotCfg.Concurrency != tt.want {
				t.Fatalf("Normalize() concurrency = %d, want %d", gotCfg.Concurrency, tt.want)
			}
			if tt.wantChanged && len(notes) == 0 {
				t.Fatalf("Normalize() expected notes for clamped value")
			}
			if !tt.wantChanged && len(notes) != 0 {
				t.Fatalf("Normalize() unexpected notes for unchanged value")
			}
		})
	}

	got, _ := Config{Backend: " Gemini "}.Normalize()
	if got.Backend != "gemini" || got.Model != "gemini-2.5-flash" || got.SourceLang != "nl" || got.TargetLang != "en" || got.Encoding != "utf-8" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}
