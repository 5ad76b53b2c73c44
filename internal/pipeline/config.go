package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/metadata"
	"github.com/oukeidos/filtertranslate/internal/textio"
	"github.com/oukeidos/filtertranslate/internal/translator"
)

// Config holds everything one translation run needs.
type Config struct {
	// IO Paths
	InputPath  string
	OutputPath string
	LogPath    string // Optional JSONL log; checked like the output path

	// Backend
	Backend   string // google, gemini or openai
	ProjectID string // Cloud Translation only; empty derives it from credentials
	APIKey    string // LLM backends only
	Model     string
	BaseURL   string // OpenAI-compatible API root override

	// Processing
	SourceLang        string
	TargetLang        string
	Filter            string // "+REGEX" or "-REGEX"
	Encoding          string
	Concurrency       int
	KeepIncomplete    bool
	RequestsPerSecond float64 // 0 is unlimited

	// OnBatch is called with batch progress updates.
	OnBatch func(translator.BatchProgress)

	// NewEngine replaces backend construction, mainly for tests.
	NewEngine func(ctx context.Context, cfg Config) (engine.Engine, error)
}

const (
	MinConcurrency     = 1
	MaxConcurrency     = translator.MaxConcurrency
	DefaultSourceLang  = "nl"
	DefaultTargetLang  = "en"
	DefaultBackendName = string(metadata.BackendGoogle)
)

func ClampConcurrency(value int) (int, bool) {
	if value < MinConcurrency {
		return MinConcurrency, true
	}
	if value > MaxConcurrency {
		return MaxConcurrency, true
	}
	return value, false
}

// Normalize fills defaults, applies safe bounds and returns any adjustments.
func (c Config) Normalize() (Config, []string) {
	var notes []string
	if clamped, changed := ClampConcurrency(c.Concurrency); changed {
		notes = append(notes, fmt.Sprintf("concurrency clamped from %d to %d (max %d)", c.Concurrency, clamped, MaxConcurrency))
		c.Concurrency = clamped
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = DefaultBackendName
	}
	if strings.TrimSpace(c.SourceLang) == "" {
		c.SourceLang = DefaultSourceLang
	}
	if strings.TrimSpace(c.TargetLang) == "" {
		c.TargetLang = DefaultTargetLang
	}
	if strings.TrimSpace(c.Encoding) == "" {
		c.Encoding = textio.DefaultEncoding
	}
	if c.Model == "" {
		if b, ok := metadata.LookupBackend(c.Backend); ok {
			c.Model = b.DefaultModel
		}
	}
	return c, notes
}

// Validate checks the configuration before any file or network access.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" || strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("input and output paths are required")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0, got %d", c.Concurrency)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("rate limit must not be negative, got %g", c.RequestsPerSecond)
	}
	b, ok := metadata.LookupBackend(c.Backend)
	if !ok {
		return fmt.Errorf("unknown backend %q (expected one of %s)", c.Backend, strings.Join(metadata.BackendNames(), ", "))
	}
	if b.NeedsAPIKey && c.APIKey == "" && c.NewEngine == nil {
		return fmt.Errorf("API key is required for the %s backend", b.Name)
	}
	return nil
}
