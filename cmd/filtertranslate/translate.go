package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oukeidos/filtertranslate/internal/cleanup"
	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/logger"
	"github.com/oukeidos/filtertranslate/internal/metadata"
	"github.com/oukeidos/filtertranslate/internal/pipeline"
	"github.com/oukeidos/filtertranslate/internal/textio"
	"github.com/spf13/cobra"
)

// newEngine overrides backend construction when set.
var newEngine func(ctx context.Context, cfg pipeline.Config) (engine.Engine, error)

type translateOptions struct {
	filter         string
	sourceLang     string
	targetLang     string
	encoding       string
	project        string
	backend        string
	model          string
	baseURL        string
	concurrency    int
	rateLimit      float64
	keepIncomplete bool
	logFilePath    string
	configPath     string
	allowEnv       bool
	envOnly        bool
	debug          bool
}

func addTranslateFlags(cmd *cobra.Command, opts *translateOptions) {
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Translate only lines matching (+REGEX) or not matching (-REGEX)")
	cmd.Flags().StringVarP(&opts.sourceLang, "source_language", "s", pipeline.DefaultSourceLang, "Source language code")
	cmd.Flags().StringVarP(&opts.targetLang, "target_language", "t", pipeline.DefaultTargetLang, "Target language code")
	cmd.Flags().StringVar(&opts.encoding, "encoding", textio.DefaultEncoding, "Encoding of the input and output files")
	cmd.Flags().StringVar(&opts.project, "project", "", "Google Cloud project id (default: from GOOGLE_APPLICATION_CREDENTIALS)")
	cmd.Flags().StringVar(&opts.backend, "backend", pipeline.DefaultBackendName, "Translation backend (google, gemini or openai)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name for LLM backends")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", pipeline.MinConcurrency, fmt.Sprintf("Number of concurrent requests (1-%d)", pipeline.MaxConcurrency))
	cmd.Flags().Float64Var(&opts.rateLimit, "rate-limit", 0, "Maximum backend requests per second (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.keepIncomplete, "keep-incomplete", false, "Write the completed part of the output when translation fails")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML settings file (default: .filtertranslate.yaml in home or current dir)")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading API keys from environment variables")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for API keys")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
}

func runTranslate(cmd *cobra.Command, args []string, opts *translateOptions) error {
	if len(args) < 2 {
		_ = cmd.Usage()
		return fmt.Errorf("input and output files are required")
	}
	if len(args) > 2 {
		_ = cmd.Usage()
		return fmt.Errorf("expected 2 arguments but got %d; did you forget quotes around file paths?", len(args))
	}

	settings, err := loadSettings(cmd, opts.configPath)
	if err != nil {
		return err
	}
	applySettings(settings, opts)

	logLevel := logger.LevelInfo
	if opts.debug {
		logLevel = logger.LevelDebug
	}
	logger.Init(logLevel, nil)

	startTime := time.Now()

	var apiKey, keySource string
	backend, needsKey := metadata.LookupBackend(opts.backend)
	if needsKey = needsKey && backend.NeedsAPIKey; needsKey {
		key, source, err := resolveAPIKey(string(backend.Name), opts.allowEnv, opts.envOnly)
		if err != nil {
			return err
		}
		apiKey, keySource = key, source
	}

	cfg := pipeline.Config{
		InputPath:         args[0],
		OutputPath:        args[1],
		LogPath:           opts.logFilePath,
		Backend:           opts.backend,
		ProjectID:         opts.project,
		APIKey:            apiKey,
		Model:             opts.model,
		BaseURL:           opts.baseURL,
		SourceLang:        opts.sourceLang,
		TargetLang:        opts.targetLang,
		Filter:            opts.filter,
		Encoding:          opts.encoding,
		Concurrency:       opts.concurrency,
		KeepIncomplete:    opts.keepIncomplete,
		RequestsPerSecond: opts.rateLimit,
		NewEngine:         newEngine,
	}
	// The log file is created only once the run is known to be valid.
	if err := pipeline.Preflight(cfg); err != nil {
		return err
	}
	if opts.logFilePath != "" {
		f, err := os.OpenFile(opts.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("log file", f.Close)
		logger.Init(logLevel, f)
	}
	if used := settings.ConfigFileUsed(); used != "" {
		logger.Debug("Using config file", "path", used)
	}
	if needsKey {
		logger.Info("Using API Key", "service", string(backend.Name), "source", keySource)
	}

	progress := newBatchReporter(cmd.ErrOrStderr(), showProgressBar(opts))
	cfg.OnBatch = progress.report

	ctx, stop := signalContext()
	defer stop()
	result, err := pipeline.RunTranslation(ctx, cfg)
	progress.finish()

	// Stats are printed for partial and failed runs too.
	printExecutionStats(cmd.ErrOrStderr(), result, time.Since(startTime))

	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Translation canceled", "error", err)
			return fmt.Errorf("translation canceled")
		}
		return err
	}
	return translationStatusError(result)
}

func translationStatusError(result pipeline.TranslationResult) error {
	switch result.Status {
	case pipeline.TranslationStatusSuccess:
		return nil
	case pipeline.TranslationStatusPartialSuccess, pipeline.TranslationStatusFailure:
		return fmt.Errorf("translation finished with status: %s", result.Status)
	default:
		return fmt.Errorf("translation finished with unknown status: %q", result.Status)
	}
}
