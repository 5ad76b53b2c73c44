package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/cloudtranslate"
	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/files"
	"github.com/oukeidos/filtertranslate/internal/gemini"
	"github.com/oukeidos/filtertranslate/internal/language"
	"github.com/oukeidos/filtertranslate/internal/logger"
	"github.com/oukeidos/filtertranslate/internal/metadata"
	"github.com/oukeidos/filtertranslate/internal/openai"
	"github.com/oukeidos/filtertranslate/internal/textfilter"
	"github.com/oukeidos/filtertranslate/internal/textio"
	"github.com/oukeidos/filtertranslate/internal/translator"
)

// prepared is a checked Config plus what was derived from it.
type prepared struct {
	cfg     Config
	filter  *textfilter.Filter
	srcCode string
	tgtCode string
}

// prepare normalizes and validates cfg without touching the output or the
// network. warn receives normalization notes and unknown language codes.
func prepare(cfg Config, warn func(msg string, args ...any)) (prepared, error) {
	var notes []string
	cfg, notes = cfg.Normalize()
	for _, note := range notes {
		warn("Config normalized", "detail", note)
	}
	if err := cfg.Validate(); err != nil {
		return prepared{}, apperrors.Config(fmt.Sprintf("Invalid configuration: %v.", err), err)
	}

	if err := files.CheckOutputPath(cfg.InputPath, cfg.OutputPath); err != nil {
		if errors.Is(err, files.ErrSamePath) {
			return prepared{}, apperrors.Config(fmt.Sprintf("input and output files are the same (%s)", cfg.InputPath), err)
		}
		return prepared{}, err
	}
	if cfg.LogPath != "" {
		if err := files.RejectSymlinkPath(cfg.LogPath); err != nil {
			return prepared{}, err
		}
	}

	filter, err := textfilter.Parse(cfg.Filter)
	if err != nil {
		return prepared{}, err
	}
	if _, err := textio.Lookup(cfg.Encoding); err != nil {
		return prepared{}, err
	}

	if cfg.NewEngine == nil && metadata.Backend(cfg.Backend) == metadata.BackendGoogle {
		projectID, err := cloudtranslate.ResolveProjectID(cfg.ProjectID)
		if err != nil {
			return prepared{}, err
		}
		cfg.ProjectID = projectID
	}

	return prepared{
		cfg:     cfg,
		filter:  filter,
		srcCode: resolveLanguage(warn, "source", cfg.SourceLang),
		tgtCode: resolveLanguage(warn, "target", cfg.TargetLang),
	}, nil
}

// Preflight runs the checks RunTranslation starts with: settings, paths,
// filter, encoding and Cloud Translation credentials. It writes nothing, so
// callers can run it before creating side files such as the log.
func Preflight(cfg Config) error {
	_, err := prepare(cfg, func(string, ...any) {})
	return err
}

// RunTranslation executes the full translation pipeline for one file.
func RunTranslation(ctx context.Context, cfg Config) (TranslationResult, error) {
	// 1. Validation & Setup
	p, err := prepare(cfg, logger.Warn)
	if err != nil {
		return TranslationResult{}, err
	}
	cfg, filter, srcCode, tgtCode := p.cfg, p.filter, p.srcCode, p.tgtCode

	// 2. Initialize backend & translator
	newEngine := cfg.NewEngine
	if newEngine == nil {
		newEngine = buildEngine
	}
	eng, err := newEngine(ctx, cfg)
	if err != nil {
		return TranslationResult{}, err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Warn("Failed to close backend client", "backend", cfg.Backend, "error", err)
		}
	}()

	opts := translator.Options{
		SourceLang:        srcCode,
		TargetLang:        tgtCode,
		Encoding:          cfg.Encoding,
		Concurrency:       cfg.Concurrency,
		KeepIncomplete:    cfg.KeepIncomplete,
		RequestsPerSecond: cfg.RequestsPerSecond,
		OnBatch:           cfg.OnBatch,
	}
	if filter != nil {
		opts.Filter = filter.Skip
	}
	tr, err := translator.New(eng, opts)
	if err != nil {
		return TranslationResult{}, err
	}

	// 3. Translate
	logger.Info("Starting translation",
		"backend", cfg.Backend,
		"model", cfg.Model,
		"source", srcCode,
		"target", tgtCode,
		"filter", filter.String(),
		"in", cfg.InputPath,
		"out", cfg.OutputPath,
	)
	report, runErr := tr.TranslateTextFile(ctx, cfg.InputPath, cfg.OutputPath)

	// 4. Handle results
	result := TranslationResult{
		Status:  statusFromReport(report, runErr),
		Backend: cfg.Backend,
		Model:   cfg.Model,
		Report:  report,
	}
	if runErr == nil || report.Partial {
		result.OutputPath = cfg.OutputPath
	}
	if ur, ok := eng.(engine.UsageReporter); ok {
		result.Usage = ur.Usage()
		result.EstimatedCost = metadata.TokenCost(metadata.Backend(cfg.Backend), cfg.Model, result.Usage.PromptTokens, result.Usage.CompletionTokens)
	} else if cfg.Backend == string(metadata.BackendGoogle) {
		result.EstimatedCost = metadata.CharacterCost(report.Chars)
	}
	logger.Info("Translation finished", "status", result.Status, "run", report.RunID)
	if runErr != nil {
		return result, runErr
	}
	return result, nil
}

// resolveLanguage maps aliases to the code the backends expect. Unknown codes
// are passed through so newly supported languages keep working.
func resolveLanguage(warn func(msg string, args ...any), role, code string) string {
	if lang, ok := language.GetLanguage(code); ok {
		return lang.Code
	}
	warn("Unknown language code; passing it to the backend as is", "role", role, "code", code)
	return code
}

func buildEngine(ctx context.Context, cfg Config) (engine.Engine, error) {
	switch metadata.Backend(cfg.Backend) {
	case metadata.BackendGoogle:
		c, err := cloudtranslate.NewClient(ctx, cloudtranslate.Config{ProjectID: cfg.ProjectID})
		if err != nil {
			return nil, err
		}
		logger.Debug("Cloud Translation client ready", "project", c.ProjectID())
		return c, nil
	case metadata.BackendGemini:
		c, err := gemini.NewClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	case metadata.BackendOpenAI:
		return openai.NewClient(openai.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}), nil
	default:
		return nil, apperrors.Config(fmt.Sprintf("Unknown backend %q.", cfg.Backend), nil)
	}
}
