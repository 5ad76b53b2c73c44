// Package translator turns files and line slices into translated output,
// batching lines under the backend's character limit and keeping filtered
// lines in place.
package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/chunker"
	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/logger"
	"github.com/oukeidos/filtertranslate/internal/textio"
	"golang.org/x/text/encoding"
	"golang.org/x/time/rate"
)

// Translator orchestrates reading, batching, translation and merging.
type Translator struct {
	engine  engine.Engine
	opts    Options
	enc     encoding.Encoding
	budget  int
	limiter *rate.Limiter
}

// New validates opts and binds them to eng.
func New(eng engine.Engine, opts Options) (*Translator, error) {
	if eng == nil {
		return nil, apperrors.Config("No translation backend configured.", nil)
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = 1
	}
	if opts.Concurrency < 0 || opts.Concurrency > MaxConcurrency {
		return nil, apperrors.Config(fmt.Sprintf("Concurrency must be between 1 and %d, got %d.", MaxConcurrency, opts.Concurrency), nil)
	}
	if strings.TrimSpace(opts.SourceLang) == "" || strings.TrimSpace(opts.TargetLang) == "" {
		return nil, apperrors.Config("Source and target language are required.", nil)
	}
	if opts.RequestsPerSecond < 0 {
		return nil, apperrors.Config(fmt.Sprintf("Request rate must not be negative, got %g.", opts.RequestsPerSecond), nil)
	}
	enc, err := textio.Lookup(opts.Encoding)
	if err != nil {
		return nil, err
	}
	t := &Translator{
		engine: eng,
		opts:   opts,
		enc:    enc,
		budget: chunker.CharLimit,
	}
	if opts.RequestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return t, nil
}

// TranslateText sends texts to the backend in a single request and returns
// one translation per input, in order. Every batch of a file run goes
// through it.
func (t *Translator) TranslateText(ctx context.Context, texts ...string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	translated, err := t.engine.Translate(ctx, engine.Request{
		Contents:   texts,
		SourceLang: t.opts.SourceLang,
		TargetLang: t.opts.TargetLang,
	})
	if err != nil {
		return nil, err
	}
	if len(translated) != len(texts) {
		return nil, countMismatch(len(texts), len(translated))
	}
	return translated, nil
}

// TranslateLines translates lines batch by batch and returns them merged
// with the filtered lines in source order. On failure the returned slice
// holds the output of the batches completed before the first failed one.
func (t *Translator) TranslateLines(ctx context.Context, lines []string) ([]string, error) {
	_, log := t.newRun()
	plan := t.plan(lines, log)
	out, _, _, err := t.execute(ctx, plan, log)
	return out, err
}

// TranslateTextFile reads in, translates it and writes the result to out in
// the configured encoding. Nothing is written on failure unless
// KeepIncomplete is set. The input file is never modified.
func (t *Translator) TranslateTextFile(ctx context.Context, in, out string) (Report, error) {
	runID, log := t.newRun()
	report := Report{RunID: runID}

	lines, err := textio.ReadLines(in, t.enc)
	if err != nil {
		return report, err
	}
	log.Debug("Input read", "in", in, "lines", len(lines))

	plan := t.plan(lines, log)
	report.Lines = plan.Lines
	report.Passthrough = plan.Passthrough
	report.Batches = len(plan.Batches)
	report.Chars = plan.Chars()
	report.Truncated = len(plan.Truncations)

	output, completed, calls, runErr := t.execute(ctx, plan, log)
	report.Completed = completed
	report.Calls = calls
	if runErr != nil {
		if t.opts.KeepIncomplete {
			if err := textio.WriteFile(out, strings.Join(output, ""), t.enc); err != nil {
				log.Error("Failed to write incomplete output", "out", out, "error", err)
				return report, errors.Join(runErr, err)
			}
			report.Partial = true
			log.Warn("Incomplete output written", "out", out, "batches", completed, "total", len(plan.Batches))
		}
		return report, runErr
	}

	if err := textio.WriteFile(out, strings.Join(output, ""), t.enc); err != nil {
		return report, fmt.Errorf("failed to write output: %w", err)
	}
	log.Info("Translation written", "out", out, "lines", report.Lines, "calls", report.Calls)
	return report, nil
}

func (t *Translator) newRun() (string, *slog.Logger) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	base := t.opts.Logger
	if base == nil {
		base = logger.Default()
	}
	return id.String(), base.With("run", id.String())
}

func (t *Translator) plan(lines []string, log *slog.Logger) chunker.Plan {
	plan := chunker.SplitIntoBatches(lines, t.budget, t.opts.Filter)
	for _, tr := range plan.Truncations {
		log.Warn("Line truncated", "line", tr.Line, "length", tr.Length)
	}
	log.Debug("Batches planned", "batches", len(plan.Batches), "calls", plan.Calls(), "passthrough", plan.Passthrough)
	return plan
}

// execute runs every batch of plan through a pool of workers and returns the
// merged output of the longest completed prefix, the size of that prefix and
// the number of backend calls issued.
func (t *Translator) execute(ctx context.Context, plan chunker.Plan, log *slog.Logger) ([]string, int, int, error) {
	total := len(plan.Batches)
	if total == 0 {
		return nil, 0, 0, ctx.Err()
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]string, total)
	done := make([]bool, total)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		calls    atomic.Int64
	)

	jobs := make(chan int, total)
	for i := range plan.Batches {
		jobs <- i
	}
	close(jobs)

	workers := min(t.opts.Concurrency, total)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				merged, err := t.translateBatch(ctx, plan.Batches[i], total, &calls, log)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
						cancel()
					}
				} else {
					results[i] = merged
					done[i] = true
				}
				mu.Unlock()
				if err != nil {
					return
				}
			}
		}()
	}
	wg.Wait()

	var out []string
	completed := 0
	for i := range results {
		if !done[i] {
			break
		}
		out = append(out, results[i]...)
		completed++
	}
	if firstErr == nil && completed < total {
		firstErr = parent.Err()
		if firstErr == nil {
			firstErr = errors.New("translation stopped before all batches completed")
		}
	}
	return out, completed, int(calls.Load()), firstErr
}

func (t *Translator) translateBatch(ctx context.Context, b chunker.Batch, total int, calls *atomic.Int64, log *slog.Logger) ([]string, error) {
	progress := BatchProgress{Index: b.Index, Total: total, Lines: len(b.Lines), Chars: b.Chars}
	if len(b.Lines) == 0 {
		t.notify(progress, StateCompleted, nil)
		return merge(b, nil), nil
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("batch %d: %w", b.Index+1, err)
		}
	}
	t.notify(progress, StateStarted, nil)
	log.Debug("Translating batch", "batch", b.Index+1, "total", total, "lines", len(b.Lines), "chars", b.Chars)

	calls.Add(1)
	translated, err := t.TranslateText(ctx, b.Lines...)
	if err != nil {
		err = fmt.Errorf("batch %d: %w", b.Index+1, err)
		t.notify(progress, StateFailed, err)
		if ctx.Err() == nil {
			log.Error("Batch failed", "batch", b.Index+1, "error", err)
		}
		return nil, err
	}
	t.notify(progress, StateCompleted, nil)
	return merge(b, translated), nil
}

func (t *Translator) notify(p BatchProgress, state BatchState, err error) {
	if t.opts.OnBatch == nil {
		return
	}
	p.State = state
	p.Error = err
	t.opts.OnBatch(p)
}

// merge fills the batch template: placeholders take translations in order,
// literals are copied.
func merge(b chunker.Batch, translated []string) []string {
	out := make([]string, 0, len(b.Template))
	next := 0
	for _, slot := range b.Template {
		if !slot.IsPlaceholder() {
			out = append(out, slot.Line())
			continue
		}
		out = append(out, restoreTerminator(b.Lines[next], translated[next]))
		next++
	}
	return out
}

// restoreTerminator re-appends the source line break when the backend
// dropped it, so output lines stay aligned with input lines.
func restoreTerminator(source, translated string) string {
	var term string
	switch {
	case strings.HasSuffix(source, "\r\n"):
		term = "\r\n"
	case strings.HasSuffix(source, "\n"):
		term = "\n"
	default:
		return translated
	}
	if strings.HasSuffix(translated, "\n") {
		return translated
	}
	return strings.TrimRight(translated, "\r") + term
}

func countMismatch(sent, received int) error {
	return apperrors.Translation(fmt.Sprintf("Translation count mismatch: sent %d lines, received %d.", sent, received), nil)
}
