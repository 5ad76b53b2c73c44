package main

import (
	"io"
	"os"
	"sync"

	"github.com/oukeidos/filtertranslate/internal/logger"
	"github.com/oukeidos/filtertranslate/internal/translator"
	"github.com/schollz/progressbar/v3"
)

// showProgressBar reports whether batch progress is drawn as a bar. Debug
// runs and redirected stderr get log lines instead.
func showProgressBar(opts *translateOptions) bool {
	return !opts.debug && isTerminal(int(os.Stderr.Fd()))
}

// batchReporter turns batch callbacks into a progress bar or log records.
// Callbacks arrive from several workers.
type batchReporter struct {
	mu      sync.Mutex
	out     io.Writer
	showBar bool
	bar     *progressbar.ProgressBar
}

func newBatchReporter(out io.Writer, showBar bool) *batchReporter {
	return &batchReporter{out: out, showBar: showBar}
}

func (r *batchReporter) report(p translator.BatchProgress) {
	switch p.State {
	case translator.StateStarted:
		logger.Debug("Batch started", "index", p.Index, "total", p.Total, "lines", p.Lines, "chars", p.Chars)
	case translator.StateCompleted:
		if !r.showBar {
			logger.Info("Batch completed", "index", p.Index, "total", p.Total, "lines", p.Lines)
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.bar == nil {
			r.bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWriter(r.out),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]batches[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
		}
		_ = r.bar.Add(1)
	case translator.StateFailed:
		logger.Warn("Batch failed", "index", p.Index, "total", p.Total, "error", p.Error)
	}
}

// finish leaves the bar on its own line so later output starts clean.
func (r *batchReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil && !r.bar.IsFinished() {
		_ = r.bar.Exit()
	}
	if r.bar != nil {
		_, _ = io.WriteString(r.out, "\n")
	}
}
