package translator

import "log/slog"

// MaxConcurrency caps the number of batches translated at once.
const MaxConcurrency = 8

// LineFilter reports whether a line must be copied to the output untouched.
// Any data the decision needs is bound into the closure.
type LineFilter func(line string) bool

// Options configures a Translator.
type Options struct {
	SourceLang string
	TargetLang string
	// Filter marks pass-through lines. Nil translates every line.
	Filter LineFilter
	// Encoding names the character set of input and output files.
	Encoding string
	// Concurrency is the number of batches in flight; 0 means 1.
	Concurrency int
	// KeepIncomplete writes the translated prefix when a file run fails.
	KeepIncomplete bool
	// RequestsPerSecond throttles backend calls across all workers. Zero
	// disables throttling.
	RequestsPerSecond float64
	// OnBatch, if set, observes batch state changes. It may be called from
	// several goroutines when Concurrency > 1.
	OnBatch func(BatchProgress)
	// Logger defaults to the global logger.
	Logger *slog.Logger
}

// BatchState is the lifecycle state reported through OnBatch.
type BatchState int

const (
	StateStarted BatchState = iota
	StateCompleted
	StateFailed
)

func (s BatchState) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BatchProgress describes one batch transition. Batches made only of
// filtered lines report StateCompleted without a prior StateStarted.
type BatchProgress struct {
	Index int
	Total int
	Lines int
	Chars int
	State BatchState
	Error error
}

// Report summarizes one file translation.
type Report struct {
	RunID string
	// Lines read from the input.
	Lines int
	// Passthrough lines copied without translation.
	Passthrough int
	// Batches planned, including literal-only ones.
	Batches int
	// Calls made to the backend.
	Calls int
	// Chars submitted for translation, in code points.
	Chars int
	// Truncated lines shortened to fit the request limit.
	Truncated int
	// Completed batches merged into the output, counted from the start.
	Completed int
	// Partial is set when incomplete output was written.
	Partial bool
}
