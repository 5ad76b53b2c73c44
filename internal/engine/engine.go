// Package engine defines the contract every translation backend implements.
package engine

import "context"

// Request is one batch submitted to a backend.
type Request struct {
	Contents   []string
	SourceLang string
	TargetLang string
}

// Engine translates a batch of strings. Implementations must return exactly
// one translation per entry in Contents, in the same order.
type Engine interface {
	Translate(ctx context.Context, req Request) ([]string, error)
	Close() error
}

// Usage accumulates token counts reported by LLM backends.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Add returns u plus o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

// UsageReporter is implemented by engines that meter tokens.
type UsageReporter interface {
	Usage() Usage
}
