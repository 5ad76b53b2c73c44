package engine

import (
	"context"
	"sync"
)

// MockEngine records requests and answers through TranslateFunc. Without a
// TranslateFunc it returns each input prefixed with the target language,
// e.g. "[en] hallo\n".
type MockEngine struct {
	TranslateFunc func(req Request) ([]string, error)

	mu       sync.Mutex
	Requests []Request
	Closed   bool
}

var _ Engine = (*MockEngine)(nil)

func (m *MockEngine) Translate(ctx context.Context, req Request) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Requests = append(m.Requests, Request{
		Contents:   append([]string(nil), req.Contents...),
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	m.mu.Unlock()
	if m.TranslateFunc != nil {
		return m.TranslateFunc(req)
	}
	out := make([]string, len(req.Contents))
	for i, s := range req.Contents {
		out[i] = "[" + req.TargetLang + "] " + s
	}
	return out, nil
}

func (m *MockEngine) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	return nil
}

// Calls returns the number of Translate invocations so far.
func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
