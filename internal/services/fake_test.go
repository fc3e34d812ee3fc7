package services

import (
	"context"
	"sync"

	"gymlog/internal/ai"
)

type fakeCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []ai.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r, nil
}

func reply(s string) *fakeCompleter {
	return &fakeCompleter{replies: []string{s}}
}
