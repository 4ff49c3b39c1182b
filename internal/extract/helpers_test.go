package extract

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/smartcal/internal/llm"
)

var fixedNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// stubChat replaces the network boundary and counts calls.
type stubChat struct {
	mu    sync.Mutex
	reqs  []llm.ChatRequest
	reply func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

func (s *stubChat) Complete(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	if s.reply == nil {
		return &llm.ChatResponse{Text: `{"events":[]}`}, nil
	}
	return s.reply(ctx, req)
}

func (s *stubChat) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

func (s *stubChat) Last() llm.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reqs[len(s.reqs)-1]
}

func replyText(text string) func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	return func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		return &llm.ChatResponse{Text: text}, nil
	}
}

type clientOption func(*Options)

func withNow(now func() time.Time) clientOption {
	return func(o *Options) { o.Now = now }
}

func withoutKey() clientOption {
	return func(o *Options) { o.Credentials = nil }
}

// newTestClient returns a client with a saved key "sk-test" and a pool of two.
func newTestClient(t *testing.T, chat *stubChat, opts ...clientOption) (*Client, *Pool) {
	t.Helper()
	creds := NewCredentialStore(filepath.Join(t.TempDir(), "api_key.json"))
	require.NoError(t, creds.Save("sk-test"))

	pool := NewPool(2)
	o := Options{
		Chat:        chat,
		Credentials: creds,
		Pool:        pool,
		Now:         func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&o)
	}
	c := NewClient(o)
	t.Cleanup(c.Close)
	return c, pool
}

type result struct {
	ok      bool
	payload string
}

// collect returns a callback that forwards outcomes onto a channel.
func collect() (Callback, chan result) {
	ch := make(chan result, 4)
	return func(ok bool, payload string) { ch <- result{ok, payload} }, ch
}

func await(t *testing.T, ch chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("callback not delivered")
		return result{}
	}
}
