package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	panicMsg string
	calls    []CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Completion{Text: f.reply, ModelUsed: "fake-model"}, nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeMessage struct {
	headers    map[string]string
	snippet    string
	headerErr  error
	snippetErr error
}

type fakeMail struct {
	ids      []string
	messages map[string]fakeMessage
	listErr  error
	maxSeen  int
}

func (f *fakeMail) ListMessageIDs(ctx context.Context, max int) ([]string, error) {
	f.maxSeen = max
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ids, nil
}

func (f *fakeMail) GetHeaders(ctx context.Context, id string, names ...string) (map[string]string, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %s not found", id)
	}
	if m.headerErr != nil {
		return nil, m.headerErr
	}
	return m.headers, nil
}

func (f *fakeMail) GetSnippet(ctx context.Context, id string) (string, error) {
	m, ok := f.messages[id]
	if !ok {
		return "", fmt.Errorf("message %s not found", id)
	}
	if m.snippetErr != nil {
		return "", m.snippetErr
	}
	return m.snippet, nil
}

type fakeStore struct {
	mu      sync.Mutex
	results map[string]*StoredResult
	setErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{results: make(map[string]*StoredResult)}
}

func (s *fakeStore) Get(ctx context.Context, sessionID string) (*StoredResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[sessionID]
	if !ok {
		return nil, ErrResultNotFound
	}
	return r, nil
}

func (s *fakeStore) Set(ctx context.Context, result *StoredResult) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.SessionID] = result
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, sessionID)
	return nil
}

func (s *fakeStore) Cleanup(ctx context.Context) error { return nil }

var errBoom = errors.New("boom")

func records(senders ...string) []EmailRecord {
	out := make([]EmailRecord, len(senders))
	for i, s := range senders {
		out[i] = EmailRecord{
			ID:      fmt.Sprintf("m%d", i+1),
			Sender:  s,
			Subject: fmt.Sprintf("subject %d", i+1),
			Snippet: fmt.Sprintf("snippet %d", i+1),
		}
	}
	return out
}
