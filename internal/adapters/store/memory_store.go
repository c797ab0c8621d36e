package store

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the ResultStore interface
type MemoryStore struct {
	results map[string]*core.StoredResult
	mu      sync.RWMutex
	logger  *zap.Logger
	cleanup *cleanupLoop
}

// NewMemoryStore creates a new in-memory store. A positive cleanupFreq
// starts a background task that removes expired results.
func NewMemoryStore(logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	s := &MemoryStore{
		results: make(map[string]*core.StoredResult),
		logger:  logger,
	}
	s.cleanup = startCleanupLoop(s, logger, cleanupFreq)
	return s
}

// Get retrieves the result stored for a session
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*core.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[sessionID]
	if !ok || expired(result, time.Now()) {
		return nil, core.ErrResultNotFound
	}

	copied := *result
	return &copied, nil
}

// Set stores a result, replacing any previous one for the session
func (s *MemoryStore) Set(ctx context.Context, result *core.StoredResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *result
	s.results[result.SessionID] = &copied
	return nil
}

// Delete removes the result of a session
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.results, sessionID)
	return nil
}

// Cleanup removes expired results
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expiredCount := 0
	for key, result := range s.results {
		if expired(result, now) {
			delete(s.results, key)
			expiredCount++
		}
	}

	s.logger.Debug("Cleaned up expired results", zap.Int("expired_count", expiredCount))
	return nil
}

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	s.cleanup.stop()
}

func expired(result *core.StoredResult, now time.Time) bool {
	return !result.ExpiresAt.IsZero() && !now.Before(result.ExpiresAt)
}
