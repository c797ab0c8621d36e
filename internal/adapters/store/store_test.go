package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stoppable interface {
	core.ResultStore
	Stop()
}

func stores(t *testing.T) map[string]stoppable {
	t.Helper()
	sqlite, err := NewSQLiteStore(":memory:", zap.NewNop(), 0)
	require.NoError(t, err)
	return map[string]stoppable{
		"memory": NewMemoryStore(zap.NewNop(), 0),
		"sqlite": sqlite,
	}
}

func sampleAssignment(t *testing.T) core.CategoryAssignment {
	t.Helper()
	var a core.CategoryAssignment
	require.NoError(t, json.Unmarshal([]byte(`{
		"🚨 Action Required": [{"id": "m1", "from": "Alice", "subject": "Interview", "snippet": "Friday?", "sender_count": 2}],
		"🗑️ Promotions & Noise": []
	}`), &a))
	return a
}

func TestStores_SetGetDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Stop()
			ctx := context.Background()

			_, err := s.Get(ctx, "session-a")
			assert.ErrorIs(t, err, core.ErrResultNotFound)

			storedAt := time.Now().Truncate(time.Millisecond)
			require.NoError(t, s.Set(ctx, &core.StoredResult{
				SessionID:  "session-a",
				Assignment: sampleAssignment(t),
				StoredAt:   storedAt,
			}))

			got, err := s.Get(ctx, "session-a")
			require.NoError(t, err)
			assert.Equal(t, []string{"🚨 Action Required", "🗑️ Promotions & Noise"}, got.Assignment.Labels())
			action, _ := got.Assignment.Get("🚨 Action Required")
			require.Len(t, action, 1)
			assert.Equal(t, "Alice", action[0].Sender)
			assert.Equal(t, 2, action[0].SenderCount)
			assert.True(t, got.StoredAt.Equal(storedAt))
			assert.True(t, got.ExpiresAt.IsZero())

			_, err = s.Get(ctx, "session-b")
			assert.ErrorIs(t, err, core.ErrResultNotFound, "sessions are isolated")

			require.NoError(t, s.Set(ctx, &core.StoredResult{SessionID: "session-a", StoredAt: time.Now()}))
			got, err = s.Get(ctx, "session-a")
			require.NoError(t, err)
			assert.Equal(t, 0, got.Assignment.Len(), "set replaces the previous result")

			require.NoError(t, s.Delete(ctx, "session-a"))
			_, err = s.Get(ctx, "session-a")
			assert.ErrorIs(t, err, core.ErrResultNotFound)
		})
	}
}

func TestStores_Expiry(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Stop()
			ctx := context.Background()
			now := time.Now()

			require.NoError(t, s.Set(ctx, &core.StoredResult{
				SessionID: "expired",
				StoredAt:  now.Add(-2 * time.Hour),
				ExpiresAt: now.Add(-time.Hour),
			}))
			require.NoError(t, s.Set(ctx, &core.StoredResult{
				SessionID: "fresh",
				StoredAt:  now,
				ExpiresAt: now.Add(time.Hour),
			}))

			_, err := s.Get(ctx, "expired")
			assert.ErrorIs(t, err, core.ErrResultNotFound)

			got, err := s.Get(ctx, "fresh")
			require.NoError(t, err)
			assert.False(t, got.ExpiresAt.IsZero())

			require.NoError(t, s.Cleanup(ctx))
			_, err = s.Get(ctx, "fresh")
			assert.NoError(t, err)
		})
	}
}

func TestMemoryStore_CleanupRemovesExpired(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 0)
	defer s.Stop()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, &core.StoredResult{SessionID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, s.Set(ctx, &core.StoredResult{SessionID: "forever"}))

	require.NoError(t, s.Cleanup(ctx))

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.NotContains(t, s.results, "old")
	assert.Contains(t, s.results, "forever")
}

func TestMemoryStore_BackgroundCleanup(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 10*time.Millisecond)
	defer s.Stop()

	require.NoError(t, s.Set(context.Background(), &core.StoredResult{SessionID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))

	assert.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		_, ok := s.results["old"]
		return !ok
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()
}
