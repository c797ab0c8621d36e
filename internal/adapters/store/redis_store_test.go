package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("INBOX_TRIAGE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INBOX_TRIAGE_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	s, err := NewRedisStore(ctx, addr, "", 0, zap.NewNop())
	require.NoError(t, err)
	defer s.Stop()

	session := "test-" + time.Now().Format(time.RFC3339Nano)
	defer s.Delete(ctx, session)

	_, err = s.Get(ctx, session)
	assert.ErrorIs(t, err, core.ErrResultNotFound)

	require.NoError(t, s.Set(ctx, &core.StoredResult{
		SessionID:  session,
		Assignment: sampleAssignment(t),
		StoredAt:   time.Now(),
		ExpiresAt:  time.Now().Add(time.Minute),
	}))

	got, err := s.Get(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, []string{"🚨 Action Required", "🗑️ Promotions & Noise"}, got.Assignment.Labels())

	require.NoError(t, s.Set(ctx, &core.StoredResult{
		SessionID: session,
		ExpiresAt: time.Now().Add(-time.Second),
	}))
	_, err = s.Get(ctx, session)
	assert.ErrorIs(t, err, core.ErrResultNotFound, "an already expired result is not kept")
}
