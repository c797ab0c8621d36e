package store

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// cleanupLoop periodically removes expired results from a store
type cleanupLoop struct {
	stopCh chan struct{}
	once   sync.Once
}

// startCleanupLoop runs store.Cleanup every freq until stopped. A
// non-positive freq disables the loop.
func startCleanupLoop(store core.ResultStore, logger *zap.Logger, freq time.Duration) *cleanupLoop {
	l := &cleanupLoop{stopCh: make(chan struct{})}
	if freq <= 0 {
		return l
	}

	go func() {
		ticker := time.NewTicker(freq)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := store.Cleanup(context.Background()); err != nil {
					logger.Error("Failed to clean up results", zap.Error(err))
				}
			case <-l.stopCh:
				return
			}
		}
	}()

	return l
}

func (l *cleanupLoop) stop() {
	l.once.Do(func() { close(l.stopCh) })
}
