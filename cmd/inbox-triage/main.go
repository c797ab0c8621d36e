package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/di"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/ports"
	"github.com/mikey/inbox-triage/internal/session"
	"go.uber.org/zap"
)

// Sessions that never completed the handshake are forgotten after this long
const sessionMaxAge = 24 * time.Hour

func main() {
	// A missing .env is fine; the environment may already carry the settings
	_ = godotenv.Load()

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	server ports.Server,
	sessions *session.Manager,
	llmClient core.LLMClient,
	store factory.ResultStore,
) error {
	defer logger.Sync()

	// Start the server
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	done := make(chan struct{})
	go pruneSessions(sessions, done)

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		logger.Info("Shutting down...")
	case runErr = <-errCh:
		logger.Error("Server failed", zap.Error(runErr))
	}
	close(done)

	// Stop the server
	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	store.Stop()

	logger.Info("Shutdown complete")
	return runErr
}

func pruneSessions(sessions *session.Manager, done <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			sessions.PruneBefore(time.Now().Add(-sessionMaxAge))
		}
	}
}
