package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikey/inbox-triage/internal/adapters/store"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// ResultStore is a result store with a background lifecycle
type ResultStore interface {
	core.ResultStore
	Stop()
}

// StoreFactory creates result stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultStore creates a result store based on the configuration
func (f *StoreFactory) CreateResultStore() (ResultStore, error) {
	storeCfg, err := f.cfg.GetStore()
	if err != nil {
		return nil, err
	}

	switch storeCfg.Type {
	case "memory":
		return store.NewMemoryStore(f.logger, storeCfg.CleanupFrequency), nil
	case "sqlite":
		if storeCfg.SQLitePath != ":memory:" && !strings.HasPrefix(storeCfg.SQLitePath, "file:") {
			// Ensure directory exists
			if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
			}
		}
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger, storeCfg.CleanupFrequency)
	case "mysql":
		return store.NewMySQLStore(storeCfg.MySQLDSN, f.logger, storeCfg.CleanupFrequency)
	case "redis":
		return store.NewRedisStore(context.Background(), storeCfg.RedisAddr, storeCfg.RedisPassword, storeCfg.RedisDB, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
