package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// SQLStore is a database/sql implementation of the ResultStore interface
// backed by SQLite or MySQL. Timestamps are unix milliseconds; an expires_at
// of 0 never expires.
type SQLStore struct {
	db      *sql.DB
	driver  string
	logger  *zap.Logger
	cleanup *cleanupLoop
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// a second connection to ":memory:" would see a different database
	db.SetMaxOpenConns(1)

	return newSQLStore(db, "sqlite3", `
		CREATE TABLE IF NOT EXISTS triage_results (
			session_id TEXT PRIMARY KEY,
			assignment TEXT NOT NULL,
			stored_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		)
	`, logger, cleanupFreq)
}

// NewMySQLStore creates a new MySQL store
func NewMySQLStore(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newSQLStore(db, "mysql", `
		CREATE TABLE IF NOT EXISTS triage_results (
			session_id VARCHAR(64) PRIMARY KEY,
			assignment MEDIUMTEXT NOT NULL,
			stored_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL DEFAULT 0,
			INDEX idx_expires_at (expires_at)
		)
	`, logger, cleanupFreq)
}

func newSQLStore(db *sql.DB, driver, schema string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLStore, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	if driver == "sqlite3" {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_expires_at ON triage_results(expires_at)`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	s := &SQLStore{
		db:     db,
		driver: driver,
		logger: logger,
	}
	s.cleanup = startCleanupLoop(s, logger, cleanupFreq)
	return s, nil
}

// Get retrieves the result stored for a session
func (s *SQLStore) Get(ctx context.Context, sessionID string) (*core.StoredResult, error) {
	var payload string
	var storedAt, expiresAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT assignment, stored_at, expires_at
		FROM triage_results
		WHERE session_id = ? AND (expires_at = 0 OR expires_at > ?)
	`, sessionID, time.Now().UnixMilli()).Scan(&payload, &storedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to query result: %w", err)
	}

	result := &core.StoredResult{
		SessionID: sessionID,
		StoredAt:  time.UnixMilli(storedAt),
	}
	if expiresAt > 0 {
		result.ExpiresAt = time.UnixMilli(expiresAt)
	}
	if err := json.Unmarshal([]byte(payload), &result.Assignment); err != nil {
		return nil, fmt.Errorf("failed to decode stored assignment: %w", err)
	}

	return result, nil
}

// Set stores a result, replacing any previous one for the session
func (s *SQLStore) Set(ctx context.Context, result *core.StoredResult) error {
	payload, err := json.Marshal(result.Assignment)
	if err != nil {
		return fmt.Errorf("failed to encode assignment: %w", err)
	}

	var expiresAt int64
	if !result.ExpiresAt.IsZero() {
		expiresAt = result.ExpiresAt.UnixMilli()
	}

	// REPLACE INTO is understood by both SQLite and MySQL
	_, err = s.db.ExecContext(ctx, `
		REPLACE INTO triage_results (session_id, assignment, stored_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, result.SessionID, string(payload), result.StoredAt.UnixMilli(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}

	return nil
}

// Delete removes the result of a session
func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM triage_results
		WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	return nil
}

// Cleanup removes expired results
func (s *SQLStore) Cleanup(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM triage_results
		WHERE expires_at > 0 AND expires_at <= ?
	`, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to clean up expired results: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired results",
			zap.String("driver", s.driver),
			zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (s *SQLStore) Stop() {
	s.cleanup.stop()
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.String("driver", s.driver), zap.Error(err))
	}
}
