package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/inbox-triage/internal/metrics"
	"go.uber.org/zap"
)

// TriageService runs the fetch, categorize and store pipeline for a session
type TriageService struct {
	aggregator  *FetchAggregator
	categorizer *Categorizer
	store       ResultStore
	logger      *zap.Logger
	timeout     time.Duration
	resultTTL   time.Duration
}

// NewTriageService creates a new triage service. A zero timeout leaves runs
// unbounded and a zero resultTTL keeps results until replaced.
func NewTriageService(
	aggregator *FetchAggregator,
	categorizer *Categorizer,
	store ResultStore,
	logger *zap.Logger,
	timeout time.Duration,
	resultTTL time.Duration,
) *TriageService {
	return &TriageService{
		aggregator:  aggregator,
		categorizer: categorizer,
		store:       store,
		logger:      logger,
		timeout:     timeout,
		resultTTL:   resultTTL,
	}
}

// Run fetches the mailbox, categorizes the batch and stores the assignment
// for the session. Only a failed fetch or store returns an error;
// categorization failures are carried in the report.
func (s *TriageService) Run(ctx context.Context, sessionID string, mail MailProvider) (*RunReport, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	logger := s.logger.With(zap.String("session_id", sessionID))

	fetched, err := s.aggregator.Fetch(ctx, mail)
	if err != nil {
		metrics.RecordPipelineRun("failed")
		logger.Error("Fetch failed", zap.Error(err))
		return nil, err
	}

	outcome := s.categorizer.Categorize(ctx, fetched.Records)

	if err := s.Store(ctx, sessionID, outcome.Assignment); err != nil {
		metrics.RecordPipelineRun("failed")
		return nil, err
	}

	report := &RunReport{
		SessionID:      sessionID,
		Fetch:          fetched,
		Categorization: outcome,
		Duration:       time.Since(start),
	}

	metrics.RecordPipelineRun("success")
	logger.Info("Pipeline run complete",
		zap.Int("records", len(fetched.Records)),
		zap.Int("skipped", len(fetched.Skipped)),
		zap.Int("categorized", outcome.Assignment.Total()),
		zap.Bool("degraded", outcome.Failure != nil),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// Store replaces the session's stored assignment
func (s *TriageService) Store(ctx context.Context, sessionID string, assignment CategoryAssignment) error {
	now := time.Now()
	result := &StoredResult{
		SessionID:  sessionID,
		Assignment: assignment,
		StoredAt:   now,
	}
	if s.resultTTL > 0 {
		result.ExpiresAt = now.Add(s.resultTTL)
	}
	if err := s.store.Set(ctx, result); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Latest returns the last assignment stored for the session, or an empty
// assignment when none exists
func (s *TriageService) Latest(ctx context.Context, sessionID string) (CategoryAssignment, error) {
	if sessionID == "" {
		return CategoryAssignment{}, nil
	}
	result, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrResultNotFound) {
			return CategoryAssignment{}, nil
		}
		return CategoryAssignment{}, fmt.Errorf("failed to load result: %w", err)
	}
	return result.Assignment, nil
}

// Categorize runs the categorization engine on records that are already
// fetched, computing sender counts first
func (s *TriageService) Categorize(ctx context.Context, records []EmailRecord) *CategorizationOutcome {
	batch := append([]EmailRecord{}, records...)
	assignSenderCounts(batch)
	return s.categorizer.Categorize(ctx, batch)
}
