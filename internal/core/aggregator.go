package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/inbox-triage/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxMessages is the largest batch the aggregator fetches
const MaxMessages = 60

var metadataHeaders = []string{"From", "Subject"}

// FetchAggregator retrieves a bounded batch of message summaries. A failure
// on one message never aborts the batch.
type FetchAggregator struct {
	logger      *zap.Logger
	maxMessages int
	workers     int
}

// NewFetchAggregator creates a new fetch aggregator. maxMessages is clamped
// to 1..MaxMessages and workers below 1 mean sequential fetching.
func NewFetchAggregator(logger *zap.Logger, maxMessages int, workers int) *FetchAggregator {
	if maxMessages <= 0 || maxMessages > MaxMessages {
		maxMessages = MaxMessages
	}
	if workers < 1 {
		workers = 1
	}
	return &FetchAggregator{
		logger:      logger,
		maxMessages: maxMessages,
		workers:     workers,
	}
}

type fetchSlot struct {
	record *EmailRecord
	err    error
}

// Fetch lists recent messages and builds one record per message that could
// be read in full. Records keep the provider's listing order.
func (a *FetchAggregator) Fetch(ctx context.Context, mail MailProvider) (*FetchResult, error) {
	// List the most recent messages first
	ids, err := mail.ListMessageIDs(ctx, a.maxMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(ids) > a.maxMessages {
		ids = ids[:a.maxMessages]
	}

	// Read each message into its own slot so listing order survives
	slots := make([]fetchSlot, len(ids))
	if a.workers == 1 {
		for i, id := range ids {
			slots[i].record, slots[i].err = a.fetchOne(ctx, mail, id)
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(a.workers)
		for i, id := range ids {
			g.Go(func() error {
				slots[i].record, slots[i].err = a.fetchOne(ctx, mail, id)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch interrupted: %w", err)
	}

	// Collect records, skipping messages that failed
	result := &FetchResult{Records: make([]EmailRecord, 0, len(ids))}
	for i, slot := range slots {
		if slot.err != nil {
			a.logger.Warn("Skipping message",
				zap.String("message_id", ids[i]),
				zap.Error(slot.err))
			result.Skipped = append(result.Skipped, SkippedMessage{ID: ids[i], Reason: slot.err.Error()})
			metrics.RecordMessageFetched("skipped")
			continue
		}
		result.Records = append(result.Records, *slot.record)
		metrics.RecordMessageFetched("ok")
	}

	// Second pass over the finished batch
	assignSenderCounts(result.Records)

	a.logger.Info("Fetched messages",
		zap.Int("listed", len(ids)),
		zap.Int("records", len(result.Records)),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// fetchOne reads headers and snippet of one message. Both reads must succeed.
func (a *FetchAggregator) fetchOne(ctx context.Context, mail MailProvider, id string) (*EmailRecord, error) {
	headers, err := mail.GetHeaders(ctx, id, metadataHeaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to get headers: %w", err)
	}
	snippet, err := mail.GetSnippet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snippet: %w", err)
	}

	from, ok := lookupHeader(headers, "From")
	if !ok {
		from = DefaultSender
	}
	subject, ok := lookupHeader(headers, "Subject")
	if !ok {
		subject = DefaultSubject
	}

	return &EmailRecord{
		ID:      id,
		Sender:  StripSender(from),
		Subject: subject,
		Snippet: snippet,
	}, nil
}

func lookupHeader(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
