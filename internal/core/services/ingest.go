package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/mailtriage/internal/core/domain"
	"github.com/ledgerline/mailtriage/internal/core/ports/driven"
	"github.com/ledgerline/mailtriage/internal/core/ports/driving"
	"github.com/ledgerline/mailtriage/internal/logger"
)

// Default storage namespaces for records and classification results.
const (
	DefaultRecordPrefix = "emails/"
	DefaultResultPrefix = "results/"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService pulls unread messages from the mailbox, normalizes them
// and persists them as records. Its one hard invariant: a message is
// marked read only after its record write succeeded, so a crash can
// duplicate a record (under a distinct key) but never lose a message.
type IngestService struct {
	mailbox driven.Mailbox
	store   driven.BlobStore
	prefix  string
	now     func() time.Time
}

// NewIngestService creates an ingestion pipeline writing records under
// prefix (DefaultRecordPrefix when empty).
func NewIngestService(mailbox driven.Mailbox, store driven.BlobStore, prefix string) *IngestService {
	if prefix == "" {
		prefix = DefaultRecordPrefix
	}
	return &IngestService{
		mailbox: mailbox,
		store:   store,
		prefix:  prefix,
		now:     time.Now,
	}
}

// Ingest runs one ingestion pass. A failed mailbox query fails the run;
// a failure on any single message is logged, counted and skipped.
func (s *IngestService) Ingest(ctx context.Context) (*driving.IngestReport, error) {
	report := &driving.IngestReport{RunID: uuid.NewString()}

	ids, err := s.mailbox.ListUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unread: %w", err)
	}
	if len(ids) == 0 {
		logger.Info("no new messages to process")
		return report, nil
	}

	logger.Info("found %d messages to process (run %s)", len(ids), report.RunID)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.processMessage(ctx, id); err != nil {
			report.Failed++
			logger.Error("processing message %s: %v", id, err)
			continue
		}
		report.Processed++
	}

	logger.Info("ingestion complete: %d processed, %d failed", report.Processed, report.Failed)
	return report, nil
}

// processMessage runs the per-message pipeline: fetch, normalize, write,
// then mark read. MarkRead is reachable only after the record write
// succeeded; a crash between the two re-delivers the message on the next
// run under a fresh key.
func (s *IngestService) processMessage(ctx context.Context, id string) error {
	raw, err := s.mailbox.GetMessage(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	now := s.now()
	rec := NormalizeMessage(raw)
	rec.MessageID = id
	rec.ProcessedAt = now.Format(time.RFC3339)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	key := domain.RecordKey(s.prefix, id, now)
	if err := s.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("store record: %w", err)
	}

	if err := s.mailbox.MarkRead(ctx, id); err != nil {
		// The record is already durable. Leaving the message unread
		// means it is ingested again next run, which is the accepted
		// cost of never losing one.
		return fmt.Errorf("mark read: %w", err)
	}

	logger.Debug("processed and marked read: %s -> %s", id, key)
	return nil
}
