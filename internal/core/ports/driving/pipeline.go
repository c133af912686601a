package driving

import "context"

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// RunID uniquely identifies the run in logs.
	RunID string

	// Processed counts messages stored and marked read.
	Processed int

	// Failed counts messages skipped after a per-message fault.
	Failed int
}

// Ingestor pulls unread messages from the mailbox and persists them as
// records. Per-message faults are isolated; only a failed mailbox query
// fails the run.
type Ingestor interface {
	Ingest(ctx context.Context) (*IngestReport, error)
}

// ClassifyReport summarises one classification run.
type ClassifyReport struct {
	// RunID uniquely identifies the run in logs.
	RunID string

	// Classified counts records with a persisted result.
	Classified int

	// Failed counts records skipped after a per-record fault.
	Failed int
}

// ClassifyRunner classifies stored records under a key prefix. Per-record
// faults are isolated; only a failed listing fails the run.
type ClassifyRunner interface {
	ClassifyAll(ctx context.Context, prefix string) (*ClassifyReport, error)
}
