package driven

import (
	"context"

	"github.com/ledgerline/mailtriage/internal/core/domain"
)

// Mailbox fetches and flags messages at a mail provider.
// The unread filter (query, folder, category) is fixed when the adapter
// is constructed and is not re-read mid-run.
//
// Implementations may include:
//   - Gmail (REST API)
//   - IMAP servers
type Mailbox interface {
	// ListUnread returns the IDs of unread messages matching the
	// configured filter. An empty slice is a successful, empty run.
	ListUnread(ctx context.Context) ([]string, error)

	// GetMessage fetches the full content of one message and resolves
	// the provider's payload shape into a RawMessage.
	GetMessage(ctx context.Context, id string) (*domain.RawMessage, error)

	// MarkRead clears the unread flag on one message. Callers must
	// only invoke this after the message's record has been durably
	// stored; the ingestion pipeline owns that ordering.
	MarkRead(ctx context.Context, id string) error

	// Close releases provider connections.
	Close() error
}
