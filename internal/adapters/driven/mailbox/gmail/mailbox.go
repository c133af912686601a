// Package gmail provides a Mailbox adapter backed by the Gmail API.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/ledgerline/mailtriage/internal/core/domain"
	"github.com/ledgerline/mailtriage/internal/core/ports/driven"
)

// Ensure Mailbox implements the interface.
var _ driven.Mailbox = (*Mailbox)(nil)

// userID addresses the authenticated account in Gmail API calls.
const userID = "me"

// DefaultQuery selects unread messages in the primary category.
const DefaultQuery = "category:primary is:unread"

// labelUnread is the Gmail label cleared by MarkRead.
const labelUnread = "UNREAD"

// Mailbox fetches and flags messages through the Gmail API.
// The query is fixed at construction and never re-read mid-run.
type Mailbox struct {
	svc     *gmail.Service
	query   string
	limiter *RateLimiter
}

// NewMailbox creates a Gmail mailbox adapter. An empty query falls back
// to DefaultQuery.
func NewMailbox(svc *gmail.Service, query string) *Mailbox {
	if query == "" {
		query = DefaultQuery
	}
	return &Mailbox{
		svc:     svc,
		query:   query,
		limiter: NewRateLimiter(),
	}
}

// ListUnread returns the IDs of all messages matching the configured
// query, following pagination to the end.
func (m *Mailbox) ListUnread(ctx context.Context) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := m.svc.Users.Messages.List(userID).Q(m.query).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, m.wrapErr("list messages", err)
		}

		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
		}

		if resp.NextPageToken == "" {
			return ids, nil
		}
		pageToken = resp.NextPageToken
	}
}

// GetMessage fetches the full message and resolves the Gmail payload
// tree into the domain shape.
func (m *Mailbox) GetMessage(ctx context.Context, id string) (*domain.RawMessage, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg, err := m.svc.Users.Messages.Get(userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, m.wrapErr("get message", err)
	}
	return convertMessage(msg), nil
}

// MarkRead clears the UNREAD label on one message.
func (m *Mailbox) MarkRead(ctx context.Context, id string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{labelUnread}}
	if _, err := m.svc.Users.Messages.Modify(userID, id, req).Context(ctx).Do(); err != nil {
		return m.wrapErr("mark read", err)
	}
	return nil
}

// Close releases resources. The Gmail client needs no explicit cleanup.
func (m *Mailbox) Close() error {
	return nil
}

// wrapErr wraps an API error and feeds 429 responses back into the rate
// limiter so subsequent calls back off.
func (m *Mailbox) wrapErr(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		m.limiter.RecordRateLimitError(retryAfterSeconds(apiErr))
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// retryAfterSeconds extracts the Retry-After header from a 429 response,
// returning 0 when absent so the limiter applies its default backoff.
func retryAfterSeconds(apiErr *googleapi.Error) int {
	if apiErr.Header == nil {
		return 0
	}
	seconds, err := strconv.Atoi(apiErr.Header.Get("Retry-After"))
	if err != nil {
		return 0
	}
	return seconds
}

// convertMessage resolves the Gmail payload tree into a RawMessage once,
// at the adapter boundary: headers in given order, plus either the part
// list or the single inline body payload.
func convertMessage(msg *gmail.Message) *domain.RawMessage {
	raw := &domain.RawMessage{ID: msg.Id}

	payload := msg.Payload
	if payload == nil {
		return raw
	}

	for _, h := range payload.Headers {
		raw.Headers = append(raw.Headers, domain.Header{Name: h.Name, Value: h.Value})
	}

	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			bp := domain.BodyPart{MIMEType: part.MimeType}
			if part.Body != nil {
				bp.Data = part.Body.Data
			}
			raw.Parts = append(raw.Parts, bp)
		}
		return raw
	}

	if payload.Body != nil {
		raw.Inline = payload.Body.Data
	}
	return raw
}
