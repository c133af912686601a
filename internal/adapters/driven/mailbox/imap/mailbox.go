// Package imap provides a Mailbox adapter for plain IMAP servers.
package imap

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/ledgerline/mailtriage/internal/core/domain"
	"github.com/ledgerline/mailtriage/internal/core/ports/driven"
	"github.com/ledgerline/mailtriage/internal/logger"
)

// Ensure Mailbox implements the interface.
var _ driven.Mailbox = (*Mailbox)(nil)

// DefaultFolder is selected when no folder is configured.
const DefaultFolder = "INBOX"

// Config holds IMAP connection settings.
type Config struct {
	// Address is the host:port of the IMAP server (TLS).
	Address string
	// Username and Password authenticate the account.
	Username string
	Password string
	// Folder is the mailbox folder to process, DefaultFolder when empty.
	Folder string
}

// Mailbox fetches and flags messages over IMAP. Message IDs are UIDs of
// the selected folder, formatted as decimal strings.
type Mailbox struct {
	c      *client.Client
	folder string
}

// Dial connects, authenticates and selects the configured folder.
func Dial(cfg Config) (*Mailbox, error) {
	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}

	c, err := client.DialTLS(cfg.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("dial imap %s: %w", cfg.Address, err)
	}

	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select(cfg.Folder, false); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("select folder %s: %w", cfg.Folder, err)
	}

	return &Mailbox{c: c, folder: cfg.Folder}, nil
}

// ListUnread returns the UIDs of messages without the \Seen flag.
func (m *Mailbox) ListUnread(_ context.Context) ([]string, error) {
	criteria := goimap.NewSearchCriteria()
	criteria.WithoutFlags = []string{goimap.SeenFlag}

	uids, err := m.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("search unseen: %w", err)
	}

	ids := make([]string, 0, len(uids))
	for _, uid := range uids {
		ids = append(ids, strconv.FormatUint(uint64(uid), 10))
	}
	return ids, nil
}

// GetMessage fetches one message body. The fetch uses BODY.PEEK so the
// server never flips the \Seen flag as a side effect; only MarkRead,
// sequenced by the ingestion pipeline, does that.
func (m *Mailbox) GetMessage(_ context.Context, id string) (*domain.RawMessage, error) {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad uid %q", domain.ErrInvalidInput, id)
	}

	seqSet := new(goimap.SeqSet)
	seqSet.AddNum(uint32(uid))

	section := &goimap.BodySectionName{Peek: true}
	items := []goimap.FetchItem{section.FetchItem()}

	messages := make(chan *goimap.Message, 1)
	if err := m.c.UidFetch(seqSet, items, messages); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}

	msg := <-messages
	if msg == nil {
		return nil, fmt.Errorf("fetch %s: %w", id, domain.ErrNotFound)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("fetch %s: no body section returned", id)
	}

	return parseMessage(id, body)
}

// MarkRead sets the \Seen flag on one message.
func (m *Mailbox) MarkRead(_ context.Context, id string) error {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: bad uid %q", domain.ErrInvalidInput, id)
	}

	seqSet := new(goimap.SeqSet)
	seqSet.AddNum(uint32(uid))

	op := goimap.FormatFlagsOp(goimap.AddFlags, true)
	flags := []interface{}{goimap.SeenFlag}
	if err := m.c.UidStore(seqSet, op, flags, nil); err != nil {
		return fmt.Errorf("store \\Seen on %s: %w", id, err)
	}
	return nil
}

// Close logs out of the server.
func (m *Mailbox) Close() error {
	return m.c.Logout()
}

// parseMessage resolves an RFC 822 message into the domain shape:
// headers in wire order, inline parts as base64url payloads matching the
// provider contract the normalizer expects.
func parseMessage(id string, r io.Reader) (*domain.RawMessage, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("read message %s: %w", id, err)
	}

	raw := &domain.RawMessage{ID: id}

	fields := mr.Header.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			// Keep the undecodable raw value rather than dropping
			// the header.
			value = fields.Value()
		}
		raw.Headers = append(raw.Headers, domain.Header{Name: fields.Key(), Value: value})
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping unreadable part in message %s: %v", id, err)
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue // attachments carry no body text
		}

		contentType, _, err := header.ContentType()
		if err != nil {
			contentType = "application/octet-stream"
		}

		content, err := io.ReadAll(part.Body)
		if err != nil {
			logger.Warn("skipping unreadable part in message %s: %v", id, err)
			continue
		}

		raw.Parts = append(raw.Parts, domain.BodyPart{
			MIMEType: contentType,
			Data:     base64.URLEncoding.EncodeToString(content),
		})
	}

	return raw, nil
}
