package domain

import (
	"encoding/json"
	"fmt"
	"path"
	"time"
)

// Sentinel values used when a provider header is missing.
const (
	DefaultSubject = "No Subject"
	DefaultSender  = "Unknown Sender"
	DefaultDate    = "Unknown Date"
)

// MIMETextPlain is the only part type whose payload contributes to a
// record body.
const MIMETextPlain = "text/plain"

// EmailRecord is the canonical representation of one mailbox message.
// A record is created once at ingestion and never mutated afterwards.
type EmailRecord struct {
	// Subject is the message subject, DefaultSubject when absent.
	Subject string

	// Sender is the From header value, DefaultSender when absent.
	Sender string

	// DateReceived is the provider's Date header verbatim. It is an
	// opaque string and is never reparsed.
	DateReceived string

	// Body is the concatenation of all decoded text/plain parts, in
	// provider order. Empty when no plain-text content was found.
	Body string

	// MessageID is the provider message ID. Set only on records
	// produced by ingestion; records read back from legacy-format
	// blobs have no message ID.
	MessageID string

	// ProcessedAt is the RFC 3339 ingestion timestamp. Set only on
	// ingested records.
	ProcessedAt string

	// Extra holds JSON fields outside the canonical schema so stored
	// records survive an unmarshal/marshal round-trip without losing
	// data. The classification path never reads these.
	Extra map[string]json.RawMessage
}

// knownRecordFields are the canonical JSON keys of EmailRecord.
var knownRecordFields = map[string]struct{}{
	"subject":      {},
	"sender":       {},
	"dateReceived": {},
	"body":         {},
	"messageId":    {},
	"processedAt":  {},
}

// emailRecordJSON is the plain wire form of the canonical fields.
type emailRecordJSON struct {
	Subject      string `json:"subject"`
	Sender       string `json:"sender"`
	DateReceived string `json:"dateReceived"`
	Body         string `json:"body"`
	MessageID    string `json:"messageId,omitempty"`
	ProcessedAt  string `json:"processedAt,omitempty"`
}

// UnmarshalJSON decodes the canonical fields and stashes any unknown
// keys in Extra.
func (r *EmailRecord) UnmarshalJSON(data []byte) error {
	var wire emailRecordJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.Subject = wire.Subject
	r.Sender = wire.Sender
	r.DateReceived = wire.DateReceived
	r.Body = wire.Body
	r.MessageID = wire.MessageID
	r.ProcessedAt = wire.ProcessedAt

	r.Extra = nil
	for key, value := range fields {
		if _, known := knownRecordFields[key]; known {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = value
	}

	return nil
}

// MarshalJSON encodes the canonical fields plus any preserved extras.
// Map encoding sorts keys, so output is deterministic.
func (r EmailRecord) MarshalJSON() ([]byte, error) {
	wire, err := json.Marshal(emailRecordJSON{
		Subject:      r.Subject,
		Sender:       r.Sender,
		DateReceived: r.DateReceived,
		Body:         r.Body,
		MessageID:    r.MessageID,
		ProcessedAt:  r.ProcessedAt,
	})
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return wire, nil
	}

	merged := make(map[string]json.RawMessage, len(r.Extra)+len(knownRecordFields))
	if err := json.Unmarshal(wire, &merged); err != nil {
		return nil, err
	}
	for key, value := range r.Extra {
		if _, known := knownRecordFields[key]; known {
			continue
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}

// ClassificationResult pairs a stored record with its handling category.
// Results are written once per record key; a re-run overwrites the prior
// result at the same key.
type ClassificationResult struct {
	// OriginalKey is the storage key of the source record.
	OriginalKey string `json:"originalKey"`

	// EmailData is the record exactly as it was read.
	EmailData EmailRecord `json:"emailData"`

	// Classification is the classifier's trimmed response, persisted
	// verbatim even when it falls outside the known category set.
	Classification string `json:"classification"`

	// ClassifiedAt is the RFC 3339 classification timestamp.
	ClassifiedAt string `json:"classifiedAt"`
}

// Category is a handling category assigned during classification.
type Category string

// The closed set of handling categories.
const (
	// CategoryStandardFAQ is answerable from the standard FAQ.
	CategoryStandardFAQ Category = "STANDARD_FAQ"

	// CategoryRequiresRAG needs a retrieval-augmented response.
	CategoryRequiresRAG Category = "REQUIRES_RAG"

	// CategoryCRMAddition indicates a new contact or lead for the CRM.
	CategoryCRMAddition Category = "CRM_ADDITION"

	// CategoryNeedsInfo means more information is needed from the sender.
	CategoryNeedsInfo Category = "NEEDS_INFO"
)

// Categories returns the closed category set in a stable order.
func Categories() []Category {
	return []Category{
		CategoryStandardFAQ,
		CategoryRequiresRAG,
		CategoryCRMAddition,
		CategoryNeedsInfo,
	}
}

// KnownCategory reports whether s is a member of the closed category set.
func KnownCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Header is one provider header entry. Order is provider-given and
// preserved.
type Header struct {
	Name  string
	Value string
}

// BodyPart is one MIME part of a multipart message. Data carries the
// provider's base64url-encoded payload; decoding is the normalizer's job.
type BodyPart struct {
	MIMEType string
	Data     string
}

// RawMessage is the provider message shape resolved at the adapter
// boundary: an ordered header list plus either a single inline body
// payload or a list of typed parts. Adapters produce exactly one of the
// two body forms; a message with neither has no extractable body.
type RawMessage struct {
	// ID is the provider message identifier.
	ID string

	// Headers are the message headers in provider order.
	Headers []Header

	// Inline is the base64url body payload of a single-part message.
	Inline string

	// Parts are the typed payloads of a multipart message.
	Parts []BodyPart
}

// Multipart reports whether the message carries a part list rather than
// an inline body.
func (m *RawMessage) Multipart() bool {
	return len(m.Parts) > 0
}

// recordKeyTimeFormat is the timestamp embedded in record keys.
const recordKeyTimeFormat = "20060102150405"

// RecordKey derives the storage key for an ingested record. Embedding
// both the message ID and the ingestion timestamp keeps keys unique per
// run even when the same message is refetched after a crash.
func RecordKey(prefix, messageID string, at time.Time) string {
	return fmt.Sprintf("%s%s_%s.json", prefix, messageID, at.Format(recordKeyTimeFormat))
}

// ResultKey derives the results key for a source record key. Results
// share the source key's base filename under the results namespace, so a
// re-run overwrites rather than appends.
func ResultKey(resultsPrefix, recordKey string) string {
	return resultsPrefix + path.Base(recordKey)
}
