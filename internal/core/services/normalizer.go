package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ledgerline/mailtriage/internal/core/domain"
	"github.com/ledgerline/mailtriage/internal/logger"
)

// NormalizeMessage converts a provider message into the canonical record.
// Header lookup is case-insensitive; missing headers keep their default
// sentinels. Body extraction never fails: an unrecognisable body shape is
// logged as a warning and leaves the body empty, because ingestion must
// not abort on unparsable bodies.
//
// MessageID and ProcessedAt are the ingestion pipeline's responsibility,
// not this function's.
func NormalizeMessage(raw *domain.RawMessage) domain.EmailRecord {
	rec := domain.EmailRecord{
		Subject:      domain.DefaultSubject,
		Sender:       domain.DefaultSender,
		DateReceived: domain.DefaultDate,
	}

	for _, h := range raw.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			rec.Subject = h.Value
		case "from":
			rec.Sender = h.Value
		case "date":
			rec.DateReceived = h.Value
		}
	}

	switch {
	case raw.Multipart():
		// Concatenate every decodable text/plain part in provider
		// order. Parts of any other type are ignored.
		var body strings.Builder
		for _, part := range raw.Parts {
			if part.MIMEType != domain.MIMETextPlain || part.Data == "" {
				continue
			}
			decoded, err := decodeBase64URL(part.Data)
			if err != nil {
				logger.Warn("skipping undecodable part in message %s: %v", raw.ID, err)
				continue
			}
			body.Write(decoded)
		}
		rec.Body = body.String()

	case raw.Inline != "":
		decoded, err := decodeBase64URL(raw.Inline)
		if err != nil {
			logger.Warn("undecodable body in message %s: %v", raw.ID, err)
		} else {
			rec.Body = string(decoded)
		}

	default:
		logger.Warn("could not extract body from message %s: no text parts and no inline payload", raw.ID)
	}

	return rec
}

// ParseRecord parses a stored blob into a record. Structured JSON is
// attempted first; anything that is not valid record JSON falls back to
// the legacy plain-text format used before the structured schema existed.
func ParseRecord(data []byte) (domain.EmailRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.EmailRecord{}, fmt.Errorf("%w: empty record blob", domain.ErrInvalidInput)
	}

	var rec domain.EmailRecord
	if err := json.Unmarshal(data, &rec); err == nil {
		return rec, nil
	}

	return parseLegacyText(string(data)), nil
}

// legacyHeaderLines is how many leading lines may carry header prefixes
// in the legacy plain-text format.
const legacyHeaderLines = 3

// parseLegacyText parses the pre-schema plain-text blob format: up to
// three header-prefixed lines in any order, then the body. Missing
// headers keep their defaults; the body is the remaining lines rejoined
// and trimmed.
func parseLegacyText(content string) domain.EmailRecord {
	rec := domain.EmailRecord{
		Subject:      domain.DefaultSubject,
		Sender:       domain.DefaultSender,
		DateReceived: domain.DefaultDate,
	}

	lines := strings.Split(content, "\n")
	header := lines
	if len(header) > legacyHeaderLines {
		header = header[:legacyHeaderLines]
	}

	for _, line := range header {
		switch {
		case strings.HasPrefix(line, "Subject: "):
			rec.Subject = strings.TrimPrefix(line, "Subject: ")
		case strings.HasPrefix(line, "Sender: "):
			rec.Sender = strings.TrimPrefix(line, "Sender: ")
		case strings.HasPrefix(line, "Date Received: "):
			rec.DateReceived = strings.TrimPrefix(line, "Date Received: ")
		}
	}

	if len(lines) > legacyHeaderLines {
		rec.Body = strings.TrimSpace(strings.Join(lines[legacyHeaderLines:], "\n"))
	}

	return rec
}

// decodeBase64URL decodes a base64url payload, accepting both the padded
// and unpadded forms providers emit.
func decodeBase64URL(s string) ([]byte, error) {
	if decoded, err := base64.URLEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
