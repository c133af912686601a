package services

import (
	"bytes"
	"encoding/base64"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/mailtriage/internal/core/domain"
	"github.com/ledgerline/mailtriage/internal/logger"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestNormalizeMessageHeaders(t *testing.T) {
	raw := &domain.RawMessage{
		ID: "msg-1",
		Headers: []domain.Header{
			{Name: "SUBJECT", Value: "Quarterly report"},
			{Name: "From", Value: "alice@example.com"},
			{Name: "date", Value: "Mon, 2 Jun 2025 10:00:00 +0000"},
			{Name: "X-Mailer", Value: "something"},
		},
		Inline: b64("see attachment"),
	}

	rec := NormalizeMessage(raw)
	assert.Equal(t, "Quarterly report", rec.Subject)
	assert.Equal(t, "alice@example.com", rec.Sender)
	assert.Equal(t, "Mon, 2 Jun 2025 10:00:00 +0000", rec.DateReceived)
	assert.Equal(t, "see attachment", rec.Body)
}

func TestNormalizeMessageDefaultsMissingHeaders(t *testing.T) {
	rec := NormalizeMessage(&domain.RawMessage{ID: "msg-2", Inline: b64("hi")})

	assert.Equal(t, domain.DefaultSubject, rec.Subject)
	assert.Equal(t, domain.DefaultSender, rec.Sender)
	assert.Equal(t, domain.DefaultDate, rec.DateReceived)
}

func TestNormalizeMessageConcatenatesTextParts(t *testing.T) {
	raw := &domain.RawMessage{
		ID: "msg-3",
		Parts: []domain.BodyPart{
			{MIMEType: "text/plain", Data: b64("first part. ")},
			{MIMEType: "text/html", Data: b64("<p>ignored</p>")},
			{MIMEType: "text/plain", Data: b64("second part.")},
		},
	}

	rec := NormalizeMessage(raw)
	assert.Equal(t, "first part. second part.", rec.Body)
}

func TestNormalizeMessageSkipsPartsWithoutPayload(t *testing.T) {
	raw := &domain.RawMessage{
		ID: "msg-4",
		Parts: []domain.BodyPart{
			{MIMEType: "text/plain", Data: ""},
			{MIMEType: "text/plain", Data: b64("kept")},
		},
	}

	rec := NormalizeMessage(raw)
	assert.Equal(t, "kept", rec.Body)
}

func TestNormalizeMessageNoBodyWarnsNotErrors(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	rec := NormalizeMessage(&domain.RawMessage{
		ID:      "msg-5",
		Headers: []domain.Header{{Name: "Subject", Value: "empty"}},
	})

	assert.Empty(t, rec.Body)
	assert.Contains(t, buf.String(), "could not extract body")
}

func TestNormalizeMessageUnpaddedBase64(t *testing.T) {
	unpadded := base64.RawURLEncoding.EncodeToString([]byte("gmail style"))

	rec := NormalizeMessage(&domain.RawMessage{ID: "msg-6", Inline: unpadded})
	assert.Equal(t, "gmail style", rec.Body)
}

func TestParseRecordStructured(t *testing.T) {
	blob := []byte(`{"subject":"S","sender":"a@b.com","dateReceived":"D","body":"B"}`)

	rec, err := ParseRecord(blob)
	require.NoError(t, err)
	assert.Equal(t, "S", rec.Subject)
	assert.Equal(t, "a@b.com", rec.Sender)
	assert.Equal(t, "B", rec.Body)
}

func TestParseRecordLegacyFallback(t *testing.T) {
	blob := []byte("Subject: Old format\nSender: legacy@example.com\nDate Received: 2019-04-01\nline one\nline two\n")

	rec, err := ParseRecord(blob)
	require.NoError(t, err)
	assert.Equal(t, "Old format", rec.Subject)
	assert.Equal(t, "legacy@example.com", rec.Sender)
	assert.Equal(t, "2019-04-01", rec.DateReceived)
	assert.Equal(t, "line one\nline two", rec.Body)
	assert.Empty(t, rec.MessageID)
}

func TestParseRecordLegacyHeadersAnyOrder(t *testing.T) {
	blob := []byte("Date Received: 2019-04-01\nSubject: Reordered\nSender: x@y.com\nbody text")

	rec, err := ParseRecord(blob)
	require.NoError(t, err)
	assert.Equal(t, "Reordered", rec.Subject)
	assert.Equal(t, "x@y.com", rec.Sender)
	assert.Equal(t, "2019-04-01", rec.DateReceived)
	assert.Equal(t, "body text", rec.Body)
}

func TestParseRecordLegacyShortBlob(t *testing.T) {
	rec, err := ParseRecord([]byte("Subject: Only subject\nSender: s@t.com"))
	require.NoError(t, err)
	assert.Equal(t, "Only subject", rec.Subject)
	assert.Equal(t, "s@t.com", rec.Sender)
	assert.Equal(t, domain.DefaultDate, rec.DateReceived)
	assert.Empty(t, rec.Body)
}

func TestParseRecordLegacyTrimsBody(t *testing.T) {
	blob := []byte("Subject: S\nSender: a@b.com\nDate Received: D\n\n  body with padding  \n\n")

	rec, err := ParseRecord(blob)
	require.NoError(t, err)
	assert.Equal(t, "body with padding", rec.Body)
}

func TestParseRecordEmptyBlob(t *testing.T) {
	_, err := ParseRecord([]byte("  \n "))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
