package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTripIsIdempotent(t *testing.T) {
	original := EmailRecord{
		Subject:      "Invoice #4",
		Sender:       "billing@acme.com",
		DateReceived: "Mon, 2 Jun 2025 10:00:00 +0000",
		Body:         "Please send the January invoice.",
		MessageID:    "18c2f9a1",
		ProcessedAt:  "2025-06-02T10:05:00Z",
	}

	first, err := json.Marshal(original)
	require.NoError(t, err)

	var parsed EmailRecord
	require.NoError(t, json.Unmarshal(first, &parsed))

	second, err := json.Marshal(parsed)
	require.NoError(t, err)

	assert.Equal(t, original, parsed)
	assert.JSONEq(t, string(first), string(second))
}

func TestRecordPreservesUnknownFields(t *testing.T) {
	blob := `{
		"subject": "Hello",
		"sender": "a@b.com",
		"dateReceived": "Unknown Date",
		"body": "hi",
		"threadId": "t-42",
		"labels": ["INBOX", "IMPORTANT"]
	}`

	var rec EmailRecord
	require.NoError(t, json.Unmarshal([]byte(blob), &rec))
	assert.Equal(t, "Hello", rec.Subject)
	require.Contains(t, rec.Extra, "threadId")
	require.Contains(t, rec.Extra, "labels")

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, blob, string(out))
}

func TestRecordOmitsIngestionFieldsWhenAbsent(t *testing.T) {
	rec := EmailRecord{
		Subject:      DefaultSubject,
		Sender:       DefaultSender,
		DateReceived: DefaultDate,
	}

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "messageId")
	assert.NotContains(t, string(out), "processedAt")
}

func TestRecordKeyEmbedsIDAndTimestamp(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 5, 0, 0, time.UTC)

	key := RecordKey("emails/", "18c2f9a1", at)
	assert.Equal(t, "emails/18c2f9a1_20250602100500.json", key)
}

func TestResultKeyUsesBaseFilename(t *testing.T) {
	key := ResultKey("results/", "emails/18c2f9a1_20250602100500.json")
	assert.Equal(t, "results/18c2f9a1_20250602100500.json", key)
}

func TestKnownCategory(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, KnownCategory(string(c)), string(c))
	}
	assert.False(t, KnownCategory("SOMETHING_ELSE"))
	assert.False(t, KnownCategory("standard_faq"))
}

func TestMultipart(t *testing.T) {
	single := RawMessage{Inline: "aGVsbG8="}
	assert.False(t, single.Multipart())

	multi := RawMessage{Parts: []BodyPart{{MIMEType: MIMETextPlain, Data: "aGVsbG8="}}}
	assert.True(t, multi.Multipart())
}
