package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/mailtriage/internal/core/domain"
)

func TestNewClassifierRequiresAPIKey(t *testing.T) {
	_, err := NewClassifier(Config{})
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestNewClassifierDefaults(t *testing.T) {
	c, err := NewClassifier(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.ModelName())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

func TestClassifyReturnsText(t *testing.T) {
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"STANDARD_FAQ"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	c, err := NewClassifier(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	result, err := c.Classify(context.Background(), "classify this email")
	require.NoError(t, err)
	assert.Equal(t, "STANDARD_FAQ", result)

	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "classify this email", gotReq.Messages[0].Content)
}

func TestClassifyConcatenatesTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"REQUIRES"},{"type":"text","text":"_RAG"}]}`))
	}))
	defer srv.Close()

	c, err := NewClassifier(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	result, err := c.Classify(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "REQUIRES_RAG", result)
}

func TestClassifyRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClassifier(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	good, err := NewClassifier(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, good.Ping(context.Background()))

	bad, err := NewClassifier(Config{APIKey: "wrong-key", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Error(t, bad.Ping(context.Background()))
}

func TestClassifyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer srv.Close()

	c, err := NewClassifier(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
}
