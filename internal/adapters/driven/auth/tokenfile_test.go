package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/mailtriage/internal/core/domain"
)

const testCredentials = `{
  "installed": {
    "client_id": "client-id.apps.googleusercontent.com",
    "client_secret": "client-secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost"]
  }
}`

const testToken = `{
  "access_token": "ya29.test",
  "token_type": "Bearer",
  "refresh_token": "refresh-test",
  "expiry": "2030-01-01T00:00:00Z"
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestTokenSourceFromFiles(t *testing.T) {
	dir := t.TempDir()
	credsPath := writeFile(t, dir, "credentials.json", testCredentials)
	tokenPath := writeFile(t, dir, "token.json", testToken)

	ts, err := TokenSourceFromFiles(context.Background(), credsPath, tokenPath)
	require.NoError(t, err)

	// The stored token is still valid, so no refresh round-trip happens.
	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.test", token.AccessToken)
}

func TestTokenSourceMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	tokenPath := writeFile(t, dir, "token.json", testToken)

	_, err := TokenSourceFromFiles(context.Background(), filepath.Join(dir, "nope.json"), tokenPath)
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestTokenSourceMissingToken(t *testing.T) {
	dir := t.TempDir()
	credsPath := writeFile(t, dir, "credentials.json", testCredentials)

	_, err := TokenSourceFromFiles(context.Background(), credsPath, filepath.Join(dir, "nope.json"))
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestTokenSourceMalformedToken(t *testing.T) {
	dir := t.TempDir()
	credsPath := writeFile(t, dir, "credentials.json", testCredentials)
	tokenPath := writeFile(t, dir, "token.json", "{not json")

	_, err := TokenSourceFromFiles(context.Background(), credsPath, tokenPath)
	assert.Error(t, err)
}
