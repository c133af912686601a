// Package auth builds OAuth token sources from credential files on disk.
//
// The Gmail provider expects two files: the OAuth client credentials JSON
// downloaded from the Google Cloud console, and a token JSON obtained from
// a prior consent flow. Both are read once at startup; a missing file is a
// startup error rather than a per-message one.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/ledgerline/mailtriage/internal/core/domain"
)

// TokenSourceFromFiles loads the OAuth client config and stored token and
// returns a refreshing token source scoped to gmail.modify. The modify
// scope is the narrowest one that allows clearing the UNREAD label.
func TokenSourceFromFiles(ctx context.Context, credentialsPath, tokenPath string) (oauth2.TokenSource, error) {
	credentials, err := os.ReadFile(credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no credentials file at %s", domain.ErrMissingConfig, credentialsPath)
		}
		return nil, fmt.Errorf("read credentials %s: %w", credentialsPath, err)
	}

	cfg, err := google.ConfigFromJSON(credentials, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", credentialsPath, err)
	}

	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, err
	}

	return cfg.TokenSource(ctx, token), nil
}

// loadToken reads a stored oauth2.Token from a JSON file.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no token file at %s (run the consent flow first)", domain.ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("read token %s: %w", path, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", path, err)
	}
	return &token, nil
}
