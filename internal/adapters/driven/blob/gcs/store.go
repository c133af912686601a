// Package gcs provides a BlobStore adapter backed by Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/googleapi"
	storage "google.golang.org/api/storage/v1"

	"github.com/ledgerline/mailtriage/internal/core/domain"
	"github.com/ledgerline/mailtriage/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store reads and writes objects in a single GCS bucket.
type Store struct {
	svc    *storage.Service
	bucket string
}

// NewStore wraps an authenticated storage service for one bucket.
func NewStore(svc *storage.Service, bucket string) *Store {
	return &Store{svc: svc, bucket: bucket}
}

// List returns the keys of all objects under prefix, following pagination.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	call := s.svc.Objects.List(s.bucket).Prefix(prefix).Context(ctx)

	for {
		objects, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range objects.Items {
			keys = append(keys, obj.Name)
		}
		if objects.NextPageToken == "" {
			break
		}
		call = call.PageToken(objects.NextPageToken)
	}

	return keys, nil
}

// Get downloads one object. A missing object maps to domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.svc.Objects.Get(s.bucket, key).Context(ctx).Download()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("get %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put uploads one object, replacing any existing object at key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	obj := &storage.Object{Name: key}
	_, err := s.svc.Objects.Insert(s.bucket, obj).
		Media(bytes.NewReader(data), googleapi.ContentType("application/json")).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
