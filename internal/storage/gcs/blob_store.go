// Package gcs provides a blob store backed by Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
)

// Config captures the parameters required to write to GCS.
type Config struct {
	Bucket string
	// Prefix is joined in front of every object key.
	Prefix string
	// ContentType is set on every written object.
	ContentType string
}

// BlobStore writes payloads to a configured GCS bucket.
type BlobStore struct {
	client *storage.Client
	cfg    Config
}

// New creates a GCS-backed blob store.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &BlobStore{client: client, cfg: cfg}, nil
}

// Save uploads data at the given key, overwriting any previous object.
func (s *BlobStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("object key is required")
	}
	object := key
	if s.cfg.Prefix != "" {
		object = path.Join(s.cfg.Prefix, key)
	}
	writer := s.client.Bucket(s.cfg.Bucket).Object(object).NewWriter(ctx)
	if s.cfg.ContentType != "" {
		writer.ContentType = s.cfg.ContentType
	}
	if _, err := writer.Write(data); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return fmt.Errorf("write object %s: %w (close writer: %v)", object, err, closeErr)
		}
		return fmt.Errorf("write object %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", object, err)
	}
	return nil
}
