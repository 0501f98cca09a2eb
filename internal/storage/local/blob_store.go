// Package local stores blobs as files under a root directory.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore writes each key as a .json file below root. Keys may contain
// slashes; they become subdirectories.
type BlobStore struct {
	root string
}

// New creates the root directory if needed and returns a store rooted there.
func New(root string) (*BlobStore, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob dir %s: %w", root, err)
	}
	return &BlobStore{root: root}, nil
}

// Save writes data at the given key, replacing any previous content.
func (s *BlobStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is required")
	}
	target := filepath.Join(s.root, filepath.FromSlash(key)+".json")
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create dir for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("write blob %s: %w", target, err)
	}
	return nil
}
