// Package storage defines the keyed blob store the harvester writes raw
// per-experience payloads to. The abstraction keeps the pipeline independent
// of where blobs land (Google Cloud Storage, the local filesystem, or
// memory); writes are order-independent and last-write-wins per key.
package storage

import "context"

// Provider is the common interface for a blob store.
type Provider interface {
	// Save writes data at the given object key, overwriting any previous
	// value for that key.
	Save(ctx context.Context, key string, data []byte) error
}

// NoOp discards every write. Useful for dry runs where pages are fetched
// and merged but nothing is persisted.
type NoOp struct{}

// Save does nothing.
func (NoOp) Save(context.Context, string, []byte) error { return nil }
