// Package notify fans out record-completion events so downstream consumers
// can react to freshly harvested experiences.
package notify

import "context"

// Notifier is told about every record successfully appended to the dataset.
// Implementations must never fail the caller; delivery is best effort.
type Notifier interface {
	RecordStored(ctx context.Context, placeID, url string)
	Close() error
}

// NoOp swallows every event.
type NoOp struct{}

// RecordStored does nothing.
func (NoOp) RecordStored(context.Context, string, string) {}

// Close does nothing.
func (NoOp) Close() error { return nil }
