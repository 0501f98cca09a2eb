// Package dataset persists canonical experience records. The dataset is
// append-only: one record per processed URL, no in-pipeline deduplication.
// Two URLs resolving to the same place produce two rows; collapsing them is
// a downstream concern.
package dataset

import (
	"context"

	"github.com/Baccarat456/experience-harvester/internal/record"
)

// Appender is the record sink the pipeline writes to. Appends from
// concurrently processed URLs may arrive in any order.
type Appender interface {
	Append(ctx context.Context, rec record.Record) error
	Close() error
}

// NoOp discards records, for dry runs.
type NoOp struct{}

// Append does nothing.
func (NoOp) Append(context.Context, record.Record) error { return nil }

// Close does nothing.
func (NoOp) Close() error { return nil }
