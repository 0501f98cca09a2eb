package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Baccarat456/experience-harvester/internal/record"
)

// File appends records to a JSON-lines file, one object per line.
type File struct {
	mu sync.Mutex
	f  *os.File
}

// OpenFile opens (or creates) the JSONL dataset at path for appending.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	return &File{f: f}, nil
}

// Append writes rec as one JSON line.
func (d *File) Append(ctx context.Context, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (d *File) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.f.Close(); err != nil {
		return fmt.Errorf("close dataset: %w", err)
	}
	return nil
}
