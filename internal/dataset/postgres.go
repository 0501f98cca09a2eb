package dataset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Baccarat456/experience-harvester/internal/record"
)

// Executor is the slice of pgx a Postgres dataset needs. *pgxpool.Pool
// satisfies it, as do the pgxmock pools used in tests.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres appends records to a relational table. Expected schema:
//
//	CREATE TABLE experience_records (
//	    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    place_id     TEXT,
//	    url          TEXT NOT NULL,
//	    extracted_at TIMESTAMPTZ NOT NULL,
//	    payload      JSONB NOT NULL,
//	    created_at   TIMESTAMPTZ DEFAULT NOW()
//	);
//
// The full record lands in the JSONB payload column so schema drift in the
// scraped fields never requires a migration.
type Postgres struct {
	db      Executor
	closeFn func()
}

// NewPostgres wraps an existing executor. Close is a no-op; the caller owns
// the connection.
func NewPostgres(db Executor) *Postgres {
	return &Postgres{db: db, closeFn: func() {}}
}

// ConnectPostgres opens a pgx pool for dsn and verifies it with a ping.
func ConnectPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{db: pool, closeFn: pool.Close}, nil
}

const insertRecordSQL = `
	INSERT INTO experience_records (place_id, url, extracted_at, payload)
	VALUES ($1, $2, $3, $4)
`

// Append inserts one row for rec.
func (p *Postgres) Append(ctx context.Context, rec record.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := p.db.Exec(ctx, insertRecordSQL, placeIDText(rec.PlaceID), rec.URL, rec.ExtractedAt, payload); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Close releases the pool when this dataset owns it.
func (p *Postgres) Close() error {
	p.closeFn()
	return nil
}

func placeIDText(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}
