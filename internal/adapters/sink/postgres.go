package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/autoapply/internal/domain/model"
)

// Postgres keeps each run as a jsonb document.
type Postgres struct {
	pool   *pgxpool.Pool
	upsert string
}

// NewPostgres connects to dsn and ensures the table exists.
func NewPostgres(ctx context.Context, dsn, collection string) (*Postgres, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres dsn: %w", ErrConnect, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: %w", ErrConnect, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres ping: %w", ErrConnect, err)
	}

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id     TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, table)
	if _, err := pool.Exec(ctx, create); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: creating %s: %w", ErrConnect, table, err)
	}

	return &Postgres{pool: pool, upsert: postgresUpsert(table)}, nil
}

func postgresUpsert(table string) string {
	return fmt.Sprintf(`INSERT INTO %[1]s (run_id, doc) VALUES ($1, $2::jsonb)
		ON CONFLICT (run_id) DO UPDATE SET doc = %[1]s.doc || EXCLUDED.doc, updated_at = NOW()`, table)
}

// Upsert implements Sink. jsonb concatenation keeps keys absent from rec.
func (p *Postgres) Upsert(ctx context.Context, rec model.RunRecord) error { //nolint:gocritic // hugeParam: matches Sink
	doc, err := json.Marshal(rec.Fields())
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, rec.RunID, err)
	}
	if _, err := p.pool.Exec(ctx, p.upsert, rec.RunID, string(doc)); err != nil {
		return fmt.Errorf("%w: postgres %s: %w", ErrWrite, rec.RunID, err)
	}
	return nil
}

// Name implements Sink.
func (*Postgres) Name() string { return "postgres" }

// Close implements Sink.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
