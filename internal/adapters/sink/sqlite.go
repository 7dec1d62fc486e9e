package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/okian/autoapply/internal/domain/model"
)

// SQLite keeps each run as a JSON document in a local database file.
type SQLite struct {
	db     *sql.DB
	table  string
	upsert string
}

// NewSQLite opens (or creates) the database at path and ensures the table exists.
func NewSQLite(ctx context.Context, path, collection string) (*SQLite, error) {
	table, err := tableName(collection)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite db: %w", ErrConnect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: pinging sqlite db: %w", ErrConnect, err)
	}

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id     TEXT PRIMARY KEY,
		doc        TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`, table)
	if _, err := db.ExecContext(ctx, create); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: creating %s table: %w", ErrConnect, table, err)
	}

	upsert := fmt.Sprintf(`INSERT INTO %[1]s (run_id, doc) VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET doc = json_patch(%[1]s.doc, excluded.doc), updated_at = CURRENT_TIMESTAMP`, table)
	return &SQLite{db: db, table: table, upsert: upsert}, nil
}

// Upsert implements Sink. json_patch keeps keys absent from rec.
func (s *SQLite) Upsert(ctx context.Context, rec model.RunRecord) error { //nolint:gocritic // hugeParam: matches Sink
	doc, err := json.Marshal(rec.Fields())
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, rec.RunID, err)
	}
	if _, err := s.db.ExecContext(ctx, s.upsert, rec.RunID, string(doc)); err != nil {
		return fmt.Errorf("%w: sqlite %s: %w", ErrWrite, rec.RunID, err)
	}
	return nil
}

// Document returns the stored document for runID.
func (s *SQLite) Document(ctx context.Context, runID string) (map[string]any, error) {
	var raw string
	query := fmt.Sprintf("SELECT doc FROM %s WHERE run_id = ?", s.table)
	if err := s.db.QueryRowContext(ctx, query, runID).Scan(&raw); err != nil {
		return nil, fmt.Errorf("reading %s: %w", runID, err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", runID, err)
	}
	return doc, nil
}

// Name implements Sink.
func (*SQLite) Name() string { return "sqlite" }

// Close implements Sink.
func (s *SQLite) Close() error { return s.db.Close() }
