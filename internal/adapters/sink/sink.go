// Package sink mirrors run records to a durable store on a best-effort basis.
//
// Every implementation merges: fields present in a record overwrite the
// stored ones, fields left out by RunRecord.Fields are kept.
package sink

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/okian/autoapply/internal/config"
	"github.com/okian/autoapply/internal/domain/model"
)

// Sentinel kinds for sink errors.
var (
	ErrUnknownDriver = errors.New("unknown sink driver")
	ErrConnect       = errors.New("sink connect failed")
	ErrWrite         = errors.New("sink write failed")
)

// Sink persists run records.
type Sink interface {
	// Upsert merges rec into the document stored under rec.RunID.
	Upsert(ctx context.Context, rec model.RunRecord) error
	// Name identifies the sink in logs, metrics and health output.
	Name() string
	// Close releases connections.
	Close() error
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// New builds the sink selected by cfg.ResolvedDriver. On error the returned
// Sink is nil.
func New(ctx context.Context, cfg config.SinkConfig) (Sink, error) {
	var (
		sk  Sink
		err error
	)
	switch driver := cfg.ResolvedDriver(); driver {
	case config.DriverNop:
		return NewNop(), nil
	case config.DriverFirestore:
		sk, err = NewFirestore(ctx, cfg.ProjectID, cfg.Collection, cfg.CredentialsFile)
	case config.DriverPostgres:
		sk, err = NewPostgres(ctx, cfg.DSN, cfg.Collection)
	case config.DriverSQLite:
		sk, err = NewSQLite(ctx, cfg.DSN, cfg.Collection)
	case config.DriverRedis:
		sk, err = NewRedis(ctx, cfg.DSN, cfg.Collection)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	return sk, nil
}

func tableName(collection string) (string, error) {
	if collection == "" {
		collection = "applications"
	}
	if !identifier.MatchString(collection) {
		return "", fmt.Errorf("%w: invalid table name %q", ErrConnect, collection)
	}
	return collection, nil
}
