// Package repository holds the process-lifetime run store.
package repository

import (
	"context"

	"github.com/okian/autoapply/internal/domain/model"
)

// Store provides read/write access to run snapshots.
type Store interface {
	// Put replaces the snapshot stored under snap.RunID.
	Put(ctx context.Context, snap model.RunSnapshot) error

	// Get returns the latest snapshot for runID.
	// Returns ErrRunNotFound if the run is unknown.
	Get(ctx context.Context, runID string) (model.RunSnapshot, error)

	// Count returns the number of runs tracked.
	Count(ctx context.Context) int

	// CountByStatus returns the number of runs in each status.
	CountByStatus(ctx context.Context) map[model.RunStatus]int
}
