package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/pkg/metrics"
)

// MemoryStore keeps one snapshot per run for the life of the process.
// Snapshots are copied on the way in and on the way out, so a reader never
// shares a job slice with a writer.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]model.RunSnapshot

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its metrics updater, which
// stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		runs:                  make(map[string]model.RunSnapshot),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, snap model.RunSnapshot) error {
	if snap.RunID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_run_id")
		return fmt.Errorf("%w: empty", ErrInvalidRunID)
	}
	c := snap.Clone()

	s.mu.Lock()
	s.runs[c.RunID] = c
	s.mu.Unlock()
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, runID string) (model.RunSnapshot, error) {
	s.mu.RLock()
	snap, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.RunSnapshot{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return snap.Clone(), nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// CountByStatus implements Store.CountByStatus. Every known status is present.
func (s *MemoryStore) CountByStatus(_ context.Context) map[model.RunStatus]int {
	out := make(map[model.RunStatus]int, len(model.AllRunStatuses()))
	for _, st := range model.AllRunStatuses() {
		out[st] = 0
	}
	s.mu.RLock()
	for _, snap := range s.runs {
		out[snap.Status]++
	}
	s.mu.RUnlock()
	return out
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics(ctx context.Context) {
	for status, n := range s.CountByStatus(ctx) {
		metrics.UpdateRunsByStatus(string(status), n)
	}
}
