// Package service provides the run orchestrator behind the HTTP API: it
// starts auto-apply runs, drives them through matching and applying, and
// mirrors every state change to the durable sink.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/autoapply/internal/adapters/jobsource"
	eventqueue "github.com/okian/autoapply/internal/adapters/mq/queue"
	workerpool "github.com/okian/autoapply/internal/adapters/mq/worker"
	"github.com/okian/autoapply/internal/adapters/repository"
	"github.com/okian/autoapply/internal/adapters/sink"
	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/internal/domain/scoring"
	"github.com/okian/autoapply/pkg/logger"
	"github.com/okian/autoapply/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	defaultThreshold          = 0.70
	defaultTopN               = 3
	defaultMatchDelay         = time.Second
	defaultApplyDelay         = 500 * time.Millisecond
	defaultScoringConcurrency = 8
	defaultUserID             = "demo-user"
	defaultSinkQueueSize      = 1024
	defaultSinkWorkers        = 2
	defaultSinkWriteTimeout   = 5 * time.Second
	drainTimeout              = 10 * time.Second
)

// Health summarizes which optional backends are live.
type Health struct {
	AIScoring   bool   `json:"aiScoring"`
	DurableSink bool   `json:"durableSink"`
	Scorer      string `json:"scorer"`
	Sink        string `json:"sink"`
}

// Service implements the API dependencies for auto-apply runs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	source      jobsource.Source
	scorer      scoring.Scorer
	sink        sink.Sink
	recordQueue eventqueue.Queue
	workerPool  *workerpool.Pool
	ownsStore   bool

	// Configuration
	profile            model.CandidateProfile
	defaultThreshold   float64
	topN               int
	matchDelay         time.Duration
	applyDelay         time.Duration
	scoringConcurrency int
	userID             string
	sinkQueueSize      int
	sinkWorkers        int
	sinkWriteTimeout   time.Duration
	newID              func() string

	// State
	started    bool
	stopCh     chan struct{}
	runCtx     context.Context
	cancelRuns context.CancelFunc
	runs       sync.WaitGroup

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		profile:            model.DemoProfile(),
		defaultThreshold:   defaultThreshold,
		topN:               defaultTopN,
		matchDelay:         defaultMatchDelay,
		applyDelay:         defaultApplyDelay,
		scoringConcurrency: defaultScoringConcurrency,
		userID:             defaultUserID,
		sinkQueueSize:      defaultSinkQueueSize,
		sinkWorkers:        defaultSinkWorkers,
		sinkWriteTimeout:   defaultSinkWriteTimeout,
		newID:              uuid.NewString,
		logger:             nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the store, the sink queue and its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("runs")
	}

	s.logger.Info(ctx, "starting auto-apply service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.ownsStore = true
	}
	if s.source == nil {
		s.source = jobsource.EmbeddedSource{}
	}
	if s.scorer == nil {
		s.scorer = scoring.NewResilient(nil)
	}
	if s.sink == nil {
		s.sink = sink.NewNop()
	}

	s.recordQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.sinkQueueSize))
	s.workerPool = workerpool.NewPool(s.sinkWorkers, s.recordQueue, s.sink,
		workerpool.WithWriteTimeout(s.sinkWriteTimeout),
	)
	// Sink writes outlive the request that started the service.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	s.runCtx, s.cancelRuns = context.WithCancel(context.WithoutCancel(ctx))

	s.started = true
	health := s.healthLocked()
	s.logger.Info(ctx, "auto-apply service started",
		logger.String("scorer", health.Scorer),
		logger.String("sink", health.Sink),
		logger.Int("topN", s.topN),
		logger.Float64("defaultThreshold", s.defaultThreshold),
	)

	return nil
}

// Stop aborts pending stage timers, waits for runs to settle and drains the
// sink queue before closing the sink.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping auto-apply service...")

	close(s.stopCh)
	s.cancelRuns()
	s.runs.Wait()

	drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	if err := s.workerPool.Shutdown(drainCtx); err != nil {
		s.logger.Warn(ctx, "sink queue not fully drained", logger.Error(err))
	}

	if err := s.sink.Close(); err != nil {
		s.logger.Warn(ctx, "error closing sink", logger.String("sink", s.sink.Name()), logger.Error(err))
	}

	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	s.started = false
	s.logger.Info(ctx, "auto-apply service stopped")
}

// StartRun creates a run and schedules its pipeline. A nil threshold uses
// the default. The returned id is readable through Status immediately.
func (s *Service) StartRun(ctx context.Context, threshold *float64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", ErrNotStarted
	}

	t := s.defaultThreshold
	if threshold != nil {
		t = *threshold
		if math.IsNaN(t) || t < 0 || t > 1 {
			return "", fmt.Errorf("%w: got %v", ErrInvalidThreshold, t)
		}
	}

	runID := s.newID()
	now := time.Now()
	snap := model.RunSnapshot{
		RunID:     runID,
		Status:    model.RunProcessing,
		Threshold: t,
		Jobs:      []model.MatchResult{},
	}
	if err := s.store.Put(ctx, snap); err != nil {
		return "", fmt.Errorf("store run %s: %w", runID, err)
	}

	metrics.RecordRunStarted()
	s.mirror(ctx, model.RunRecord{
		RunID:     runID,
		UserID:    s.userID,
		Status:    model.RunProcessing,
		Threshold: t,
		Jobs:      snap.Jobs,
		CreatedAt: now,
		UpdatedAt: now,
	})

	s.logger.Info(ctx, "run started",
		logger.String("runId", runID),
		logger.Float64("threshold", t),
	)

	s.runs.Add(1)
	go s.runPipeline(runID, t)

	return runID, nil
}

// Status returns the latest snapshot of a run.
func (s *Service) Status(ctx context.Context, runID string) (model.RunSnapshot, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()

	if store == nil {
		return model.RunSnapshot{}, ErrNotStarted
	}
	return store.Get(ctx, runID)
}

// Health reports the live scoring backend and sink.
func (s *Service) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthLocked()
}

func (s *Service) healthLocked() Health {
	h := Health{Scorer: "heuristic", Sink: "nop"}
	if s.scorer != nil {
		h.Scorer = scoring.NameOf(s.scorer)
		if b, ok := s.scorer.(interface{ HasBackend() bool }); ok {
			h.AIScoring = b.HasBackend()
		} else {
			h.AIScoring = h.Scorer != "heuristic"
		}
	}
	if s.sink != nil {
		h.Sink = s.sink.Name()
		h.DurableSink = h.Sink != "nop"
	}
	return h
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"topN":             s.topN,
		"defaultThreshold": s.defaultThreshold,
		"sinkWorkers":      s.sinkWorkers,
		"sinkQueueSize":    s.sinkQueueSize,
	}

	if s.started {
		queueLen := s.recordQueue.Len(ctx)
		byStatus := make(map[string]int)
		for status, n := range s.store.CountByStatus(ctx) {
			byStatus[string(status)] = n
		}
		health := s.healthLocked()

		stats["queueLength"] = queueLen
		stats["totalRuns"] = s.store.Count(ctx)
		stats["runsByStatus"] = byStatus
		stats["scorer"] = health.Scorer
		stats["sink"] = health.Sink

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}

// mirror hands a record to the sink queue without blocking the pipeline.
func (s *Service) mirror(ctx context.Context, rec model.RunRecord) { //nolint:gocritic // hugeParam: records are passed by value for channel semantics
	if err := s.recordQueue.Enqueue(ctx, rec); err != nil {
		metrics.RecordSinkDropped()
		s.logger.Warn(ctx, "run record dropped",
			logger.String("runId", rec.RunID),
			logger.String("status", string(rec.Status)),
			logger.Error(err),
		)
		return
	}
	metrics.UpdateQueueSize(s.recordQueue.Len(ctx))
}
