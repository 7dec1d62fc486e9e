// Package worker drains the record queue into the durable sink.
package worker

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/pkg/logger"
	"github.com/okian/autoapply/pkg/metrics"
)

const (
	defaultWriteTimeout = 5 * time.Second
	poolShutdownTimeout = 30 * time.Second
	partitionBuffer     = 64
)

// Record abstracts what workers read off the queue.
type Record = model.RunRecord

// Writer persists a record. Implementations merge into any existing document.
type Writer interface {
	Upsert(ctx context.Context, rec model.RunRecord) error
	Name() string
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker processes records using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for writing run records.
type InMemoryWorker struct {
	queue        Queue
	writer       Writer
	name         string
	writeTimeout time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, writer Writer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:        queue,
		writer:       writer,
		name:         "worker",
		writeTimeout: defaultWriteTimeout,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		logger:       logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			if err := w.process(ctx, rec); err != nil {
				w.logger.Warn(ctx, "sink write failed", logger.Error(err))
			}
		}
	}
}

// Shutdown implements Worker.Shutdown.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, rec Record) error { //nolint:gocritic // hugeParam: records are passed by value for channel semantics
	wctx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()

	start := time.Now()
	err := w.writer.Upsert(wctx, rec)
	latency := float64(time.Since(start).Milliseconds())

	if err != nil {
		metrics.RecordSinkWrite(w.writer.Name(), "error", latency)
		metrics.RecordErrorByComponent("worker", "sink_write_error")
		return fmt.Errorf("upsert run %s to %s: %w", rec.RunID, w.writer.Name(), err)
	}
	metrics.RecordSinkWrite(w.writer.Name(), "ok", latency)
	w.logger.Debug(ctx, "run mirrored",
		logger.String("runId", rec.RunID),
		logger.String("status", string(rec.Status)),
		logger.String("sink", w.writer.Name()),
	)
	return nil
}

// partition is one worker's share of the queue.
type partition chan Record

func (p partition) Dequeue(context.Context) <-chan Record { return p }

// Pool manages multiple workers. Records are routed by run id, so every
// record of a run goes to the same worker and is written in enqueue order.
type Pool struct {
	workers    []*InMemoryWorker
	partitions []partition
	queue      Queue

	stop       chan struct{}
	dispatched chan struct{}

	logger logger.Logger
}

// NewPool creates a worker pool of workerCount workers (at least one).
func NewPool(workerCount int, queue Queue, writer Writer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers:    make([]*InMemoryWorker, workerCount),
		partitions: make([]partition, workerCount),
		queue:      queue,
		stop:       make(chan struct{}),
		dispatched: make(chan struct{}),
		logger:     logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.partitions[i] = make(partition, partitionBuffer)
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(pool.partitions[i], writer, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts the dispatcher and all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	go p.dispatch(ctx)
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// dispatch moves records from the shared queue to their run's partition. The
// partitions close once the queue is drained.
func (p *Pool) dispatch(ctx context.Context) {
	defer close(p.dispatched)
	defer func() {
		for _, part := range p.partitions {
			close(part)
		}
	}()

	for rec := range p.queue.Dequeue(ctx) {
		select {
		case p.partitions[p.partitionOf(rec.RunID)] <- rec:
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		}
	}
}

func (p *Pool) partitionOf(runID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(runID))
	return int(h.Sum32() % uint32(len(p.partitions)))
}

// Shutdown closes the queue and lets the workers drain what is left. Workers
// still busy when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = worker.Shutdown(context.Background())
		}
	}
	if timedOut {
		select {
		case <-p.stop:
		default:
			close(p.stop)
		}
	}

	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", shutdownCtx.Err())
	}
	return nil
}
