package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/autoapply/pkg/logger"
	"github.com/okian/autoapply/pkg/metrics"
)

const defaultBackendTimeout = 4 * time.Second

// Resilient puts an optional backend scorer in front of the heuristic.
// Score never returns an error: a missing backend, a failed or slow call,
// a panic or an invalid result all yield the heuristic result instead.
type Resilient struct {
	backend   Scorer
	heuristic *Heuristic
	timeout   time.Duration
	logger    logger.Logger
}

// NewResilient wraps backend, which may be nil.
func NewResilient(backend Scorer, opts ...Option) *Resilient {
	r := &Resilient{
		backend:   backend,
		heuristic: NewHeuristic(),
		timeout:   defaultBackendTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("scorer")
	}
	return r
}

// Name reports the backend name, or the heuristic's when there is none.
func (r *Resilient) Name() string {
	if r.backend == nil {
		return r.heuristic.Name()
	}
	return NameOf(r.backend)
}

// HasBackend reports whether a model-backed scorer is configured.
func (r *Resilient) HasBackend() bool {
	return r.backend != nil
}

// Score implements Scorer.
func (r *Resilient) Score(ctx context.Context, in Input) (Result, error) {
	if r.backend == nil {
		start := time.Now()
		res := r.heuristic.Evaluate(in)
		metrics.RecordScoringLatency(r.heuristic.Name(), float64(time.Since(start).Microseconds())/1000)
		return res, nil
	}

	start := time.Now()
	res, err := r.callBackend(ctx, in)
	metrics.RecordScoringLatency(r.Name(), float64(time.Since(start).Milliseconds()))
	if err == nil {
		return res, nil
	}

	reason := "error"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case errors.Is(err, ErrInvalidResult):
		reason = "invalid"
	}
	metrics.RecordScoringFallback(reason)
	r.logger.Warn(ctx, "backend scoring failed; using heuristic",
		logger.String("jobId", in.Job.ID),
		logger.String("scorer", r.Name()),
		logger.String("reason", reason),
		logger.Error(err),
	)
	return r.heuristic.Evaluate(in), nil
}

type outcome struct {
	res Result
	err error
}

// callBackend runs the backend on its own goroutine so a call that ignores
// ctx still cannot hold the caller past the timeout.
func (r *Resilient) callBackend(ctx context.Context, in Input) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("%w: backend panic: %v", ErrScoringFailure, p)}
			}
		}()
		res, err := r.backend.Score(ctx, in)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrScoringFailure, o.err)
		}
		if o.res.Score < 0 || o.res.Score > MaxScore {
			return Result{}, fmt.Errorf("%w: score %d out of range", ErrInvalidResult, o.res.Score)
		}
		return o.res, nil
	case <-ctx.Done():
		return Result{}, fmt.Errorf("%w: %w", ErrScoringFailure, ctx.Err())
	}
}
