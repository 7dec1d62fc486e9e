package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/autoapply/internal/adapters/jobsource"
	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/internal/domain/scoring"
	"github.com/okian/autoapply/pkg/logger"
	"github.com/okian/autoapply/pkg/metrics"
)

var errStopped = errors.New("service stopped before the run finished")

// runPipeline drives one run from processing to a terminal state. Every exit
// path, including a panic, leaves the run completed or failed.
func (s *Service) runPipeline(runID string, threshold float64) {
	defer s.runs.Done()

	ctx := s.runCtx
	log := s.logger.With(logger.String("runId", runID))
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			s.fail(ctx, log, runID, threshold, fmt.Errorf("pipeline panic: %v", p))
		}
	}()

	if !s.wait(s.matchDelay) {
		s.fail(ctx, log, runID, threshold, errStopped)
		return
	}

	stageStart := time.Now()
	matches := s.match(ctx, log)
	metrics.RecordStageDuration("matching", float64(time.Since(stageStart).Milliseconds()))

	s.transition(ctx, runID, model.RunMatchingComplete, threshold, matches, "")
	log.Info(ctx, "matching complete", logger.Int("matches", len(matches)))

	if !s.wait(s.applyDelay) {
		s.fail(ctx, log, runID, threshold, errStopped)
		return
	}

	stageStart = time.Now()
	final := Apply(matches, threshold)
	metrics.RecordStageDuration("applying", float64(time.Since(stageStart).Milliseconds()))

	s.transition(ctx, runID, model.RunCompleted, threshold, final, "")
	metrics.RecordRunFinished(string(model.RunCompleted))
	metrics.RecordStageDuration("total", float64(time.Since(start).Milliseconds()))
	log.Info(ctx, "run completed",
		logger.Int("applied", countStatus(final, model.MatchApplied)),
		logger.Duration("elapsed", time.Since(start)),
	)
}

// match loads postings and ranks them. A source failure falls back to the
// built-in fixture, a scoring failure to a synthetic ranking; neither fails
// the run.
func (s *Service) match(ctx context.Context, log logger.Logger) []model.MatchResult {
	jobs, err := s.source.Load(ctx)
	if err != nil {
		log.Warn(ctx, "job source unavailable; using built-in postings", logger.Error(err))
		metrics.RecordRankingFallback("source_unavailable")
		metrics.RecordErrorByComponent("jobsource", "load")
		return FallbackRanking(jobsource.Embedded(), s.topN)
	}

	results, err := s.scoreAll(ctx, jobs)
	if err != nil {
		log.Warn(ctx, "scoring failed; using synthetic ranking", logger.Error(err))
		metrics.RecordRankingFallback("scoring_failed")
		metrics.RecordErrorByComponent("scoring", "score")
		return FallbackRanking(jobs, s.topN)
	}

	return Rank(jobs, results, s.topN)
}

// scoreAll scores every posting with at most scoringConcurrency calls in
// flight. results[i] belongs to jobs[i].
func (s *Service) scoreAll(ctx context.Context, jobs []model.JobPosting) ([]scoring.Result, error) {
	results := make([]scoring.Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.scoringConcurrency)
	for i := range jobs {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: scorer panic on %s: %v", scoring.ErrScoringFailure, jobs[i].ID, p)
				}
			}()
			res, err := s.scorer.Score(gctx, scoring.Input{Profile: s.profile, Job: jobs[i]})
			if err != nil {
				return fmt.Errorf("score %s: %w", jobs[i].ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// transition replaces the stored snapshot and mirrors it to the sink. It
// still records after the run context is canceled by Stop.
func (s *Service) transition(ctx context.Context, runID string, status model.RunStatus, threshold float64, jobs []model.MatchResult, errMsg string) {
	ctx = context.WithoutCancel(ctx)
	snap := model.RunSnapshot{
		RunID:     runID,
		Status:    status,
		Threshold: threshold,
		Jobs:      jobs,
		Error:     errMsg,
	}
	if err := s.store.Put(ctx, snap); err != nil {
		s.logger.Error(ctx, "store run snapshot", logger.String("runId", runID), logger.Error(err))
	}
	s.mirror(ctx, model.RunRecord{
		RunID:     runID,
		Status:    status,
		Threshold: threshold,
		Jobs:      jobs,
		Error:     errMsg,
		UpdatedAt: time.Now(),
	})
}

func (s *Service) fail(ctx context.Context, log logger.Logger, runID string, threshold float64, cause error) {
	log.Error(ctx, "run failed", logger.Error(cause))
	metrics.RecordRunFinished(string(model.RunFailed))
	metrics.RecordErrorByComponent("pipeline", "run_failed")
	s.transition(ctx, runID, model.RunFailed, threshold, []model.MatchResult{}, cause.Error())
}

// wait pauses for d and reports false if the service stops first.
func (s *Service) wait(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-s.stopCh:
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.stopCh:
		return false
	}
}

func countStatus(jobs []model.MatchResult, status model.MatchStatus) int {
	n := 0
	for _, j := range jobs {
		if j.Status == status {
			n++
		}
	}
	return n
}
