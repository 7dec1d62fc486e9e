package service

import (
	"time"

	"github.com/okian/autoapply/internal/adapters/jobsource"
	"github.com/okian/autoapply/internal/adapters/repository"
	"github.com/okian/autoapply/internal/adapters/sink"
	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/internal/domain/scoring"
	"github.com/okian/autoapply/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore replaces the in-memory run store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSource sets where postings are loaded from.
func WithSource(src jobsource.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithScorer sets the scorer used during matching.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithSink sets the durable mirror.
func WithSink(sk sink.Sink) Option {
	return func(s *Service) {
		if sk != nil {
			s.sink = sk
		}
	}
}

// WithProfile sets the candidate every run is scored against.
func WithProfile(p model.CandidateProfile) Option {
	return func(s *Service) {
		s.profile = p
	}
}

// WithDefaultThreshold sets the threshold used when a run does not carry one.
func WithDefaultThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 && t <= 1 {
			s.defaultThreshold = t
		}
	}
}

// WithTopN caps the number of matches kept per run.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithStageDelays sets the pause before the matching and the apply stage.
func WithStageDelays(match, apply time.Duration) Option {
	return func(s *Service) {
		if match >= 0 {
			s.matchDelay = match
		}
		if apply >= 0 {
			s.applyDelay = apply
		}
	}
}

// WithScoringConcurrency bounds parallel scorer calls within a run.
func WithScoringConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scoringConcurrency = n
		}
	}
}

// WithUserID sets the user id recorded on mirrored runs.
func WithUserID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.userID = id
		}
	}
}

// WithSinkQueue sizes the mirror queue and its worker pool.
func WithSinkQueue(size, workers int, writeTimeout time.Duration) Option {
	return func(s *Service) {
		if size > 0 {
			s.sinkQueueSize = size
		}
		if workers > 0 {
			s.sinkWorkers = workers
		}
		if writeTimeout > 0 {
			s.sinkWriteTimeout = writeTimeout
		}
	}
}

// WithIDGenerator replaces the run id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
