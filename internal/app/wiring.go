package service

import (
	"context"
	"fmt"

	"github.com/okian/autoapply/internal/adapters/jobsource"
	"github.com/okian/autoapply/internal/adapters/llm/gemini"
	"github.com/okian/autoapply/internal/adapters/llm/openai"
	"github.com/okian/autoapply/internal/adapters/sink"
	"github.com/okian/autoapply/internal/config"
	"github.com/okian/autoapply/internal/domain/scoring"
	"github.com/okian/autoapply/pkg/logger"
)

// NewFromConfig builds a Service from process configuration. Optional
// backends that fail to initialize are logged and replaced: the scorer by the
// heuristic, the sink by a no-op. A profile that cannot be read is an error.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	log := logger.Get().Named("wiring")

	profile, err := jobsource.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		log.Warn(ctx, "scoring backend unavailable; using heuristic only",
			logger.String("provider", cfg.ResolvedProvider()),
			logger.Error(err),
		)
		backend = nil
	}

	sk, err := sink.New(ctx, cfg.Sink)
	if err != nil {
		log.Warn(ctx, "durable sink unavailable; runs stay in memory only",
			logger.String("driver", cfg.Sink.ResolvedDriver()),
			logger.Error(err),
		)
		sk = sink.NewNop()
	}

	base := []Option{
		WithSource(jobsource.New(cfg.JobsPath)),
		WithProfile(profile),
		WithScorer(scoring.NewResilient(backend, scoring.WithTimeout(cfg.Scorer.Timeout))),
		WithSink(sk),
		WithDefaultThreshold(cfg.DefaultThreshold),
		WithTopN(cfg.TopN),
		WithStageDelays(cfg.MatchDelay, cfg.ApplyDelay),
		WithScoringConcurrency(cfg.ScoringConcurrency),
		WithUserID(cfg.UserID),
		WithSinkQueue(cfg.Sink.QueueSize, cfg.Sink.Workers, cfg.Sink.WriteTimeout),
	}
	return New(append(base, opts...)...), nil
}

// NewBackend builds the model-backed scorer selected by cfg, or nil for the
// heuristic provider.
func NewBackend(ctx context.Context, cfg *config.Config) (scoring.Scorer, error) {
	switch provider := cfg.ResolvedProvider(); provider {
	case config.ProviderHeuristic:
		return nil, nil
	case config.ProviderOpenAI:
		sc, err := openai.New(cfg.Scorer.OpenAIAPIKey, cfg.Scorer.Model)
		if err != nil {
			return nil, err
		}
		return sc, nil
	case config.ProviderGemini:
		sc, err := gemini.New(ctx, cfg.Scorer.GeminiAPIKey, cfg.Scorer.Model)
		if err != nil {
			return nil, err
		}
		return sc, nil
	default:
		return nil, fmt.Errorf("%w: unknown scorer provider %q", config.ErrInvalidConfig, provider)
	}
}
