package runclient

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/pkg/logger"
)

// Run starts a run and polls it every cfg.Interval until it completes or
// fails, rendering each snapshot that differs from the previous one. The
// final snapshot is returned.
func Run(ctx context.Context, cfg *Config) (model.RunSnapshot, error) {
	if cfg.Threshold != nil && (*cfg.Threshold < 0 || *cfg.Threshold > 1) {
		return model.RunSnapshot{}, fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidInput, *cfg.Threshold)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logger.Get().Named("runclient")
	client := NewClient(baseURL)

	runID, err := client.StartRun(ctx, cfg.Threshold)
	if err != nil {
		return model.RunSnapshot{}, err
	}
	log.Debug(ctx, "run started", logger.String("runId", runID), logger.String("url", baseURL))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *model.RunSnapshot
	for {
		snap, err := client.Status(ctx, runID)
		if err != nil {
			if ctx.Err() != nil {
				return lastOr(last, runID), fmt.Errorf("%w: %w", ErrPollTimeout, ctx.Err())
			}
			return lastOr(last, runID), err
		}

		if last == nil || !reflect.DeepEqual(*last, snap) {
			_, _ = io.WriteString(out, Render(snap)+"\n")
			last = &snap
		}
		if snap.Status.Terminal() {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return snap, fmt.Errorf("%w: last status %s", ErrPollTimeout, snap.Status)
		case <-ticker.C:
		}
	}
}

func lastOr(last *model.RunSnapshot, runID string) model.RunSnapshot {
	if last != nil {
		return *last
	}
	return model.RunSnapshot{RunID: runID}
}
