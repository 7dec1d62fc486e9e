// Package scoring defines the contract for rating a job posting against a
// candidate profile, plus the keyword heuristic and the resilient wrapper
// that puts an optional model-backed scorer in front of it.
package scoring

import (
	"context"

	"github.com/okian/autoapply/internal/domain/model"
)

// MaxScore is the upper bound of Result.Score.
const MaxScore = 100

// Input is what a scorer rates.
type Input struct {
	Profile model.CandidateProfile
	Job     model.JobPosting
}

// Result is a 0..100 integer score with a human-readable reason.
type Result struct {
	Score  int
	Reason string
}

// Scorer computes a Result for an Input, honoring ctx for cancellation.
type Scorer interface {
	Score(ctx context.Context, in Input) (Result, error)
}

// Named is implemented by scorers that report a stable name for logs and metrics.
type Named interface {
	Name() string
}

// NameOf returns the scorer's name, or "custom" when it does not report one.
func NameOf(s Scorer) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "custom"
}

// Clamp bounds a score to [0, MaxScore].
func Clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}
