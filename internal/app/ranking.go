package service

import (
	"math"
	"sort"

	"github.com/okian/autoapply/internal/domain/model"
	"github.com/okian/autoapply/internal/domain/scoring"
)

// Reasons attached by the pipeline itself.
const (
	ReasonAIScore        = "ai-score"
	ReasonFallback       = "fallback"
	ReasonApplied        = "applied"
	ReasonBelowThreshold = "below-threshold"
)

const (
	fallbackTopScore = 0.9
	fallbackStep     = 0.1
)

// Rank turns scored postings into pending matches ordered by score, highest
// first, keeping at most topN. Ties keep source order.
func Rank(jobs []model.JobPosting, results []scoring.Result, topN int) []model.MatchResult {
	matches := make([]model.MatchResult, 0, len(jobs))
	for i, job := range jobs {
		reason := results[i].Reason
		if reason == "" {
			reason = ReasonAIScore
		}
		matches = append(matches, model.MatchResult{
			JobID:      job.ID,
			Title:      job.Title,
			Company:    job.Company,
			MatchScore: round2(float64(scoring.Clamp(results[i].Score)) / scoring.MaxScore),
			Status:     model.MatchPending,
			Reason:     reason,
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].MatchScore > matches[b].MatchScore
	})

	if topN >= 0 && len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// FallbackRanking assigns descending synthetic scores 0.9, 0.8, ... to the
// first topN postings in source order.
func FallbackRanking(jobs []model.JobPosting, topN int) []model.MatchResult {
	n := len(jobs)
	if topN >= 0 && n > topN {
		n = topN
	}

	matches := make([]model.MatchResult, 0, n)
	for i := 0; i < n; i++ {
		score := math.Max(0, round2(fallbackTopScore-fallbackStep*float64(i)))
		matches = append(matches, model.MatchResult{
			JobID:      jobs[i].ID,
			Title:      jobs[i].Title,
			Company:    jobs[i].Company,
			MatchScore: score,
			Status:     model.MatchPending,
			Reason:     ReasonFallback,
		})
	}
	return matches
}

// Apply decides every match against threshold. Matches at or above it are
// applied and keep their reason; the rest are skipped. The input is not
// modified.
func Apply(matches []model.MatchResult, threshold float64) []model.MatchResult {
	out := make([]model.MatchResult, len(matches))
	for i, m := range matches {
		if m.MatchScore >= threshold {
			m.Status = model.MatchApplied
			if m.Reason == "" {
				m.Reason = ReasonApplied
			}
		} else {
			m.Status = model.MatchSkipped
			m.Reason = ReasonBelowThreshold
		}
		out[i] = m
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
