// Package llm holds the prompt and response handling shared by the
// model-backed scorers.
package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/autoapply/internal/domain/scoring"
)

// SystemPrompt instructs the model to answer with a single JSON object.
const SystemPrompt = `You are a recruiting assistant that rates how well a candidate fits a job.
Reply with ONLY a JSON object of the form {"score": <integer 0-100>, "reason": "<one short sentence>"}.`

// UserPrompt renders the candidate and the posting for the model.
func UserPrompt(in scoring.Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s\n", in.Profile.Name)
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(in.Profile.Skills, ", "))
	fmt.Fprintf(&b, "Experience: %d years\n", in.Profile.ExperienceYears)
	if len(in.Profile.Preferences.Locations) > 0 {
		fmt.Fprintf(&b, "Preferred locations: %s\n", strings.Join(in.Profile.Preferences.Locations, ", "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Job title: %s\n", in.Job.Title)
	fmt.Fprintf(&b, "Company: %s\n", in.Job.Company)
	fmt.Fprintf(&b, "Description: %s\n", in.Job.Description)
	return b.String()
}

// Prompt joins the system and user prompts for single-turn APIs.
func Prompt(in scoring.Input) string {
	return SystemPrompt + "\n\n" + UserPrompt(in)
}

type reply struct {
	Score  json.RawMessage `json:"score"`
	Reason string          `json:"reason"`
}

// ParseResult extracts a Result from model output. It tolerates code fences,
// surrounding prose, numeric strings and scores on a 0..1 scale. A score
// outside 0..100 is rejected, never clamped.
func ParseResult(text string) (scoring.Result, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return scoring.Result{}, fmt.Errorf("%w: no JSON object in reply", scoring.ErrInvalidResult)
	}

	var r reply
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return scoring.Result{}, fmt.Errorf("%w: %w", scoring.ErrInvalidResult, err)
	}

	raw := strings.Trim(strings.TrimSpace(string(r.Score)), `"`)
	if raw == "" || raw == "null" {
		return scoring.Result{}, fmt.Errorf("%w: missing score", scoring.ErrInvalidResult)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return scoring.Result{}, fmt.Errorf("%w: score %q is not a number", scoring.ErrInvalidResult, raw)
	}
	if v > 0 && v <= 1 && strings.Contains(raw, ".") {
		v *= scoring.MaxScore
	}
	score := int(math.Round(v))
	if score < 0 || score > scoring.MaxScore {
		return scoring.Result{}, fmt.Errorf("%w: score %q outside 0..%d", scoring.ErrInvalidResult, raw, scoring.MaxScore)
	}

	return scoring.Result{
		Score:  score,
		Reason: strings.TrimSpace(r.Reason),
	}, nil
}
