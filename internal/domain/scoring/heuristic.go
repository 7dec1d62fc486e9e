package scoring

import (
	"context"
	"math"
	"strings"
)

// Heuristic tuning constants.
const (
	titleHitWeight = 3
	descHitWeight  = 1
	normalizer     = 25.0

	fullStackFloor = 0.82
	frontendFloor  = 0.78
	devOpsFloor    = 0.66
	aiMentionCap   = 0.45

	lowOverlapReason = "low skill overlap"
)

type roleBoost struct {
	keywords []string
	add      int
}

// Every keyword of a role boost must appear in the job tokens.
var roleBoosts = []roleBoost{
	{keywords: []string{"full", "stack"}, add: 4},
	{keywords: []string{"frontend"}, add: 3},
	{keywords: []string{"devops"}, add: 3},
	{keywords: []string{"ai"}, add: 1},
	{keywords: []string{"ml"}, add: 1},
}

type techBoost struct {
	keyword string
	add     int
}

var techBoosts = []techBoost{
	{"react", 3}, {"node", 3}, {"node.js", 3},
	{"typescript", 2}, {"javascript", 1},
	{"express", 2}, {"rest", 2},
	{"docker", 2}, {"ci", 1}, {"cd", 1}, {"ci/cd", 2},
	{"kubernetes", 2}, {"aws", 2},
}

// Heuristic scores by keyword overlap between profile skills and the job text.
// It is pure, never fails and ignores ctx.
type Heuristic struct{}

// NewHeuristic returns the keyword heuristic scorer.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Name implements Named.
func (h *Heuristic) Name() string { return "heuristic" }

// Score implements Scorer.
func (h *Heuristic) Score(_ context.Context, in Input) (Result, error) {
	return h.Evaluate(in), nil
}

// Evaluate runs the heuristic without the Scorer error plumbing.
func (h *Heuristic) Evaluate(in Input) Result {
	titleTokens := tokenSet(Tokenize(in.Job.Title))
	descTokens := tokenSet(Tokenize(in.Job.Description))
	all := make(map[string]struct{}, len(titleTokens)+len(descTokens))
	for t := range titleTokens {
		all[t] = struct{}{}
	}
	for t := range descTokens {
		all[t] = struct{}{}
	}

	skills := make(map[string]struct{}, len(in.Profile.Skills))
	var titleMatches, descMatches []string
	for _, skill := range in.Profile.Skills {
		lower := strings.ToLower(skill)
		skills[lower] = struct{}{}
		if _, ok := titleTokens[lower]; ok {
			titleMatches = append(titleMatches, skill)
		}
		if _, ok := descTokens[lower]; ok {
			descMatches = append(descMatches, skill)
		}
	}

	score := titleHitWeight*len(titleMatches) + descHitWeight*len(descMatches)

	for _, b := range roleBoosts {
		if hasAll(all, b.keywords...) {
			score += b.add
		}
	}
	for _, b := range techBoosts {
		if _, ok := all[b.keyword]; ok {
			score += b.add
		}
	}

	score01 := math.Max(0, math.Min(1, float64(score)/normalizer))

	hasReactOrNode := hasAny(skills, "react", "node.js", "node")
	if hasAll(all, "full", "stack") && hasReactOrNode {
		score01 = math.Max(score01, fullStackFloor)
	}
	if hasAll(all, "frontend") && hasAny(skills, "react", "typescript", "javascript") {
		score01 = math.Max(score01, frontendFloor)
	}
	if hasAll(all, "devops") && hasAny(skills, "docker", "ci/cd", "ci", "cd") {
		score01 = math.Max(score01, devOpsFloor)
	}
	// The cap runs after the floors so it always wins.
	if hasAny(all, "ai", "ml", "nlp") && !hasReactOrNode {
		score01 = math.Min(score01, aiMentionCap)
	}

	return Result{
		Score:  Clamp(int(math.Round(score01 * MaxScore))),
		Reason: matchReason(titleMatches, descMatches),
	}
}

// Tokenize lowercases s, turns every character other than ASCII letters,
// digits, '+', '.', '#', '/' and space into a space, and splits on whitespace.
func Tokenize(s string) []string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '+', r == '.', r == '#', r == '/', r == ' ':
			return r
		default:
			return ' '
		}
	}, strings.ToLower(s))
	return strings.Fields(mapped)
}

func matchReason(titleMatches, descMatches []string) string {
	seen := make(map[string]struct{}, len(titleMatches)+len(descMatches))
	var matched []string
	for _, group := range [][]string{titleMatches, descMatches} {
		for _, skill := range group {
			key := strings.ToLower(skill)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			matched = append(matched, skill)
		}
	}
	if len(matched) == 0 {
		return lowOverlapReason
	}
	return "matched skills: " + strings.Join(matched, ", ")
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func hasAll(set map[string]struct{}, keys ...string) bool {
	for _, k := range keys {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

func hasAny(set map[string]struct{}, keys ...string) bool {
	for _, k := range keys {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}
