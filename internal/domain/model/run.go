package model

// MatchStatus is the per-job outcome inside a run.
type MatchStatus string

// Match statuses.
const (
	MatchPending MatchStatus = "pending"
	MatchApplied MatchStatus = "applied"
	MatchSkipped MatchStatus = "skipped"
	MatchFailed  MatchStatus = "failed"
)

// RunStatus is the state of a run.
type RunStatus string

// Run states. Processing is the only initial state; Completed and Failed are terminal.
const (
	RunProcessing       RunStatus = "processing"
	RunMatchingComplete RunStatus = "matching-complete"
	RunCompleted        RunStatus = "completed"
	RunFailed           RunStatus = "failed"
)

// Terminal reports whether no further transition can happen.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// AllRunStatuses lists every run state in pipeline order.
func AllRunStatuses() []RunStatus {
	return []RunStatus{RunProcessing, RunMatchingComplete, RunCompleted, RunFailed}
}

// MatchResult is one scored job inside a run.
type MatchResult struct {
	JobID      string      `json:"jobId"`
	Title      string      `json:"title"`
	Company    string      `json:"company"`
	MatchScore float64     `json:"matchScore"`
	Status     MatchStatus `json:"status"`
	Reason     string      `json:"reason"`
}

// RunSnapshot is the complete state of a run at a point in time.
// Snapshots are replaced wholesale, never edited in place.
type RunSnapshot struct {
	RunID     string        `json:"runId"`
	Status    RunStatus     `json:"status"`
	Threshold float64       `json:"threshold"`
	Jobs      []MatchResult `json:"jobs"`
	Error     string        `json:"error,omitempty"`
}

// Clone returns a deep copy so callers cannot alias the stored job slice.
// A nil job list becomes an empty one so it encodes as [].
func (s RunSnapshot) Clone() RunSnapshot {
	out := s
	out.Jobs = make([]MatchResult, len(s.Jobs))
	copy(out.Jobs, s.Jobs)
	return out
}
