package model

import "time"

// RunRecord is the document mirrored to the durable sink.
// Zero-valued optional fields are left out so sinks can merge.
type RunRecord struct {
	RunID     string
	UserID    string
	Status    RunStatus
	Threshold float64
	Jobs      []MatchResult
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields returns the set fields keyed by their document names.
func (r RunRecord) Fields() map[string]any {
	f := map[string]any{
		"status":    string(r.Status),
		"threshold": r.Threshold,
		"jobs":      jobsDocument(r.Jobs),
	}
	if r.UserID != "" {
		f["userId"] = r.UserID
	}
	if r.Error != "" {
		f["error"] = r.Error
	}
	if !r.CreatedAt.IsZero() {
		f["createdAt"] = r.CreatedAt.UnixMilli()
	}
	if !r.UpdatedAt.IsZero() {
		f["updatedAt"] = r.UpdatedAt.UnixMilli()
	}
	return f
}

func jobsDocument(jobs []MatchResult) []map[string]any {
	out := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, map[string]any{
			"jobId":      j.JobID,
			"title":      j.Title,
			"company":    j.Company,
			"matchScore": j.MatchScore,
			"status":     string(j.Status),
			"reason":     j.Reason,
		})
	}
	return out
}
