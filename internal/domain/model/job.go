// Package model contains domain models passed between layers.
package model

// JobPosting is a single read-only job from the job source.
type JobPosting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// Preferences holds the candidate's soft constraints.
type Preferences struct {
	Locations []string `json:"locations" yaml:"locations"`
}

// CandidateProfile describes the applicant every run scores against.
type CandidateProfile struct {
	Name            string      `json:"name" yaml:"name"`
	Skills          []string    `json:"skills" yaml:"skills"`
	ExperienceYears int         `json:"experienceYears" yaml:"experience_years"`
	Preferences     Preferences `json:"preferences" yaml:"preferences"`
}

// DemoProfile returns the built-in candidate used when no profile file is configured.
func DemoProfile() CandidateProfile {
	return CandidateProfile{
		Name:            "Demo Candidate",
		Skills:          []string{"React", "Node.js", "TypeScript", "JavaScript", "Express", "REST", "Docker", "CI/CD"},
		ExperienceYears: 4,
		Preferences: Preferences{
			Locations: []string{"Remote", "Gurugram", "Bengaluru"},
		},
	}
}
