package model

import (
	"fmt"
	"strings"
)

// JobStatus is the lifecycle state of a job posting.
// Every status is reachable from every other one.
type JobStatus string

const (
	StatusActive JobStatus = "Active"
	StatusOnHold JobStatus = "On Hold"
	StatusClosed JobStatus = "Closed"
)

// Statuses lists every known job status.
var Statuses = []JobStatus{StatusActive, StatusOnHold, StatusClosed}

// ParseStatus converts a raw string to a JobStatus, ignoring case and the
// separator used between "on" and "hold".
func ParseStatus(s string) (JobStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", "", "-", "", " ", "").Replace(normalized)

	switch normalized {
	case "active":
		return StatusActive, nil
	case "onhold":
		return StatusOnHold, nil
	case "closed":
		return StatusClosed, nil
	}
	return "", Invalid("unknown job status %q", s)
}

// Job is a posting owned by an employer.
type Job struct {
	ID             string    `json:"id" mapstructure:"id"`
	EmployerID     string    `json:"employer_id" mapstructure:"employer_id"`
	EmployerName   string    `json:"employer_name" mapstructure:"employer_name"`
	Title          string    `json:"title" mapstructure:"title"`
	Description    string    `json:"description" mapstructure:"description"`
	RequiredSkills []string  `json:"required_skills" mapstructure:"required_skills"`
	Status         JobStatus `json:"status" mapstructure:"status"`
	Location       string    `json:"location" mapstructure:"location"`
	Country        string    `json:"country" mapstructure:"country"`
	SalaryMin      int       `json:"salary_min" mapstructure:"salary_min"`
	SalaryMax      int       `json:"salary_max" mapstructure:"salary_max"`
}

// Normalize trims text fields, canonicalizes the status and drops blank or
// duplicate skills while keeping their order.
func (j *Job) Normalize() {
	j.ID = strings.TrimSpace(j.ID)
	j.EmployerID = strings.TrimSpace(j.EmployerID)
	j.EmployerName = strings.TrimSpace(j.EmployerName)
	j.Title = strings.TrimSpace(j.Title)
	j.Description = strings.TrimSpace(j.Description)
	j.Location = strings.TrimSpace(j.Location)
	j.Country = strings.TrimSpace(j.Country)

	if status, err := ParseStatus(string(j.Status)); err == nil {
		j.Status = status
	}

	j.RequiredSkills = NormalizeSkills(j.RequiredSkills)
}

// Validate reports the first invariant the job violates.
func (j Job) Validate() error {
	if err := j.ValidateForScoring(); err != nil {
		return err
	}
	if strings.TrimSpace(j.EmployerID) == "" {
		return Invalid("job %q has no employer", j.Title)
	}
	if _, err := ParseStatus(string(j.Status)); err != nil {
		return err
	}
	return nil
}

// ValidateForScoring checks only what matching reads: the title and the
// salary range. Drafts without an owner or status can still be scored.
func (j Job) ValidateForScoring() error {
	if strings.TrimSpace(j.Title) == "" {
		return Invalid("job title is required")
	}
	if j.SalaryMin < 0 || j.SalaryMax < 0 {
		return Invalid("job %q has a negative salary (%d-%d)", j.Title, j.SalaryMin, j.SalaryMax)
	}
	if j.SalaryMin > j.SalaryMax {
		return Invalid("job %q salary_min %d exceeds salary_max %d", j.Title, j.SalaryMin, j.SalaryMax)
	}
	return nil
}

// IsPublic reports whether the job may appear in public search.
func (j Job) IsPublic() bool {
	return j.Status == StatusActive
}

// SalaryRange renders the salary range for reports.
func (j Job) SalaryRange() string {
	return fmt.Sprintf("%d-%d", j.SalaryMin, j.SalaryMax)
}

// NormalizeSkills trims skills, drops blanks and removes case-insensitive duplicates.
func NormalizeSkills(skills []string) []string {
	if len(skills) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
