package ai

import (
	"context"

	"github.com/spigell/tradematch/internal/matching"
	"github.com/spigell/tradematch/internal/model"
)

// JobDraft is a generated job description with the skills it asks for.
type JobDraft struct {
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills"`
	Raw            string   `json:"-"`
}

// Assistant produces descriptive text around postings and matches. It never
// influences scores or ordering.
type Assistant interface {
	DraftJob(ctx context.Context, title, company string) (*JobDraft, error)
	Explain(ctx context.Context, job model.Job, result matching.MatchResult) (string, error)
}
