package matching

import (
	"sort"

	"github.com/spigell/tradematch/internal/model"
)

// MatchResult is one ranked candidate for a job. It is derived on every query
// and never stored.
type MatchResult struct {
	JobID     string              `json:"job_id"`
	WorkerID  string              `json:"worker_id"`
	Score     int                 `json:"score"`
	Rank      int                 `json:"rank"`
	Breakdown Breakdown           `json:"breakdown"`
	Worker    model.WorkerProfile `json:"worker"`
	// Note is optional descriptive text from the enrichment layer.
	Note string `json:"note,omitempty"`
}

// Ranker orders candidates for a job. Like Scorer it is stateless.
type Ranker struct {
	scorer *Scorer
}

func NewRanker(scorer *Scorer) *Ranker {
	return &Ranker{scorer: scorer}
}

func (r *Ranker) Scorer() *Scorer {
	return r.scorer
}

// Rank scores every candidate and returns them by descending score, then
// descending experience, then ascending worker id. A positive limit truncates
// the result. Any invalid candidate fails the whole call.
func (r *Ranker) Rank(job model.Job, candidates []model.WorkerProfile, limit int) ([]MatchResult, error) {
	if err := job.ValidateForScoring(); err != nil {
		return nil, err
	}

	results := make([]MatchResult, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for _, candidate := range candidates {
		if candidate.ID == "" {
			return nil, model.Invalid("candidate %q has no id", candidate.FullName)
		}
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}

		breakdown, err := r.scorer.Score(job, candidate)
		if err != nil {
			return nil, err
		}

		score := breakdown.Score
		worker := candidate
		worker.CompositeScore = &score

		results = append(results, MatchResult{
			JobID:     job.ID,
			WorkerID:  candidate.ID,
			Score:     score,
			Breakdown: breakdown,
			Worker:    worker,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Worker.ExperienceYears != b.Worker.ExperienceYears {
			return a.Worker.ExperienceYears > b.Worker.ExperienceYears
		}
		return a.WorkerID < b.WorkerID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	for i := range results {
		results[i].Rank = i + 1
	}

	return results, nil
}
