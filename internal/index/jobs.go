package index

import (
	"strings"

	"github.com/spigell/tradematch/internal/model"
)

// JobIndex holds job postings.
type JobIndex struct {
	c *collection[model.Job]
}

func NewJobIndex() *JobIndex {
	return &JobIndex{
		c: newCollection(func(j model.Job) string { return j.ID }, model.Job.Validate),
	}
}

// Upsert validates and stores the job, replacing any job with the same id.
func (x *JobIndex) Upsert(job model.Job) error { return x.c.upsert(job) }

// Replace swaps the index content for jobs.
func (x *JobIndex) Replace(jobs []model.Job) error { return x.c.replace(jobs) }

// Delete removes the job and reports whether it existed.
func (x *JobIndex) Delete(id string) bool { return x.c.delete(id) }

func (x *JobIndex) Get(id string) (model.Job, bool) { return x.c.get(id) }

func (x *JobIndex) Len() int { return x.c.len() }

// Find returns the jobs accepted by match, ordered by id. A nil match returns everything.
func (x *JobIndex) Find(match func(model.Job) bool) []model.Job { return x.c.find(match) }

// JobMatches builds the predicate for a JobFilter.
func JobMatches(f model.JobFilter) func(model.Job) bool {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	employer := strings.TrimSpace(f.EmployerID)

	return func(j model.Job) bool {
		if f.PublicOnly && !j.IsPublic() {
			return false
		}
		if f.Status != "" && j.Status != f.Status {
			return false
		}
		if employer != "" && j.EmployerID != employer {
			return false
		}
		if query == "" {
			return true
		}
		if containsFold(j.Title, query) || containsFold(j.Description, query) {
			return true
		}
		for _, skill := range j.RequiredSkills {
			if containsFold(skill, query) {
				return true
			}
		}
		return false
	}
}

// containsFold reports whether s contains the already lower-cased needle.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}
