// Package matching scores worker profiles against jobs and ranks candidates.
package matching

import (
	"math"
	"strings"

	"github.com/spigell/tradematch/internal/model"
)

const (
	DefaultTargetExperience = 5

	defaultSkillsWeight     = 0.5
	defaultExperienceWeight = 0.3
	defaultLocaleWeight     = 0.2
)

// Weights sets the share of every signal in the composite score.
type Weights struct {
	Skills     float64 `mapstructure:"skills"`
	Experience float64 `mapstructure:"experience"`
	Locale     float64 `mapstructure:"locale"`
}

// DefaultWeights returns the 50/30/20 split.
func DefaultWeights() Weights {
	return Weights{
		Skills:     defaultSkillsWeight,
		Experience: defaultExperienceWeight,
		Locale:     defaultLocaleWeight,
	}
}

func (w Weights) sum() float64 {
	return w.Skills + w.Experience + w.Locale
}

// Config tunes the Scorer. Zero values fall back to the defaults.
type Config struct {
	TargetExperience int     `mapstructure:"target-experience"`
	Weights          Weights `mapstructure:"weights"`
}

// Breakdown is the auditable result of scoring one (job, worker) pair.
type Breakdown struct {
	Score         int      `json:"score"`
	SkillOverlap  float64  `json:"skill_overlap"`
	Experience    float64  `json:"experience"`
	Locale        float64  `json:"locale"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`
}

// Scorer computes deterministic composite scores. It holds no mutable state
// and is safe for concurrent use.
type Scorer struct {
	target  float64
	weights Weights
}

// NewScorer validates cfg and builds a Scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	w := cfg.Weights
	if w.Skills < 0 || w.Experience < 0 || w.Locale < 0 {
		return nil, model.Invalid("scoring weights must not be negative (%+v)", w)
	}
	if w.sum() == 0 {
		w = DefaultWeights()
	}

	target := cfg.TargetExperience
	if target < 0 {
		return nil, model.Invalid("target experience must not be negative (%d)", target)
	}
	if target == 0 {
		target = DefaultTargetExperience
	}

	return &Scorer{target: float64(target), weights: w}, nil
}

// Score computes the composite score of worker for job.
func (s *Scorer) Score(job model.Job, worker model.WorkerProfile) (Breakdown, error) {
	if err := job.ValidateForScoring(); err != nil {
		return Breakdown{}, err
	}
	if err := worker.Validate(); err != nil {
		return Breakdown{}, err
	}

	matched, missing := matchSkills(job, worker)
	total := len(matched) + len(missing)

	b := Breakdown{
		MatchedSkills: matched,
		MissingSkills: missing,
		Experience:    math.Min(float64(worker.ExperienceYears)/s.target, 1),
		Locale:        localeFit(job, worker),
	}
	if total > 0 {
		b.SkillOverlap = float64(len(matched)) / float64(total)
	}

	weighted := s.weights.Skills*b.SkillOverlap +
		s.weights.Experience*b.Experience +
		s.weights.Locale*b.Locale

	b.Score = clamp(int(math.Round(100*weighted/s.weights.sum())), 0, 100)
	return b, nil
}

func localeFit(job model.Job, worker model.WorkerProfile) float64 {
	origin := strings.TrimSpace(worker.CountryOfOrigin)
	if origin != "" && strings.EqualFold(origin, strings.TrimSpace(job.Country)) {
		return 1
	}
	if worker.ExperienceYears == 0 {
		return 0
	}
	return float64(worker.ExperienceInCountry) / float64(worker.ExperienceYears)
}

// matchSkills splits the job's required skills into matched and missing ones.
// A job without skills is matched on its title.
func matchSkills(job model.Job, worker model.WorkerProfile) (matched, missing []string) {
	skills := model.NormalizeSkills(job.RequiredSkills)
	if len(skills) == 0 {
		skills = []string{strings.TrimSpace(job.Title)}
	}

	trade := strings.ToLower(strings.TrimSpace(worker.TradeOrSkill))
	summary := strings.ToLower(worker.Summary)
	tokens := keywords(worker.TradeOrSkill + " " + worker.Summary)

	for _, skill := range skills {
		needle := strings.ToLower(skill)
		switch {
		case strings.Contains(trade, needle), strings.Contains(needle, trade):
			matched = append(matched, skill)
		case strings.Contains(summary, needle), covers(tokens, keywords(needle)):
			matched = append(matched, skill)
		default:
			missing = append(missing, skill)
		}
	}
	return matched, missing
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
