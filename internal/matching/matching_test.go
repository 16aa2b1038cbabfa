package matching

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/spigell/tradematch/internal/model"
)

func electricianJob() model.Job {
	return model.Job{
		ID:             "job-1",
		EmployerID:     "emp-1",
		Title:          "Electrician",
		RequiredSkills: []string{"wiring", "panel install"},
		Status:         model.StatusActive,
		Country:        "USA",
	}
}

func workerA() model.WorkerProfile {
	return model.WorkerProfile{ID: "A", TradeOrSkill: "Electrician", ExperienceYears: 10, CountryOfOrigin: "USA", ExperienceInCountry: 10}
}

func workerB() model.WorkerProfile {
	return model.WorkerProfile{ID: "B", TradeOrSkill: "Electrician", ExperienceYears: 2, CountryOfOrigin: "Mexico", ExperienceInCountry: 0}
}

func newTestRanker(t *testing.T) *Ranker {
	t.Helper()
	scorer, err := NewScorer(Config{})
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}
	return NewRanker(scorer)
}

func TestScorerElectricianExample(t *testing.T) {
	ranker := newTestRanker(t)
	job := electricianJob()

	a, err := ranker.Scorer().Score(job, workerA())
	if err != nil {
		t.Fatalf("score A: %v", err)
	}
	b, err := ranker.Scorer().Score(job, workerB())
	if err != nil {
		t.Fatalf("score B: %v", err)
	}

	if a.Score != 50 {
		t.Fatalf("expected A to score 50, got %d (%+v)", a.Score, a)
	}
	if b.Score != 12 {
		t.Fatalf("expected B to score 12, got %d (%+v)", b.Score, b)
	}

	results, err := ranker.Rank(job, []model.WorkerProfile{workerB(), workerA()}, 0)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(results) != 2 || results[0].WorkerID != "A" || results[1].WorkerID != "B" {
		t.Fatalf("expected [A B], got %+v", results)
	}
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Fatalf("unexpected ranks: %d %d", results[0].Rank, results[1].Rank)
	}
	if results[0].Worker.CompositeScore == nil || *results[0].Worker.CompositeScore != 50 {
		t.Fatalf("expected composite score on the returned worker")
	}
}

func TestScorerBreakdown(t *testing.T) {
	ranker := newTestRanker(t)
	worker := model.WorkerProfile{
		ID:                  "w",
		TradeOrSkill:        "Electrician",
		Summary:             "Ten years of commercial WIRING and conduit bending.",
		ExperienceYears:     4,
		CountryOfOrigin:     "Canada",
		ExperienceInCountry: 1,
	}

	b, err := ranker.Scorer().Score(electricianJob(), worker)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}

	if !reflect.DeepEqual(b.MatchedSkills, []string{"wiring"}) {
		t.Fatalf("unexpected matched skills: %v", b.MatchedSkills)
	}
	if !reflect.DeepEqual(b.MissingSkills, []string{"panel install"}) {
		t.Fatalf("unexpected missing skills: %v", b.MissingSkills)
	}
	if b.SkillOverlap != 0.5 || b.Experience != 0.8 || b.Locale != 0.25 {
		t.Fatalf("unexpected sub-scores: %+v", b)
	}
	// 0.5*0.5 + 0.3*0.8 + 0.2*0.25 = 0.54
	if b.Score != 54 {
		t.Fatalf("expected 54, got %d", b.Score)
	}
}

func TestScorerRange(t *testing.T) {
	t.Parallel()

	ranker := newTestRanker(t)
	job := electricianJob()

	for years := 0; years <= 30; years += 3 {
		for inCountry := 0; inCountry <= years; inCountry += 2 {
			for _, summary := range []string{"", "wiring", "wiring and panel install"} {
				worker := model.WorkerProfile{
					ID:                  fmt.Sprintf("w-%d-%d", years, inCountry),
					TradeOrSkill:        "Electrician",
					Summary:             summary,
					ExperienceYears:     years,
					CountryOfOrigin:     "Brazil",
					ExperienceInCountry: inCountry,
				}
				b, err := ranker.Scorer().Score(job, worker)
				if err != nil {
					t.Fatalf("Score error: %v", err)
				}
				if b.Score < 0 || b.Score > 100 {
					t.Fatalf("score out of range: %d for %+v", b.Score, worker)
				}
			}
		}
	}
}

func TestScorerPerfectMatch(t *testing.T) {
	ranker := newTestRanker(t)
	worker := workerA()
	worker.Summary = "Wiring, panel install and troubleshooting."

	b, err := ranker.Scorer().Score(electricianJob(), worker)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if b.Score != 100 {
		t.Fatalf("expected 100, got %d", b.Score)
	}
}

func TestScorerMonotonicInSkillOverlap(t *testing.T) {
	ranker := newTestRanker(t)
	job := electricianJob()

	summaries := []string{"", "wiring", "wiring, panel install"}
	previous := -1
	for _, summary := range summaries {
		worker := workerB()
		worker.Summary = summary

		b, err := ranker.Scorer().Score(job, worker)
		if err != nil {
			t.Fatalf("Score error: %v", err)
		}
		if b.Score < previous {
			t.Fatalf("score decreased from %d to %d when adding %q", previous, b.Score, summary)
		}
		previous = b.Score
	}
}

func TestScorerUsesTitleWhenJobHasNoSkills(t *testing.T) {
	ranker := newTestRanker(t)
	job := electricianJob()
	job.RequiredSkills = nil

	worker := workerB()
	worker.TradeOrSkill = "Master electrician"

	b, err := ranker.Scorer().Score(job, worker)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if b.SkillOverlap != 1 {
		t.Fatalf("expected title to match the trade, got %+v", b)
	}
}

func TestScorerRejectsInvalidInput(t *testing.T) {
	ranker := newTestRanker(t)

	broken := workerA()
	broken.ExperienceInCountry = broken.ExperienceYears + 1
	if _, err := ranker.Scorer().Score(electricianJob(), broken); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	noTrade := workerA()
	noTrade.TradeOrSkill = " "
	if _, err := ranker.Scorer().Score(electricianJob(), noTrade); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty trade, got %v", err)
	}

	job := electricianJob()
	job.Title = ""
	if _, err := ranker.Scorer().Score(job, workerA()); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty title, got %v", err)
	}
}

func TestNewScorerConfig(t *testing.T) {
	if _, err := NewScorer(Config{Weights: Weights{Skills: -1}}); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected negative weight to be rejected, got %v", err)
	}
	if _, err := NewScorer(Config{TargetExperience: -2}); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected negative target to be rejected, got %v", err)
	}

	skillsOnly, err := NewScorer(Config{Weights: Weights{Skills: 2}})
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}
	worker := workerA()
	worker.Summary = "wiring"
	b, err := skillsOnly.Score(electricianJob(), worker)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if b.Score != 50 {
		t.Fatalf("expected skills-only score of 50, got %d", b.Score)
	}

	strict, err := NewScorer(Config{TargetExperience: 20})
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}
	b, err = strict.Score(electricianJob(), workerA())
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if b.Experience != 0.5 {
		t.Fatalf("expected experience 0.5 against a target of 20, got %v", b.Experience)
	}
}

func TestRankTieBreaks(t *testing.T) {
	ranker := newTestRanker(t)
	job := electricianJob()

	same := func(id string, years int) model.WorkerProfile {
		return model.WorkerProfile{ID: id, TradeOrSkill: "Electrician", ExperienceYears: years, CountryOfOrigin: "USA"}
	}

	candidates := []model.WorkerProfile{
		same("c", 5),
		same("b", 5),
		same("d", 12),
		same("a", 5),
	}

	results, err := ranker.Rank(job, candidates, 0)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}

	got := make([]string, 0, len(results))
	for _, r := range results {
		got = append(got, r.WorkerID)
	}
	expect := []string{"d", "a", "b", "c"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
	for _, r := range results {
		if r.Score != results[0].Score {
			t.Fatalf("expected equal scores, got %+v", results)
		}
	}
}

func TestRankIsDeterministic(t *testing.T) {
	ranker := newTestRanker(t)
	candidates := []model.WorkerProfile{workerB(), workerA(), {ID: "C", TradeOrSkill: "Electrician", ExperienceYears: 2, CountryOfOrigin: "Mexico"}}

	first, err := ranker.Rank(electricianJob(), candidates, 0)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	second, err := ranker.Rank(electricianJob(), candidates, 0)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results:\n%+v\n%+v", first, second)
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	ranker := newTestRanker(t)

	results, err := ranker.Rank(electricianJob(), nil, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", results)
	}
}

func TestRankLimitAndZeroScores(t *testing.T) {
	ranker := newTestRanker(t)
	zero := model.WorkerProfile{ID: "Z", TradeOrSkill: "Carpenter", ExperienceYears: 0, CountryOfOrigin: "Poland"}

	all, err := ranker.Rank(electricianJob(), []model.WorkerProfile{zero, workerB(), workerA()}, 0)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected zero-score candidate to be kept, got %d results", len(all))
	}
	if last := all[len(all)-1]; last.WorkerID != "Z" || last.Score != 0 {
		t.Fatalf("expected Z with score 0 last, got %+v", last)
	}

	top, err := ranker.Rank(electricianJob(), []model.WorkerProfile{zero, workerB(), workerA()}, 2)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(top) != 2 || top[0].WorkerID != "A" || top[1].WorkerID != "B" {
		t.Fatalf("unexpected truncated results: %+v", top)
	}
}

func TestRankDeduplicatesAndFailsFast(t *testing.T) {
	ranker := newTestRanker(t)

	results, err := ranker.Rank(electricianJob(), []model.WorkerProfile{workerA(), workerA(), workerB()}, 0)
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected duplicates to be ranked once, got %d", len(results))
	}

	broken := workerB()
	broken.ExperienceInCountry = 5
	if _, err := ranker.Rank(electricianJob(), []model.WorkerProfile{workerA(), broken}, 0); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := ranker.Rank(electricianJob(), []model.WorkerProfile{{TradeOrSkill: "Electrician"}}, 0); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing id, got %v", err)
	}
}

func TestRankConcurrentUse(t *testing.T) {
	ranker := newTestRanker(t)
	candidates := []model.WorkerProfile{workerA(), workerB()}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job := electricianJob()
			job.ID = fmt.Sprintf("job-%d", i)
			results, err := ranker.Rank(job, candidates, 0)
			if err != nil {
				errs <- err
				return
			}
			if results[0].JobID != job.ID || results[0].WorkerID != "A" {
				errs <- fmt.Errorf("unexpected result for %s: %+v", job.ID, results[0])
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
}

func TestKeywords(t *testing.T) {
	kw := keywords("Installed HVAC-R systems, C++ tooling and the rest.")
	for _, expect := range []string{"installed", "hvac-r", "systems", "c++", "tooling", "rest"} {
		if !kw[expect] {
			t.Fatalf("expected keyword %q in %v", expect, kw)
		}
	}
	for _, unexpected := range []string{"and", "the"} {
		if kw[unexpected] {
			t.Fatalf("did not expect stop word %q", unexpected)
		}
	}
}

func TestScorerMatchesSkillKeywordsInAnyOrder(t *testing.T) {
	ranker := newTestRanker(t)
	job := electricianJob()

	tests := []struct {
		name    string
		summary string
		matched []string
	}{
		{name: "reordered and inflected", summary: "Installs electrical panels.", matched: []string{"panel install"}},
		{name: "exact phrase", summary: "wiring, panel install", matched: []string{"wiring", "panel install"}},
		{name: "one keyword missing", summary: "Repairs electrical panels.", matched: nil},
		{name: "no summary", summary: "", matched: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			worker := workerB()
			worker.Summary = tt.summary

			b, err := ranker.Scorer().Score(job, worker)
			if err != nil {
				t.Fatalf("Score error: %v", err)
			}
			if !reflect.DeepEqual(b.MatchedSkills, tt.matched) {
				t.Fatalf("expected matched %v, got %v", tt.matched, b.MatchedSkills)
			}
		})
	}
}

func TestScorerKeywordMatchIsMonotonic(t *testing.T) {
	ranker := newTestRanker(t)
	job := electricianJob()

	summaries := []string{"panels", "panels installed", "panels installed, rewiring old houses"}
	previous := -1
	for _, summary := range summaries {
		worker := workerB()
		worker.Summary = summary

		b, err := ranker.Scorer().Score(job, worker)
		if err != nil {
			t.Fatalf("Score error: %v", err)
		}
		if b.Score < previous {
			t.Fatalf("score decreased from %d to %d for %q", previous, b.Score, summary)
		}
		previous = b.Score
	}
}

func TestScorerAcceptsUnownedDraftJob(t *testing.T) {
	ranker := newTestRanker(t)
	job := model.Job{Title: "Electrician", RequiredSkills: []string{"wiring"}, Country: "USA"}

	b, err := ranker.Scorer().Score(job, workerA())
	if err != nil {
		t.Fatalf("Score error for a job without employer or status: %v", err)
	}
	if b.Score == 0 {
		t.Fatalf("expected a positive score, got %+v", b)
	}

	if _, err := ranker.Rank(job, []model.WorkerProfile{workerA()}, 0); err != nil {
		t.Fatalf("Rank error for a job without employer or status: %v", err)
	}

	job.SalaryMin, job.SalaryMax = 500, 100
	if _, err := ranker.Scorer().Score(job, workerA()); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for an inverted salary range, got %v", err)
	}
}

func TestCovers(t *testing.T) {
	tokens := keywords("Installs electrical panels")
	tests := []struct {
		skill string
		want  bool
	}{
		{"panel install", true},
		{"electrical panel", true},
		{"panel repair", false},
		{"of it", false},
	}
	for _, tt := range tests {
		if got := covers(tokens, keywords(tt.skill)); got != tt.want {
			t.Fatalf("covers(%q) = %v, want %v", tt.skill, got, tt.want)
		}
	}
}
