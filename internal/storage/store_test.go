package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spigell/tradematch/internal/index"
	"github.com/spigell/tradematch/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "data", "tradematch.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStoreUpsertAndListJobs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seed := []model.Job{
		{ID: "j1", EmployerID: "emp-1", Title: "Electrician", RequiredSkills: []string{"Wiring", "wiring", " Safety "}, Status: model.StatusActive, Country: "Germany"},
		{ID: "j2", EmployerID: "emp-1", Title: "Plumber", Description: "Fix 100% of leaks", Status: model.StatusClosed},
		{ID: "j3", EmployerID: "emp-2", Title: "Welder", RequiredSkills: []string{"TIG"}, Status: model.StatusOnHold},
	}
	for _, job := range seed {
		if _, err := store.UpsertJob(ctx, job); err != nil {
			t.Fatalf("UpsertJob(%s) error: %v", job.ID, err)
		}
	}

	got, err := store.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob error: %v", err)
	}
	if !reflect.DeepEqual(got.RequiredSkills, []string{"Wiring", "Safety"}) {
		t.Fatalf("expected normalized skills, got %v", got.RequiredSkills)
	}

	cases := []struct {
		name   string
		filter model.JobFilter
		want   []string
	}{
		{name: "all", filter: model.JobFilter{}, want: []string{"j1", "j2", "j3"}},
		{name: "public only", filter: model.JobFilter{PublicOnly: true}, want: []string{"j1"}},
		{name: "by employer", filter: model.JobFilter{EmployerID: "emp-1"}, want: []string{"j1", "j2"}},
		{name: "by status", filter: model.JobFilter{Status: model.StatusOnHold}, want: []string{"j3"}},
		{name: "query matches skill", filter: model.JobFilter{Query: "tig"}, want: []string{"j3"}},
		{name: "query matches description", filter: model.JobFilter{Query: "100%"}, want: []string{"j2"}},
		{name: "query escapes wildcard", filter: model.JobFilter{Query: "%"}, want: []string{"j2"}},
		{name: "query with no match", filter: model.JobFilter{Query: "carpenter"}, want: []string{}},
	}

	for _, tc := range cases {
		jobs, err := store.ListJobs(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: ListJobs error: %v", tc.name, err)
		}
		ids := make([]string, 0, len(jobs))
		for _, job := range jobs {
			ids = append(ids, job.ID)
		}
		if !reflect.DeepEqual(ids, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, ids)
		}
	}
}

func TestStoreJobQueryAgreesWithIndex(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seed := []model.Job{
		{ID: "j1", EmployerID: "emp-1", Title: "Über Fahrer", RequiredSkills: []string{"Führerschein"}, Status: model.StatusActive},
		{ID: "j2", EmployerID: "emp-1", Title: "Electrician", RequiredSkills: []string{"Wiring", "Safety"}, Status: model.StatusActive},
	}
	for _, job := range seed {
		if _, err := store.UpsertJob(ctx, job); err != nil {
			t.Fatalf("UpsertJob(%s) error: %v", job.ID, err)
		}
	}

	queries := []string{`"`, ",", "[", "]", "über", "ÜBER", "führer", "wiring, safety", "safety"}
	for _, q := range queries {
		filter := model.JobFilter{Query: q}

		stored, err := store.ListJobs(ctx, filter)
		if err != nil {
			t.Fatalf("ListJobs(%q) error: %v", q, err)
		}

		var want []string
		for _, job := range seed {
			job.Normalize()
			if index.JobMatches(filter)(job) {
				want = append(want, job.ID)
			}
		}
		got := make([]string, 0, len(stored))
		for _, job := range stored {
			got = append(got, job.ID)
		}
		if len(got) != len(want) || (len(got) > 0 && !reflect.DeepEqual(got, want)) {
			t.Fatalf("query %q: storage returned %v, index returned %v", q, got, want)
		}
	}

	jobs, err := store.ListJobs(ctx, model.JobFilter{Query: "ÜBER"})
	if err != nil || len(jobs) != 1 || jobs[0].ID != "j1" {
		t.Fatalf("expected case-folded non-ASCII match on j1, got %v (%v)", jobs, err)
	}
	if jobs, _ := store.ListJobs(ctx, model.JobFilter{Query: "["}); len(jobs) != 0 {
		t.Fatalf("JSON punctuation must not match skills, got %v", jobs)
	}
}

func TestStoreUpsertJobUpdatesExisting(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.UpsertJob(ctx, model.Job{EmployerID: "emp-1", Title: "Electrician", Status: model.StatusActive})
	if err != nil {
		t.Fatalf("UpsertJob error: %v", err)
	}
	if job.ID == "" {
		t.Fatalf("expected an id to be assigned")
	}

	job.Status = model.StatusClosed
	job.SalaryMax = 5000
	if _, err := store.UpsertJob(ctx, job); err != nil {
		t.Fatalf("second UpsertJob error: %v", err)
	}

	jobs, err := store.ListJobs(ctx, model.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected a single job, got %d", len(jobs))
	}
	if jobs[0].Status != model.StatusClosed || jobs[0].SalaryMax != 5000 {
		t.Fatalf("expected updated job, got %+v", jobs[0])
	}
}

func TestStoreRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertJob(ctx, model.Job{EmployerID: "emp-1", Status: model.StatusActive}); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a job without title, got %v", err)
	}

	profile := model.WorkerProfile{TradeOrSkill: "Welder", ExperienceYears: 2, ExperienceInCountry: 5}
	if _, err := store.UpsertWorkerProfile(ctx, profile); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for in-country above total, got %v", err)
	}
}

func TestStoreDeleteJob(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertJob(ctx, model.Job{ID: "j1", EmployerID: "emp-1", Title: "Electrician", Status: model.StatusActive}); err != nil {
		t.Fatalf("UpsertJob error: %v", err)
	}
	if err := store.DeleteJob(ctx, "j1"); err != nil {
		t.Fatalf("DeleteJob error: %v", err)
	}
	if err := store.DeleteJob(ctx, "j1"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.GetJob(ctx, "j1"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from GetJob, got %v", err)
	}
}

func TestStoreWorkerProfiles(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	seed := []model.WorkerProfile{
		{ID: "w1", UserID: "u1", TradeOrSkill: "Electrician", ExperienceYears: 10, CountryOfOrigin: "Germany"},
		{ID: "w2", UserID: "u2", TradeOrSkill: "Auto Electrician", ExperienceYears: 3, CountryOfOrigin: "Poland", ExperienceInCountry: 1},
		{ID: "w3", UserID: "u3", TradeOrSkill: "Electrician", ExperienceYears: 2, CountryOfOrigin: "India"},
		{ID: "w4", UserID: "u4", TradeOrSkill: "Plumber", ExperienceYears: 6, CountryOfOrigin: "Germany"},
	}
	for _, p := range seed {
		score := 99
		p.CompositeScore = &score
		if _, err := store.UpsertWorkerProfile(ctx, p); err != nil {
			t.Fatalf("UpsertWorkerProfile(%s) error: %v", p.ID, err)
		}
	}

	cases := []struct {
		name   string
		filter model.ProfileFilter
		want   []string
	}{
		{name: "all", filter: model.ProfileFilter{}, want: []string{"w1", "w2", "w3", "w4"}},
		{name: "trade substring", filter: model.ProfileFilter{Trade: "ELECTRICIAN"}, want: []string{"w1", "w2", "w3"}},
		{name: "country or in-country experience", filter: model.ProfileFilter{Trade: "electrician", Country: "germany"}, want: []string{"w1", "w2"}},
		{name: "by user", filter: model.ProfileFilter{UserID: "u4"}, want: []string{"w4"}},
	}

	for _, tc := range cases {
		profiles, err := store.ListWorkerProfiles(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: ListWorkerProfiles error: %v", tc.name, err)
		}
		ids := make([]string, 0, len(profiles))
		for _, p := range profiles {
			if p.CompositeScore != nil {
				t.Fatalf("%s: composite score must not be stored", tc.name)
			}
			ids = append(ids, p.ID)
		}
		if !reflect.DeepEqual(ids, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, ids)
		}
	}
}

func TestStoreClosedIsUnavailable(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "tradematch.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if _, err := store.ListJobs(context.Background(), model.JobFilter{}); !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got %v", err)
	}
	if err := store.Ping(context.Background()); !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable from Ping, got %v", err)
	}
}
