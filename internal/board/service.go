// Package board is the operation surface of the job board: it keeps the
// in-memory indexes in sync with storage and enforces who may change what.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/ai"
	"github.com/spigell/tradematch/internal/index"
	"github.com/spigell/tradematch/internal/logger"
	"github.com/spigell/tradematch/internal/matching"
	"github.com/spigell/tradematch/internal/model"
)

// Storage is the system of record behind the indexes.
type Storage interface {
	ListJobs(ctx context.Context, f model.JobFilter) ([]model.Job, error)
	ListWorkerProfiles(ctx context.Context, f model.ProfileFilter) ([]model.WorkerProfile, error)
	UpsertJob(ctx context.Context, job model.Job) (model.Job, error)
	UpsertWorkerProfile(ctx context.Context, p model.WorkerProfile) (model.WorkerProfile, error)
	DeleteJob(ctx context.Context, id string) error
}

// FiltersConfig toggles the optional candidate filters.
type FiltersConfig struct {
	Trade   bool `mapstructure:"trade"`
	Country bool `mapstructure:"country"`
}

// Config tunes ranking.
type Config struct {
	Matching      matching.Config
	DefaultLimit  int
	ExcludeFile   string
	Filters       FiltersConfig
	EnrichMatches bool
}

type Service struct {
	storage   Storage
	jobs      *index.JobIndex
	profiles  *index.ProfileIndex
	ranker    *matching.Ranker
	assistant ai.Assistant
	cfg       Config
	logger    *zap.Logger
}

// New builds a Service. assistant may be nil when AI is disabled.
func New(storage Storage, cfg Config, assistant ai.Assistant, log *zap.Logger) (*Service, error) {
	if storage == nil {
		return nil, errors.New("storage is required")
	}

	scorer, err := matching.NewScorer(cfg.Matching)
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}

	return &Service{
		storage:   storage,
		jobs:      index.NewJobIndex(),
		profiles:  index.NewProfileIndex(),
		ranker:    matching.NewRanker(scorer),
		assistant: assistant,
		cfg:       cfg,
		logger:    logger.WithFields(log, zap.String("component", "board")),
	}, nil
}

// Load replaces both indexes with the content of storage.
func (s *Service) Load(ctx context.Context) error {
	jobs, err := s.storage.ListJobs(ctx, model.JobFilter{})
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}
	profiles, err := s.storage.ListWorkerProfiles(ctx, model.ProfileFilter{})
	if err != nil {
		return fmt.Errorf("load worker profiles: %w", err)
	}

	if err := s.jobs.Replace(jobs); err != nil {
		return fmt.Errorf("index jobs: %w", err)
	}
	if err := s.profiles.Replace(profiles); err != nil {
		return fmt.Errorf("index worker profiles: %w", err)
	}

	s.logger.Info("board loaded", zap.Int("jobs", len(jobs)), zap.Int("worker_profiles", len(profiles)))
	return nil
}

// Counts reports the number of indexed jobs and worker profiles.
func (s *Service) Counts() (jobs, profiles int) {
	return s.jobs.Len(), s.profiles.Len()
}

// SearchJobs is the public job search: only Active jobs are returned.
func (s *Service) SearchJobs(_ context.Context, query string) []model.Job {
	return s.jobs.Find(index.JobMatches(model.JobFilter{Query: query, PublicOnly: true}))
}

// Job returns a single job by id.
func (s *Service) Job(_ context.Context, id string) (model.Job, error) {
	job, ok := s.jobs.Get(strings.TrimSpace(id))
	if !ok {
		return model.Job{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	return job, nil
}

// EmployerJobs returns every job the caller owns, whatever its status.
func (s *Service) EmployerJobs(_ context.Context, caller model.Caller) ([]model.Job, error) {
	if err := requireEmployer(caller, "own jobs"); err != nil {
		return nil, err
	}
	return s.jobs.Find(index.JobMatches(model.JobFilter{EmployerID: caller.UserID})), nil
}

// PostJob creates or edits a job owned by the caller. The employer id defaults
// to the caller and the status to Active.
func (s *Service) PostJob(ctx context.Context, caller model.Caller, job model.Job) (model.Job, error) {
	if caller.Role != model.RoleEmployer {
		return model.Job{}, fmt.Errorf("%w: only employers can post jobs", model.ErrForbidden)
	}

	job.Normalize()
	if job.EmployerID == "" {
		job.EmployerID = caller.UserID
	}
	if !caller.Owns(job) {
		return model.Job{}, fmt.Errorf("%w: job must be posted as %s", model.ErrForbidden, caller.UserID)
	}
	if job.Status == "" {
		job.Status = model.StatusActive
	}
	if job.ID != "" {
		if existing, ok := s.jobs.Get(job.ID); ok && !caller.Owns(existing) {
			return model.Job{}, fmt.Errorf("%w: job %s belongs to another employer", model.ErrForbidden, job.ID)
		}
	}
	if err := job.Validate(); err != nil {
		return model.Job{}, err
	}

	stored, err := s.storage.UpsertJob(ctx, job)
	if err != nil {
		return model.Job{}, err
	}
	if err := s.jobs.Upsert(stored); err != nil {
		return model.Job{}, err
	}

	s.logger.Info("job posted", zap.String(logger.FieldJobID, stored.ID), zap.String(logger.FieldUserID, caller.UserID))
	return stored, nil
}

// UpdateJobStatus moves a job owned by the caller to status.
func (s *Service) UpdateJobStatus(ctx context.Context, caller model.Caller, id string, status model.JobStatus) (model.Job, error) {
	parsed, err := model.ParseStatus(string(status))
	if err != nil {
		return model.Job{}, err
	}

	job, err := s.ownedJob(caller, id)
	if err != nil {
		return model.Job{}, err
	}

	job.Status = parsed
	stored, err := s.storage.UpsertJob(ctx, job)
	if err != nil {
		return model.Job{}, err
	}
	if err := s.jobs.Upsert(stored); err != nil {
		return model.Job{}, err
	}

	s.logger.Info("job status changed",
		zap.String(logger.FieldJobID, stored.ID),
		zap.String("status", string(stored.Status)),
	)
	return stored, nil
}

// DeleteJob removes a job owned by the caller.
func (s *Service) DeleteJob(ctx context.Context, caller model.Caller, id string) error {
	job, err := s.ownedJob(caller, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteJob(ctx, job.ID); err != nil {
		return err
	}
	s.jobs.Delete(job.ID)

	s.logger.Info("job deleted", zap.String(logger.FieldJobID, job.ID))
	return nil
}

func (s *Service) ownedJob(caller model.Caller, id string) (model.Job, error) {
	job, ok := s.jobs.Get(strings.TrimSpace(id))
	if !ok {
		return model.Job{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	if !caller.Owns(job) {
		return model.Job{}, fmt.Errorf("%w: job %s belongs to another employer", model.ErrForbidden, job.ID)
	}
	return job, nil
}

// SaveProfile creates or replaces the caller's worker profile. A user has at
// most one profile, so an existing id is reused.
func (s *Service) SaveProfile(ctx context.Context, caller model.Caller, profile model.WorkerProfile) (model.WorkerProfile, error) {
	if caller.Role != model.RoleWorker {
		return model.WorkerProfile{}, fmt.Errorf("%w: only workers have profiles", model.ErrForbidden)
	}

	profile.Normalize()
	if profile.UserID == "" {
		profile.UserID = caller.UserID
	}
	if profile.UserID != caller.UserID {
		return model.WorkerProfile{}, fmt.Errorf("%w: profile must be saved as %s", model.ErrForbidden, caller.UserID)
	}

	if existing, ok := s.profiles.ByUser(caller.UserID); ok {
		profile.ID = existing.ID
	} else if profile.ID != "" {
		if other, ok := s.profiles.Get(profile.ID); ok && other.UserID != caller.UserID {
			return model.WorkerProfile{}, fmt.Errorf("%w: profile %s belongs to another user", model.ErrForbidden, profile.ID)
		}
	}
	if err := profile.Validate(); err != nil {
		return model.WorkerProfile{}, err
	}
	if profile.Summary == "" {
		profile.Summary = defaultSummary(profile)
	}

	stored, err := s.storage.UpsertWorkerProfile(ctx, profile)
	if err != nil {
		return model.WorkerProfile{}, err
	}
	if err := s.profiles.Upsert(stored); err != nil {
		return model.WorkerProfile{}, err
	}

	s.logger.Info("worker profile saved", zap.String(logger.FieldWorkerID, stored.ID), zap.String(logger.FieldUserID, caller.UserID))
	return stored, nil
}

func defaultSummary(p model.WorkerProfile) string {
	return fmt.Sprintf("Experienced %s with %d years of professional experience.", p.TradeOrSkill, p.ExperienceYears)
}

// Profile returns the caller's own worker profile.
func (s *Service) Profile(_ context.Context, caller model.Caller) (model.WorkerProfile, error) {
	profile, ok := s.profiles.ByUser(caller.UserID)
	if !ok {
		return model.WorkerProfile{}, fmt.Errorf("profile of %s: %w", caller.UserID, model.ErrNotFound)
	}
	return profile, nil
}

// DraftJob asks the assistant for a description and skills for a new posting.
// Only employers may spend the assistant's quota.
func (s *Service) DraftJob(ctx context.Context, caller model.Caller, title, company string) (*ai.JobDraft, error) {
	if err := requireEmployer(caller, "draft jobs"); err != nil {
		return nil, err
	}
	if s.assistant == nil {
		return nil, model.Unavailable("draft job", errors.New("ai assistant is disabled"))
	}
	return s.assistant.DraftJob(ctx, title, company)
}

func requireEmployer(caller model.Caller, action string) error {
	if caller.UserID == "" {
		return model.ErrUnauthenticated
	}
	if caller.Role != model.RoleEmployer {
		return fmt.Errorf("%w: only employers can %s", model.ErrForbidden, action)
	}
	return nil
}
