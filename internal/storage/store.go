// Package storage is the SQLite-backed system of record for jobs and worker profiles.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/spigell/tradematch/internal/index"
	"github.com/spigell/tradematch/internal/model"
)

// Store wraps the SQLite database holding jobs and worker profiles.
type Store struct {
	db *gorm.DB
}

type jobRow struct {
	ID             string `gorm:"primaryKey"`
	EmployerID     string `gorm:"index"`
	EmployerName   string
	Title          string
	Description    string
	RequiredSkills datatypes.JSON
	Status         string `gorm:"index"`
	Location       string
	Country        string
	SalaryMin      int
	SalaryMax      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (jobRow) TableName() string { return "jobs" }

type profileRow struct {
	ID                  string `gorm:"primaryKey"`
	UserID              string `gorm:"index"`
	FullName            string
	TradeOrSkill        string `gorm:"index"`
	ExperienceYears     int
	CountryOfOrigin     string
	ExperienceInCountry int
	Summary             string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (profileRow) TableName() string { return "worker_profiles" }

// NewStore opens (or creates) the database at dbPath and migrates the tables.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&jobRow{}, &profileRow{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// Ping checks that the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return model.Unavailable("ping db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return model.Unavailable("ping db", err)
	}
	return nil
}

// ListJobs returns the jobs matching f ordered by id. Status and employer are
// filtered in SQL; the text query goes through index.JobMatches so that
// storage and the in-memory index agree on Unicode case folding and never
// match the JSON punctuation of the skills column.
func (s *Store) ListJobs(ctx context.Context, f model.JobFilter) ([]model.Job, error) {
	query := s.db.WithContext(ctx).Model(&jobRow{}).Order("id ASC")

	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}
	if f.EmployerID != "" {
		query = query.Where("employer_id = ?", strings.TrimSpace(f.EmployerID))
	}
	if f.PublicOnly {
		query = query.Where("status = ?", string(model.StatusActive))
	}

	var rows []jobRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, model.Unavailable("list jobs", err)
	}

	match := index.JobMatches(f)
	jobs := make([]model.Job, 0, len(rows))
	for _, row := range rows {
		job, err := row.toModel()
		if err != nil {
			return nil, model.Unavailable("list jobs", err)
		}
		if match(job) {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// GetJob returns the job with the given id.
func (s *Store) GetJob(ctx context.Context, id string) (model.Job, error) {
	var row jobRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Job{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
		}
		return model.Job{}, model.Unavailable("get job", err)
	}
	job, err := row.toModel()
	if err != nil {
		return model.Job{}, model.Unavailable("get job", err)
	}
	return job, nil
}

// UpsertJob inserts or updates job and returns the stored record. A missing id is assigned.
func (s *Store) UpsertJob(ctx context.Context, job model.Job) (model.Job, error) {
	job.Normalize()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if err := job.Validate(); err != nil {
		return model.Job{}, err
	}

	row, err := jobFromModel(job)
	if err != nil {
		return model.Job{}, err
	}

	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"employer_id",
			"employer_name",
			"title",
			"description",
			"required_skills",
			"status",
			"location",
			"country",
			"salary_min",
			"salary_max",
			"updated_at",
		}),
	}).Create(&row)
	if tx.Error != nil {
		return model.Job{}, model.Unavailable("upsert job", tx.Error)
	}
	return job, nil
}

// DeleteJob removes the job with the given id.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&jobRow{})
	if tx.Error != nil {
		return model.Unavailable("delete job", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("delete job %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// ListWorkerProfiles returns the profiles matching f ordered by id. Like
// ListJobs, the text predicates run through the index package.
func (s *Store) ListWorkerProfiles(ctx context.Context, f model.ProfileFilter) ([]model.WorkerProfile, error) {
	query := s.db.WithContext(ctx).Model(&profileRow{}).Order("id ASC")

	if user := strings.TrimSpace(f.UserID); user != "" {
		query = query.Where("user_id = ?", user)
	}

	var rows []profileRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, model.Unavailable("list worker profiles", err)
	}

	match := index.ProfileMatches(f)
	profiles := make([]model.WorkerProfile, 0, len(rows))
	for _, row := range rows {
		if p := row.toModel(); match(p) {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

// UpsertWorkerProfile inserts or updates p and returns the stored record. A missing id is assigned.
func (s *Store) UpsertWorkerProfile(ctx context.Context, p model.WorkerProfile) (model.WorkerProfile, error) {
	p.Normalize()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := p.Validate(); err != nil {
		return model.WorkerProfile{}, err
	}

	row := profileFromModel(p)
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"full_name",
			"trade_or_skill",
			"experience_years",
			"country_of_origin",
			"experience_in_country",
			"summary",
			"updated_at",
		}),
	}).Create(&row)
	if tx.Error != nil {
		return model.WorkerProfile{}, model.Unavailable("upsert worker profile", tx.Error)
	}
	return p, nil
}

func jobFromModel(job model.Job) (jobRow, error) {
	skills := job.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return jobRow{}, fmt.Errorf("encode required skills: %w", err)
	}
	return jobRow{
		ID:             job.ID,
		EmployerID:     job.EmployerID,
		EmployerName:   job.EmployerName,
		Title:          job.Title,
		Description:    job.Description,
		RequiredSkills: datatypes.JSON(raw),
		Status:         string(job.Status),
		Location:       job.Location,
		Country:        job.Country,
		SalaryMin:      job.SalaryMin,
		SalaryMax:      job.SalaryMax,
	}, nil
}

func (r jobRow) toModel() (model.Job, error) {
	var skills []string
	if len(r.RequiredSkills) > 0 {
		if err := json.Unmarshal(r.RequiredSkills, &skills); err != nil {
			return model.Job{}, fmt.Errorf("decode required skills of job %s: %w", r.ID, err)
		}
	}
	return model.Job{
		ID:             r.ID,
		EmployerID:     r.EmployerID,
		EmployerName:   r.EmployerName,
		Title:          r.Title,
		Description:    r.Description,
		RequiredSkills: model.NormalizeSkills(skills),
		Status:         model.JobStatus(r.Status),
		Location:       r.Location,
		Country:        r.Country,
		SalaryMin:      r.SalaryMin,
		SalaryMax:      r.SalaryMax,
	}, nil
}

func profileFromModel(p model.WorkerProfile) profileRow {
	return profileRow{
		ID:                  p.ID,
		UserID:              p.UserID,
		FullName:            p.FullName,
		TradeOrSkill:        p.TradeOrSkill,
		ExperienceYears:     p.ExperienceYears,
		CountryOfOrigin:     p.CountryOfOrigin,
		ExperienceInCountry: p.ExperienceInCountry,
		Summary:             p.Summary,
	}
}

func (r profileRow) toModel() model.WorkerProfile {
	return model.WorkerProfile{
		ID:                  r.ID,
		UserID:              r.UserID,
		FullName:            r.FullName,
		TradeOrSkill:        r.TradeOrSkill,
		ExperienceYears:     r.ExperienceYears,
		CountryOfOrigin:     r.CountryOfOrigin,
		ExperienceInCountry: r.ExperienceInCountry,
		Summary:             r.Summary,
	}
}
