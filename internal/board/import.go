package board

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/model"
)

// Seed is a batch of records loaded from a seed file.
type Seed struct {
	Jobs     []model.Job           `mapstructure:"jobs"`
	Profiles []model.WorkerProfile `mapstructure:"profiles"`
}

// ImportResult counts the records written by Import.
type ImportResult struct {
	Jobs     int
	Profiles int
}

// DecodeSeed turns loosely typed records (as read from YAML or JSON) into a
// Seed. Numbers given as strings are accepted; unknown keys are rejected.
func DecodeSeed(raw map[string]any) (Seed, error) {
	var seed Seed
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &seed,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Seed{}, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Seed{}, model.Invalid("decode seed: %v", err)
	}
	return seed, nil
}

// Import validates every record of seed and then writes them through storage
// and the indexes. Nothing is written when any record is invalid. Import acts
// as an operator, so ownership is not checked. A profile for a user who
// already has one replaces it under the existing id.
func (s *Service) Import(ctx context.Context, seed Seed) (ImportResult, error) {
	for i := range seed.Jobs {
		job := &seed.Jobs[i]
		job.Normalize()
		if job.Status == "" {
			job.Status = model.StatusActive
		}
		if err := job.Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("job #%d: %w", i+1, err)
		}
	}
	owners := make(map[string]int, len(seed.Profiles))
	for i := range seed.Profiles {
		profile := &seed.Profiles[i]
		profile.Normalize()
		if err := profile.Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("profile #%d: %w", i+1, err)
		}
		if profile.UserID == "" {
			continue
		}
		if first, dup := owners[profile.UserID]; dup {
			return ImportResult{}, fmt.Errorf("profile #%d: %w",
				i+1, model.Invalid("user %s already owns profile #%d", profile.UserID, first))
		}
		owners[profile.UserID] = i + 1
		// A user has at most one profile: an import replaces it in place.
		if existing, ok := s.profiles.ByUser(profile.UserID); ok {
			profile.ID = existing.ID
		}
	}

	var res ImportResult
	for _, job := range seed.Jobs {
		stored, err := s.storage.UpsertJob(ctx, job)
		if err != nil {
			return res, err
		}
		if err := s.jobs.Upsert(stored); err != nil {
			return res, err
		}
		res.Jobs++
	}
	for _, profile := range seed.Profiles {
		stored, err := s.storage.UpsertWorkerProfile(ctx, profile)
		if err != nil {
			return res, err
		}
		if err := s.profiles.Upsert(stored); err != nil {
			return res, err
		}
		res.Profiles++
	}

	s.logger.Info("seed imported", zap.Int("jobs", res.Jobs), zap.Int("worker_profiles", res.Profiles))
	return res, nil
}
