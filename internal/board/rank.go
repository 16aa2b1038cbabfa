package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/filtering"
	"github.com/spigell/tradematch/internal/logger"
	"github.com/spigell/tradematch/internal/matching"
	"github.com/spigell/tradematch/internal/model"
)

// RankOptions tunes a single RankCandidates call.
type RankOptions struct {
	// Limit truncates the result; zero uses the configured default and a
	// negative value keeps every candidate.
	Limit int
	// Explain asks the assistant for a note on every returned candidate.
	Explain bool
}

// Filters returns the candidate filters in the order they run, with the
// configured ones disabled.
func (s *Service) Filters() []filtering.Filter {
	steps := []filtering.Filter{
		filtering.NewTrade(),
		filtering.NewCountry(),
		filtering.NewExcludeFile(s.cfg.ExcludeFile),
	}
	if !s.cfg.Filters.Trade {
		filtering.DisableByName(steps, filtering.TradeFilterName, "disabled in config")
	}
	if !s.cfg.Filters.Country {
		filtering.DisableByName(steps, filtering.CountryFilterName, "disabled in config")
	}
	if s.cfg.ExcludeFile == "" {
		filtering.DisableByName(steps, filtering.ExcludeFileFilterName, "no exclude file configured")
	}
	return steps
}

// RankCandidates scores every indexed worker that survives the filters against
// the job and returns them best first.
func (s *Service) RankCandidates(ctx context.Context, jobID string, opts RankOptions) ([]matching.MatchResult, error) {
	job, err := s.Job(ctx, jobID)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(logger.MatchFields(job.ID, "")...)

	candidates := &model.Profiles{Items: s.profiles.Find(nil)}
	candidates, err = filtering.Run(ctx, filtering.Deps{Logger: log, Job: job}, s.Filters(), candidates)
	if err != nil {
		return nil, fmt.Errorf("filter candidates: %w", err)
	}

	limit := opts.Limit
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}

	results, err := s.ranker.Rank(job, candidates.Items, limit)
	if err != nil {
		return nil, err
	}

	log.Info("candidates ranked", zap.Int("candidates", candidates.Len()), zap.Int("returned", len(results)))

	if opts.Explain || s.cfg.EnrichMatches {
		s.explain(ctx, log, job, results)
	}
	return results, nil
}

// EmployerCandidates ranks candidates for a job the caller owns. Ranked
// workers are only shown to the employer of the job.
func (s *Service) EmployerCandidates(ctx context.Context, caller model.Caller, jobID string, opts RankOptions) (model.Job, []matching.MatchResult, error) {
	if err := requireEmployer(caller, "review candidates"); err != nil {
		return model.Job{}, nil, err
	}
	job, err := s.ownedJob(caller, jobID)
	if err != nil {
		return model.Job{}, nil, err
	}

	results, err := s.RankCandidates(ctx, job.ID, opts)
	if err != nil {
		return model.Job{}, nil, err
	}
	return job, results, nil
}

// explain fills the notes of results. Failures leave the note empty.
func (s *Service) explain(ctx context.Context, log *zap.Logger, job model.Job, results []matching.MatchResult) {
	if s.assistant == nil {
		log.Debug("ai assistant is disabled; skipping match notes")
		return
	}

	for i := range results {
		note, err := s.assistant.Explain(ctx, job, results[i])
		if err != nil {
			log.Warn("match note failed", zap.String(logger.FieldWorkerID, results[i].WorkerID), zap.Error(err))
			if ctx.Err() != nil {
				return
			}
			continue
		}
		results[i].Note = note
	}
}
