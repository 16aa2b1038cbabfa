package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/model"
)

// ExcludedCandidates is the content of an exclude file: workers an employer
// rejected for a given job.
type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	JobID      string
	WorkerID   string
	Reason     string `json:",omitempty"`
	ExcludedAt time.Time
}

// NewExcluded builds exclude entries for workerIDs rejected on jobID.
func NewExcluded(jobID, reason string, workerIDs []string) *ExcludedCandidates {
	now := time.Now().UTC()
	excluded := &ExcludedCandidates{}
	for _, id := range workerIDs {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			JobID:      jobID,
			WorkerID:   id,
			Reason:     reason,
			ExcludedAt: now,
		})
	}
	return excluded
}

// LoadExcluded reads an exclude file. A missing or empty file excludes nobody.
func LoadExcluded(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedCandidates{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &excluded, nil
}

func (e *ExcludedCandidates) Append(s *ExcludedCandidates) {
	if s == nil {
		return
	}
	e.Items = append(e.Items, s.Items...)
}

// WorkerIDs returns the workers excluded for jobID.
func (e *ExcludedCandidates) WorkerIDs(jobID string) []string {
	ids := make([]string, 0)
	for _, item := range e.Items {
		if item.JobID == jobID {
			ids = append(ids, item.WorkerID)
		}
	}
	return ids
}

func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// AppendExcluded adds entries to the exclude file at path, creating it when needed.
func AppendExcluded(path string, add *ExcludedCandidates) error {
	existing, err := LoadExcluded(path)
	if err != nil {
		return fmt.Errorf("getting excluded candidates from file: %w", err)
	}
	existing.Append(add)
	return existing.ToFile(path)
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes candidates listed for the job in the exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return ExcludeFileFilterName }

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *model.Profiles) (*model.Profiles, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded, err := LoadExcluded(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	removed := c.Exclude(excluded.WorkerIDs(deps.Job.ID))
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
