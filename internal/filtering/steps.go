package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/tradematch/internal/index"
	"github.com/spigell/tradematch/internal/model"
)

const (
	TradeFilterName       = "trade"
	CountryFilterName     = "country"
	ExcludeFileFilterName = "exclude_file"
)

type tradeFilter struct {
	toggle
}

// NewTrade creates a filter that keeps workers whose trade contains the job title.
func NewTrade() Filter {
	return &tradeFilter{}
}

func (f *tradeFilter) Name() string { return TradeFilterName }

func (f *tradeFilter) Apply(_ context.Context, deps Deps, c *model.Profiles) (*model.Profiles, Step, error) {
	initial := c.Len()
	match := index.TradeMatches(deps.Job.Title)

	dropped := c.Keep(match)
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding candidates by trade",
			zap.String("trade", deps.Job.Title),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *tradeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type countryFilter struct {
	toggle
}

// NewCountry creates a filter that keeps workers from the job's country or with
// any in-country experience. Jobs without a country pass everyone through.
func NewCountry() Filter {
	return &countryFilter{}
}

func (f *countryFilter) Name() string { return CountryFilterName }

func (f *countryFilter) Apply(_ context.Context, deps Deps, c *model.Profiles) (*model.Profiles, Step, error) {
	initial := c.Len()
	if strings.TrimSpace(deps.Job.Country) == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	dropped := c.Keep(index.CountryMatches(deps.Job.Country))
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding candidates by country",
			zap.String("country", deps.Job.Country),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *countryFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
