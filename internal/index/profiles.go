package index

import (
	"strings"

	"github.com/spigell/tradematch/internal/model"
)

// ProfileIndex holds worker profiles.
type ProfileIndex struct {
	c *collection[model.WorkerProfile]
}

func NewProfileIndex() *ProfileIndex {
	return &ProfileIndex{
		c: newCollection(func(p model.WorkerProfile) string { return p.ID }, model.WorkerProfile.Validate),
	}
}

// Upsert validates and stores the profile, replacing any profile with the same id.
func (x *ProfileIndex) Upsert(p model.WorkerProfile) error {
	p.CompositeScore = nil
	return x.c.upsert(p)
}

// Replace swaps the index content for profiles.
func (x *ProfileIndex) Replace(profiles []model.WorkerProfile) error {
	clean := make([]model.WorkerProfile, len(profiles))
	for i, p := range profiles {
		p.CompositeScore = nil
		clean[i] = p
	}
	return x.c.replace(clean)
}

// Delete removes the profile and reports whether it existed.
func (x *ProfileIndex) Delete(id string) bool { return x.c.delete(id) }

func (x *ProfileIndex) Get(id string) (model.WorkerProfile, bool) { return x.c.get(id) }

func (x *ProfileIndex) Len() int { return x.c.len() }

// Find returns the profiles accepted by match, ordered by id. A nil match returns everything.
func (x *ProfileIndex) Find(match func(model.WorkerProfile) bool) []model.WorkerProfile {
	return x.c.find(match)
}

// ByUser returns the profile owned by userID.
func (x *ProfileIndex) ByUser(userID string) (model.WorkerProfile, bool) {
	if userID == "" {
		return model.WorkerProfile{}, false
	}
	found := x.Find(ProfileMatches(model.ProfileFilter{UserID: userID}))
	if len(found) == 0 {
		return model.WorkerProfile{}, false
	}
	return found[0], true
}

// TradeMatches accepts profiles whose trade contains trade, ignoring case.
func TradeMatches(trade string) func(model.WorkerProfile) bool {
	needle := strings.ToLower(strings.TrimSpace(trade))
	return func(p model.WorkerProfile) bool {
		return needle == "" || containsFold(p.TradeOrSkill, needle)
	}
}

// CountryMatches accepts profiles whose country of origin contains country, or
// that have any experience in a country at all.
// TODO: the OR branch admits every worker with in-country experience regardless of
// which country it was earned in; revisit once experience is recorded per country.
func CountryMatches(country string) func(model.WorkerProfile) bool {
	needle := strings.ToLower(strings.TrimSpace(country))
	return func(p model.WorkerProfile) bool {
		if needle == "" {
			return true
		}
		return containsFold(p.CountryOfOrigin, needle) || p.ExperienceInCountry > 0
	}
}

// ProfileMatches builds the predicate for a ProfileFilter.
func ProfileMatches(f model.ProfileFilter) func(model.WorkerProfile) bool {
	trade := TradeMatches(f.Trade)
	country := CountryMatches(f.Country)
	user := strings.TrimSpace(f.UserID)

	return func(p model.WorkerProfile) bool {
		if user != "" && p.UserID != user {
			return false
		}
		return trade(p) && country(p)
	}
}
