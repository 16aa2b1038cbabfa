package model

import "strings"

// WorkerProfile is a worker's skill passport.
type WorkerProfile struct {
	ID                  string `json:"id" mapstructure:"id"`
	UserID              string `json:"user_id" mapstructure:"user_id"`
	FullName            string `json:"full_name" mapstructure:"full_name"`
	TradeOrSkill        string `json:"trade_or_skill" mapstructure:"trade_or_skill"`
	ExperienceYears     int    `json:"experience_years" mapstructure:"experience_years"`
	CountryOfOrigin     string `json:"country_of_origin" mapstructure:"country_of_origin"`
	ExperienceInCountry int    `json:"experience_in_country" mapstructure:"experience_in_country"`
	Summary             string `json:"summary,omitempty" mapstructure:"summary"`
	// CompositeScore is only set on ranking output and is never stored.
	CompositeScore *int `json:"composite_score,omitempty" mapstructure:"-"`
}

// Normalize trims the text fields and drops any transient score.
func (p *WorkerProfile) Normalize() {
	p.ID = strings.TrimSpace(p.ID)
	p.UserID = strings.TrimSpace(p.UserID)
	p.FullName = strings.TrimSpace(p.FullName)
	p.TradeOrSkill = strings.TrimSpace(p.TradeOrSkill)
	p.CountryOfOrigin = strings.TrimSpace(p.CountryOfOrigin)
	p.Summary = strings.TrimSpace(p.Summary)
	p.CompositeScore = nil
}

// Validate reports the first invariant the profile violates.
func (p WorkerProfile) Validate() error {
	if strings.TrimSpace(p.TradeOrSkill) == "" {
		return Invalid("profile %q has no trade or skill", p.ID)
	}
	if p.ExperienceYears < 0 {
		return Invalid("profile %q has negative experience %d", p.ID, p.ExperienceYears)
	}
	if p.ExperienceInCountry < 0 {
		return Invalid("profile %q has negative in-country experience %d", p.ID, p.ExperienceInCountry)
	}
	if p.ExperienceInCountry > p.ExperienceYears {
		return Invalid("profile %q in-country experience %d exceeds total experience %d",
			p.ID, p.ExperienceInCountry, p.ExperienceYears)
	}
	return nil
}

// Profiles is an ordered candidate list.
type Profiles struct {
	Items []WorkerProfile
}

func (p *Profiles) Len() int {
	return len(p.Items)
}

// IDs returns the profile ids in list order.
func (p *Profiles) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, profile := range p.Items {
		ids = append(ids, profile.ID)
	}
	return ids
}

// FindByID returns the profile with the given id or nil.
func (p *Profiles) FindByID(id string) *WorkerProfile {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return &p.Items[i]
		}
	}
	return nil
}

// Keep retains only the profiles accepted by keep and returns the ids of the dropped ones.
// Order of the kept profiles is preserved.
func (p *Profiles) Keep(keep func(WorkerProfile) bool) []string {
	var dropped []string
	kept := p.Items[:0]
	for _, profile := range p.Items {
		if keep(profile) {
			kept = append(kept, profile)
			continue
		}
		dropped = append(dropped, profile.ID)
	}
	p.Items = kept
	return dropped
}

// Exclude removes the profiles whose ids are in targets and returns the removed ids.
func (p *Profiles) Exclude(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(targets))
	for _, id := range targets {
		set[id] = struct{}{}
	}
	return p.Keep(func(profile WorkerProfile) bool {
		_, found := set[profile.ID]
		return !found
	})
}
