package model

// JobFilter selects jobs. Empty fields do not constrain the result.
type JobFilter struct {
	// Query is matched case-insensitively against title, description and skills.
	Query      string
	Status     JobStatus
	EmployerID string
	// PublicOnly keeps only jobs visible in public search.
	PublicOnly bool
}

// ProfileFilter selects worker profiles. Empty fields do not constrain the result.
type ProfileFilter struct {
	// Trade is matched as a case-insensitive substring of trade_or_skill.
	Trade string
	// Country matches country_of_origin as a substring OR any positive in-country experience.
	Country string
	UserID  string
}
