package model

import "strings"

// Role is the kind of account a caller acts as.
type Role string

const (
	RoleWorker   Role = "WORKER"
	RoleEmployer Role = "EMPLOYER"
)

// ParseRole converts a raw string to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleWorker:
		return RoleWorker, nil
	case RoleEmployer:
		return RoleEmployer, nil
	}
	return "", Invalid("unknown role %q", s)
}

// Caller is the resolved identity behind a request. It is passed explicitly
// to every operation that needs it.
type Caller struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// Owns reports whether the caller is the employer of job.
func (c Caller) Owns(job Job) bool {
	return c.UserID != "" && c.UserID == job.EmployerID
}
