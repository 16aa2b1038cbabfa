// Package identity resolves bearer tokens to callers.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/tradematch/internal/model"
	"github.com/spigell/tradematch/internal/secrets"
)

// Resolver maps an opaque token to the caller behind it.
type Resolver interface {
	Resolve(ctx context.Context, token string) (model.Caller, error)
}

// Entry configures one known caller. TokenFile wins over Token.
type Entry struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token-file"`
	UserID    string `mapstructure:"user-id"`
	Role      string `mapstructure:"role"`
}

// Static is a Resolver over a fixed token table.
type Static struct {
	callers map[string]model.Caller
}

var _ Resolver = (*Static)(nil)

// NewStatic builds the token table. Every entry needs a token, a user id and a
// known role; tokens must be unique.
func NewStatic(entries []Entry) (*Static, error) {
	callers := make(map[string]model.Caller, len(entries))
	for i, entry := range entries {
		userID := strings.TrimSpace(entry.UserID)
		if userID == "" {
			return nil, fmt.Errorf("identity entry %d: user id is required", i)
		}

		role, err := model.ParseRole(entry.Role)
		if err != nil {
			return nil, fmt.Errorf("identity entry %d (%s): %w", i, userID, err)
		}

		token, err := secrets.Load(secrets.Source{
			Name:  fmt.Sprintf("token of %s", userID),
			Value: entry.Token,
			File:  entry.TokenFile,
		})
		if err != nil {
			return nil, fmt.Errorf("identity entry %d: %w", i, err)
		}

		if _, dup := callers[token]; dup {
			return nil, fmt.Errorf("identity entry %d (%s): token is already assigned", i, userID)
		}
		callers[token] = model.Caller{UserID: userID, Role: role}
	}
	return &Static{callers: callers}, nil
}

func (s *Static) Resolve(_ context.Context, token string) (model.Caller, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Caller{}, fmt.Errorf("%w: missing token", model.ErrUnauthenticated)
	}
	caller, ok := s.callers[token]
	if !ok {
		return model.Caller{}, fmt.Errorf("%w: unknown token", model.ErrUnauthenticated)
	}
	return caller, nil
}

// Len returns the number of known callers.
func (s *Static) Len() int {
	return len(s.callers)
}
