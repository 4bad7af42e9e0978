// Package session persists the signed-in user and bearer token between runs.
//
// Both entries are always written and removed together. Load reports a
// store holding only one of them as ErrIncomplete, and a user entry that
// cannot be used as ErrCorrupt, so callers can discard either.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

// Fixed storage keys.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

var (
	ErrIncomplete     = errors.New("stored session is incomplete")
	ErrCorrupt        = errors.New("stored session is corrupt")
	ErrInvalidSession = errors.New("session requires both user and token")
)

type Store interface {
	// Save overwrites both entries atomically.
	Save(ctx context.Context, s *models.Session) error
	// Load returns nil, nil when nothing is stored.
	Load(ctx context.Context) (*models.Session, error)
	// Clear removes both entries; clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

func encodeUser(s *models.Session) ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidSession
	}
	b, err := json.Marshal(s.User)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return b, nil
}

// assemble turns the raw entries into a session. Missing entries are
// passed as nil.
func assemble(rawUser, rawToken []byte) (*models.Session, error) {
	if rawUser == nil && rawToken == nil {
		return nil, nil
	}
	if rawUser == nil || len(rawToken) == 0 {
		return nil, ErrIncomplete
	}

	var u models.User
	if err := json.Unmarshal(rawUser, &u); err != nil {
		return nil, fmt.Errorf("%w: decode stored user: %w", ErrCorrupt, err)
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrCorrupt, u.Role)
	}
	return &models.Session{User: &u, Token: string(rawToken)}, nil
}
