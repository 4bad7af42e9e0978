// Package metadata is the client's local key/value table, kept in SQLite or
// Redis. The session store keeps the user and token here, and onboarding
// keeps preferences.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns nil, nil when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
