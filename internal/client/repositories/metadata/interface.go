// Package metadata stores small client settings (the bearer token, the
// viewer session id) in the local SQLite database.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyAccessToken = "access_token"
	KeySessionID   = "session_id"
)

type Repository interface {
	// Get returns ok=false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}
