// Package session stores per-conversation state keyed by session id.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session key does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// DefaultTTL applies when a caller passes a non-positive TTL.
const DefaultTTL = time.Hour

// Store is the persistence contract for session state. Values are opaque
// bytes; callers serialize what they need.
type Store interface {
	Set(ctx context.Context, sessionID string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) ([]byte, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}
