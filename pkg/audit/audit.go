// Package audit persists one log row per handled HTTP request. Recording is
// asynchronous through the event bus and must never block a response.
package audit

import (
	"context"
	"time"
)

// Entry is one audit log row.
type Entry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	SessionID    string    `json:"session_id,omitempty"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	RequestData  string    `json:"request_data,omitempty"`
	ResponseData string    `json:"response_data,omitempty"`
	StatusCode   int       `json:"status_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository is the persistence contract for audit entries.
type Repository interface {
	InsertEntry(ctx context.Context, entry *Entry) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
