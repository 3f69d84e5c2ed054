package models

import "time"

// Session is the short-lived server-side scratchpad for one conversation.
// Persistence is best effort only; the backing store evicts by TTL.
type Session struct {
	SessionID string         `json:"session_id"`
	CreatedAt time.Time      `json:"created_at"`
	Values    map[string]any `json:"values,omitempty"`
}

// KeyValuePair is one submitted form value. The submit API carries an ordered
// sequence of these; duplicate keys are last-wins after suffix stripping.
type KeyValuePair struct {
	Key   string `json:"key"   validate:"required"`
	Value any    `json:"value"`
}
