// Package events defines the event types published on the internal bus.
package events

import (
	"time"
)

type EventType string

// Topic is the bus topic all events are published on.
const Topic = "sahayak.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// AuditRecordedEvent is emitted once per handled HTTP request.
	AuditRecordedEvent EventType = "audit.recorded"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// AuditRecorded captures one request/response pair for asynchronous
// persistence. RequestData and ResponseData hold serialized JSON bodies.
type AuditRecorded struct {
	BaseEvent

	UserID       string `json:"user_id,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	Endpoint     string `json:"endpoint"`
	Method       string `json:"method"`
	RequestData  string `json:"request_data,omitempty"`
	ResponseData string `json:"response_data,omitempty"`
	StatusCode   int    `json:"status_code"`
}

func (a AuditRecorded) GetType() EventType {
	return AuditRecordedEvent
}
