// Package orchestrator drives the two conversation pipelines: free-form chat
// and form submission.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sahayakhq/sahayak/pkg/catalog"
	"github.com/sahayakhq/sahayak/pkg/dispatch"
	"github.com/sahayakhq/sahayak/pkg/generation"
	"github.com/sahayakhq/sahayak/pkg/language"
	"github.com/sahayakhq/sahayak/pkg/retrieval"
	"github.com/sahayakhq/sahayak/pkg/rewrite"
	"github.com/sahayakhq/sahayak/pkg/session"
)

const sessionTTL = time.Hour

// Config wires the orchestrator's collaborators. Catalog, Index, Gateway, and
// Sessions are required; Generator and Dispatcher may be nil in reduced
// deployments, which disables the paths that need them.
type Config struct {
	Catalog    *catalog.Catalog
	Index      *retrieval.Index
	Gateway    *language.Gateway
	Generator  generation.Generator
	Dispatcher *dispatch.Dispatcher
	Sessions   session.Store
	Logger     *slog.Logger
}

// Orchestrator holds the shared, read-only handles for request processing.
// It is safe for concurrent use.
type Orchestrator struct {
	catalog    *catalog.Catalog
	index      *retrieval.Index
	gateway    *language.Gateway
	generator  generation.Generator
	dispatcher *dispatch.Dispatcher
	sessions   session.Store
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() int64
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithTimestampFunc overrides the identifier-rewrite timestamp source.
func WithTimestampFunc(now func() int64) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func New(cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:    cfg.Catalog,
		index:      cfg.Index,
		gateway:    cfg.Gateway,
		generator:  cfg.Generator,
		dispatcher: cfg.Dispatcher,
		sessions:   cfg.Sessions,
		logger:     cfg.Logger.With("module", "orchestrator"),
		tracer:     otel.Tracer("sahayak/orchestrator"),
		now:        rewrite.Timestamp,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// sessionState is what the store keeps per conversation.
type sessionState struct {
	SessionID    string         `json:"session_id"`
	CreatedAt    time.Time      `json:"created_at"`
	Language     string         `json:"language,omitempty"`
	LastActionID string         `json:"last_action_id,omitempty"`
	Values       map[string]any `json:"values,omitempty"`
}

func (o *Orchestrator) loadState(ctx context.Context, sessionID string) *sessionState {
	data, err := o.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return &sessionState{SessionID: sessionID, CreatedAt: time.Now().UTC()}
	}

	if err != nil {
		o.logger.WarnContext(ctx, "Failed to load session, starting fresh",
			"session_id", sessionID, "error", err)

		return &sessionState{SessionID: sessionID, CreatedAt: time.Now().UTC()}
	}

	state := &sessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		o.logger.WarnContext(ctx, "Failed to decode session, starting fresh",
			"session_id", sessionID, "error", err)

		return &sessionState{SessionID: sessionID, CreatedAt: time.Now().UTC()}
	}

	return state
}

// saveState is best-effort: a session write failure never fails the request.
func (o *Orchestrator) saveState(ctx context.Context, state *sessionState) {
	data, err := json.Marshal(state)
	if err != nil {
		o.logger.WarnContext(ctx, "Failed to encode session",
			"session_id", state.SessionID, "error", err)

		return
	}

	if err := o.sessions.Set(ctx, state.SessionID, data, sessionTTL); err != nil {
		o.logger.WarnContext(ctx, "Failed to store session",
			"session_id", state.SessionID, "error", err)
	}
}
