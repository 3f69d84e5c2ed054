package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sahayakhq/sahayak/pkg/eventbus"
	"github.com/sahayakhq/sahayak/pkg/events"
)

// Recorder consumes audit events from the bus and writes them through the
// repository. It runs detached from the request path.
type Recorder struct {
	bus    eventbus.EventBus
	repo   Repository
	logger *slog.Logger
}

func NewRecorder(bus eventbus.EventBus, repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{
		bus:    bus,
		repo:   repo,
		logger: logger.With("module", "audit_recorder"),
	}
}

// Start registers the handler and begins consuming.
func (r *Recorder) Start(ctx context.Context) error {
	err := r.bus.Handle(events.AuditRecordedEvent, func(ctx context.Context, event interface{}) error {
		recorded, ok := event.(*events.AuditRecorded)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}

		return r.record(ctx, recorded)
	})
	if err != nil {
		return fmt.Errorf("failed to register audit handler: %w", err)
	}

	if err := r.bus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to audit events: %w", err)
	}

	r.logger.InfoContext(ctx, "Audit recorder started")

	return nil
}

func (r *Recorder) record(ctx context.Context, event *events.AuditRecorded) error {
	entry := &Entry{
		ID:           event.ID,
		UserID:       event.UserID,
		SessionID:    event.SessionID,
		Endpoint:     event.Endpoint,
		Method:       event.Method,
		RequestData:  event.RequestData,
		ResponseData: event.ResponseData,
		StatusCode:   event.StatusCode,
		CreatedAt:    event.Timestamp,
	}

	if err := r.repo.InsertEntry(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist audit entry", "entry_id", entry.ID, "error", err)

		return err
	}

	return nil
}
