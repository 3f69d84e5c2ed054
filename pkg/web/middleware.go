package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/sahayakhq/sahayak/pkg/eventbus"
	"github.com/sahayakhq/sahayak/pkg/events"
)

// HeaderUserID carries the caller identity recorded in audit entries.
const HeaderUserID = "X-User-Id"

// HeaderAPIKey carries the shared key that authenticates API clients.
const HeaderAPIKey = "X-API-Key"

// NewAPIKeyMiddleware rejects requests whose key header does not match the
// configured key. An empty configured key disables authentication.
func NewAPIKeyMiddleware(apiKey string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}

		provided := c.Get(HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			problem := problems.NewStatusProblem(401).
				WithInstance(c.Path()).
				WithType("unauthorized").
				WithDetail("a valid " + HeaderAPIKey + " header is required")

			return c.Status(fiber.StatusUnauthorized).JSON(problem)
		}

		return c.Next()
	}
}

const auditPublishTimeout = 5 * time.Second

// NewAuditMiddleware returns a fiber middleware that publishes one
// AuditRecorded event per handled request. Publishing happens on a separate
// goroutine and never delays or fails the response.
func NewAuditMiddleware(bus eventbus.EventBus, logger *slog.Logger) fiber.Handler {
	log := logger.With("module", "audit_middleware")

	return func(c fiber.Ctx) error {
		requestBody := append([]byte(nil), c.Body()...)

		err := c.Next()

		responseBody := append([]byte(nil), c.Response().Body()...)

		event := &events.AuditRecorded{
			BaseEvent: events.BaseEvent{
				ID:        bus.GenerateID(),
				Type:      events.AuditRecordedEvent,
				Timestamp: time.Now().UTC(),
			},
			UserID:       c.Get(HeaderUserID),
			SessionID:    sessionIDFromBody(requestBody),
			Endpoint:     c.Path(),
			Method:       c.Method(),
			RequestData:  string(requestBody),
			ResponseData: string(responseBody),
			StatusCode:   c.Response().StatusCode(),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), auditPublishTimeout)
			defer cancel()

			if publishErr := bus.Publish(ctx, event.ID, event); publishErr != nil {
				log.Warn("Failed to publish audit event",
					"endpoint", event.Endpoint, "error", publishErr)
			}
		}()

		return err
	}
}

func sessionIDFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		SessionID string `json:"session_id"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	return payload.SessionID
}
