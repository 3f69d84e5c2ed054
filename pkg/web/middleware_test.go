package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayakhq/sahayak/pkg/eventbus"
	"github.com/sahayakhq/sahayak/pkg/events"
)

type capturingBus struct {
	mu        sync.Mutex
	published []*events.AuditRecorded
	next      int
}

func (b *capturingBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if audit, ok := event.(*events.AuditRecorded); ok {
		b.published = append(b.published, audit)
	}

	return nil
}

func (b *capturingBus) Handle(_ events.EventType, _ eventbus.EventHandler) error { return nil }

func (b *capturingBus) Subscribe(_ context.Context) error { return nil }

func (b *capturingBus) Close() error { return nil }

func (b *capturingBus) GenerateID() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++

	return fmt.Sprintf("event-%d", b.next)
}

func (b *capturingBus) snapshot() []*events.AuditRecorded {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]*events.AuditRecorded(nil), b.published...)
}

func TestAuditMiddleware_PublishesOneEventPerRequest(t *testing.T) {
	bus := &capturingBus{}

	app := fiber.New()
	app.Use(NewAuditMiddleware(bus, slog.Default()))
	app.Post("/chat", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"session_id": "s1", "response": "ok"})
	})

	body := strings.NewReader(`{"type":"PROMPT","prompt":"Hello","session_id":"s1"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderUserID, "user-42")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return len(bus.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	event := bus.snapshot()[0]
	assert.Equal(t, events.AuditRecordedEvent, event.Type)
	assert.Equal(t, "user-42", event.UserID)
	assert.Equal(t, "s1", event.SessionID)
	assert.Equal(t, "/chat", event.Endpoint)
	assert.Equal(t, http.MethodPost, event.Method)
	assert.Equal(t, http.StatusOK, event.StatusCode)
	assert.Contains(t, event.RequestData, `"prompt":"Hello"`)
	assert.Contains(t, event.ResponseData, `"response":"ok"`)
}

func TestAPIKeyMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(NewAPIKeyMiddleware("secret-key"))
	app.Get("/chat", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.Header.Set(HeaderAPIKey, "wrong-key")
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.Header.Set(HeaderAPIKey, "secret-key")
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIKeyMiddleware_DisabledWithoutKey(t *testing.T) {
	app := fiber.New()
	app.Use(NewAPIKeyMiddleware(""))
	app.Get("/chat", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuditMiddleware_RecordsErrorStatus(t *testing.T) {
	bus := &capturingBus{}

	app := fiber.New()
	app.Use(NewAuditMiddleware(bus, slog.Default()))
	app.Post("/submit", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"type": "not_found"})
	})

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"action_id":"nope"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Eventually(t, func() bool {
		return len(bus.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	event := bus.snapshot()[0]
	assert.Equal(t, http.StatusNotFound, event.StatusCode)
	assert.Empty(t, event.UserID)
	assert.Empty(t, event.SessionID)
}
