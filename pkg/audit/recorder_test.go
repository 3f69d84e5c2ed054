package audit

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayakhq/sahayak/pkg/channels/gochannel"
	"github.com/sahayakhq/sahayak/pkg/eventbus"
	"github.com/sahayakhq/sahayak/pkg/events"
)

type memoryRepository struct {
	mu      sync.Mutex
	entries []*Entry
}

func (m *memoryRepository) InsertEntry(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)

	return nil
}

func (m *memoryRepository) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []*Entry

	var purged int64

	for _, entry := range m.entries {
		if entry.CreatedAt.Before(cutoff) {
			purged++

			continue
		}

		kept = append(kept, entry)
	}

	m.entries = kept

	return purged, nil
}

func (m *memoryRepository) HealthCheck(_ context.Context) error { return nil }

func (m *memoryRepository) Close() error { return nil }

func (m *memoryRepository) snapshot() []*Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*Entry(nil), m.entries...)
}

func TestRecorder_PersistsPublishedEvents(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	defer func() {
		_ = bus.Close()
	}()

	repo := &memoryRepository{}
	recorder := NewRecorder(bus, repo, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, recorder.Start(ctx))

	event := events.AuditRecorded{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.AuditRecordedEvent,
			Timestamp: time.Now().UTC(),
		},
		SessionID:   "session-1",
		Endpoint:    "/submit",
		Method:      "POST",
		RequestData: `{"action_id":"login"}`,
		StatusCode:  200,
	}

	require.NoError(t, bus.Publish(ctx, "session-1", event))

	require.Eventually(t, func() bool {
		return len(repo.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	entry := repo.snapshot()[0]
	assert.Equal(t, "/submit", entry.Endpoint)
	assert.Equal(t, "session-1", entry.SessionID)
	assert.Equal(t, `{"action_id":"login"}`, entry.RequestData)
}

func TestSweeper_PurgesExpiredEntries(t *testing.T) {
	repo := &memoryRepository{}

	old := &Entry{ID: "old", CreatedAt: time.Now().UTC().Add(-96 * time.Hour)}
	fresh := &Entry{ID: "fresh", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.InsertEntry(context.Background(), old))
	require.NoError(t, repo.InsertEntry(context.Background(), fresh))

	sweeper := NewSweeper(repo, 3, slog.Default())
	sweeper.sweep(context.Background())

	entries := repo.snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].ID)
}
