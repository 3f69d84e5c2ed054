package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sahayakhq/sahayak/pkg/session"
)

// NewSessionStore connects to Redis when an address is configured and falls
// back to the in-memory store otherwise. The fallback loses sessions on
// restart and is meant for local development.
func NewSessionStore(ctx context.Context, logger *slog.Logger, redisAddr, redisPassword string, redisDB int) session.Store {
	if redisAddr == "" {
		logger.WarnContext(ctx, "No Redis address configured, using in-memory session store")

		return session.NewMemoryStore()
	}

	store, err := session.NewRedisStore(ctx, redisAddr, redisPassword, redisDB)
	if err != nil {
		panic(fmt.Errorf("failed to connect to Redis: %w", err))
	}

	return store
}
