package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS audit_entries (
		id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255),
		session_id VARCHAR(255),
		endpoint VARCHAR(512) NOT NULL,
		method VARCHAR(16) NOT NULL,
		request_data TEXT,
		response_data TEXT,
		status_code INTEGER NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_entries_created_at ON audit_entries(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_entries_session_id ON audit_entries(session_id);
`

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository connects to the database, verifies the connection,
// and ensures the audit table exists.
func NewPostgresRepository(ctx context.Context, logger *slog.Logger, databaseURL string) (*PostgresRepository, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{
		db:     database,
		logger: logger.With("module", "audit_postgres"),
	}

	if _, err := database.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	logger.InfoContext(ctx, "Audit PostgreSQL repository initialized")

	return repo, nil
}

// newRepositoryWithDB wires an existing handle; used by tests.
func newRepositoryWithDB(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger.With("module", "audit_postgres")}
}

// InsertEntry stores one audit row.
func (r *PostgresRepository) InsertEntry(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_entries (
			id, user_id, session_id, endpoint, method, request_data, response_data, status_code, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	entry.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.SessionID,
		entry.Endpoint,
		entry.Method,
		entry.RequestData,
		entry.ResponseData,
		entry.StatusCode,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert audit entry", "entry_id", entry.ID, "error", err)

		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	r.logger.DebugContext(ctx, "Audit entry inserted", "entry_id", entry.ID, "endpoint", entry.Endpoint)

	return nil
}

// PurgeOlderThan deletes entries created before the cutoff and reports how
// many rows were removed.
func (r *PostgresRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_entries WHERE created_at < $1`, cutoff)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to purge audit entries", "cutoff", cutoff, "error", err)

		return 0, fmt.Errorf("failed to purge audit entries: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.InfoContext(ctx, "Audit entries purged", "cutoff", cutoff, "count", purged)

	return purged, nil
}

// HealthCheck verifies the database connection is healthy.
func (r *PostgresRepository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (r *PostgresRepository) Close() error {
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
