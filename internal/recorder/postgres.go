// This file implements the PostgreSQL-backed session event store.
package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the maximum number of open connections.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the maximum number of idle connections.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is how long a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists session events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore opens a connection with the configured DSN, tunes the
// pool, and applies migrations.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, ErrDSNNotSet
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("PostgresStore ready")
	return &PostgresStore{db: db}, nil
}

// LogEvent appends one event.
func (s *PostgresStore) LogEvent(ev SessionEvent) error {
	meta, err := marshalMetadata(ev.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO session_events (id, session_id, type, detail, metadata, time) VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.SessionID, string(ev.Type), ev.Detail, meta, ev.Time,
	)
	if err != nil {
		slog.Error("PostgresStore LogEvent failed", "error", err, "session", ev.SessionID, "type", ev.Type)
		return fmt.Errorf("failed to insert session event: %w", err)
	}
	slog.Debug("PostgresStore LogEvent succeeded", "session", ev.SessionID, "type", ev.Type)
	return nil
}

// EventsForSession returns a session's events in insertion order.
func (s *PostgresStore) EventsForSession(sessionID string) ([]SessionEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, type, detail, metadata, time FROM session_events WHERE session_id = $1 ORDER BY time, id`,
		sessionID,
	)
	if err != nil {
		slog.Error("PostgresStore EventsForSession query failed", "error", err, "session", sessionID)
		return nil, fmt.Errorf("failed to query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			slog.Error("PostgresStore EventsForSession scan failed", "error", err)
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore EventsForSession rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate session event rows: %w", err)
	}
	slog.Debug("PostgresStore EventsForSession succeeded", "session", sessionID, "count", len(events))
	return events, nil
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
