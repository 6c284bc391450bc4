// This file implements the SQLite-backed session event store.
package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the permissions for created database
// directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists session events in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the SQLite database at the DSN path, creating the
// parent directory if needed, and applies migrations.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, ErrDSNNotSet
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("SQLiteStore ready", "path", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

// LogEvent appends one event.
func (s *SQLiteStore) LogEvent(ev SessionEvent) error {
	meta, err := marshalMetadata(ev.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO session_events (id, session_id, type, detail, metadata, time) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.SessionID, string(ev.Type), ev.Detail, meta, ev.Time,
	)
	if err != nil {
		slog.Error("SQLiteStore LogEvent failed", "error", err, "session", ev.SessionID, "type", ev.Type)
		return fmt.Errorf("failed to insert session event: %w", err)
	}
	slog.Debug("SQLiteStore LogEvent succeeded", "session", ev.SessionID, "type", ev.Type)
	return nil
}

// EventsForSession returns a session's events in insertion order.
func (s *SQLiteStore) EventsForSession(sessionID string) ([]SessionEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, type, detail, metadata, time FROM session_events WHERE session_id = ? ORDER BY time, id`,
		sessionID,
	)
	if err != nil {
		slog.Error("SQLiteStore EventsForSession query failed", "error", err, "session", sessionID)
		return nil, fmt.Errorf("failed to query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			slog.Error("SQLiteStore EventsForSession scan failed", "error", err)
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore EventsForSession rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate session event rows: %w", err)
	}
	slog.Debug("SQLiteStore EventsForSession succeeded", "session", sessionID, "count", len(events))
	return events, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
