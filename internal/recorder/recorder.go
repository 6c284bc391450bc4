// Package recorder persists session events so a finished run can be
// reviewed. Backends: in-memory (the default), SQLite, and PostgreSQL,
// selected by DSN.
package recorder

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/util"
)

// ErrDSNNotSet is returned by the database-backed stores when no DSN was
// configured.
var ErrDSNNotSet = errors.New("database DSN not set")

// EventType classifies a recorded session event.
type EventType string

const (
	// EventSessionStarted marks the beginning of a coaching session.
	EventSessionStarted EventType = "session_started"
	// EventSessionFinished marks the end of a session; its metadata carries
	// the summary numbers.
	EventSessionFinished EventType = "session_finished"
	// EventPromptSpoken records a completed utterance.
	EventPromptSpoken EventType = "prompt_spoken"
	// EventIntentHeard records a classified runner transcript.
	EventIntentHeard EventType = "intent_heard"
	// EventSplitCompleted records a completed split.
	EventSplitCompleted EventType = "split_completed"
	// EventZoneTransition records a heart-rate zone change.
	EventZoneTransition EventType = "zone_transition"
	// EventCommand records a control command applied to the session.
	EventCommand EventType = "command"
)

// SessionEvent is one recorded occurrence within a session.
type SessionEvent struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Type      EventType         `json:"type"`
	Detail    string            `json:"detail"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Time      time.Time         `json:"time"`
}

// NewEvent constructs an event with a generated ID and the current time.
func NewEvent(sessionID string, et EventType, detail string) SessionEvent {
	return SessionEvent{
		ID:        util.GenerateEventID(),
		SessionID: sessionID,
		Type:      et,
		Detail:    detail,
		Time:      time.Now().UTC(),
	}
}

// Store persists session events.
type Store interface {
	// LogEvent appends one event.
	LogEvent(ev SessionEvent) error
	// EventsForSession returns a session's events in insertion order.
	EventsForSession(sessionID string) ([]SessionEvent, error)
	// Close releases the backend.
	Close() error
}

// Opts holds store configuration options.
type Opts struct {
	// DSN is the database connection string. Empty selects the in-memory
	// store.
	DSN string
}

// Option configures store creation.
type Option func(*Opts)

// WithSQLiteDSN points the store at a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN points the store at a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DSNType identifies which backend a DSN addresses.
type DSNType string

const (
	DSNTypeMemory   DSNType = "memory"
	DSNTypeSQLite   DSNType = "sqlite"
	DSNTypePostgres DSNType = "postgres"
)

// DetectDSNType classifies a DSN: postgres URLs and key=value connection
// strings select Postgres, the empty string selects the in-memory store,
// and anything else is treated as a SQLite file path.
func DetectDSNType(dsn string) DSNType {
	switch {
	case dsn == "":
		return DSNTypeMemory
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DSNTypePostgres
	case strings.Contains(dsn, "host="), strings.Contains(dsn, "dbname="):
		return DSNTypePostgres
	default:
		return DSNTypeSQLite
	}
}

// NewStore selects and opens a backend from the configured DSN.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	switch DetectDSNType(cfg.DSN) {
	case DSNTypePostgres:
		return NewPostgresStore(opts...)
	case DSNTypeSQLite:
		return NewSQLiteStore(opts...)
	default:
		return NewInMemoryStore(), nil
	}
}

// InMemoryStore keeps events in memory. It is the default backend and the
// one the demo binary uses unless a DSN is configured.
type InMemoryStore struct {
	mu     sync.Mutex
	events []SessionEvent
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// LogEvent appends one event.
func (s *InMemoryStore) LogEvent(ev SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// EventsForSession returns a session's events in insertion order.
func (s *InMemoryStore) EventsForSession(sessionID string) ([]SessionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []SessionEvent
	for _, ev := range s.events {
		if ev.SessionID == sessionID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
