package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// marshalMetadata serializes event metadata for a nullable text column.
func marshalMetadata(meta map[string]string) (interface{}, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event metadata: %w", err)
	}
	return string(b), nil
}

// scanEvent scans a SessionEvent from sql.Rows.
func scanEvent(rows *sql.Rows) (SessionEvent, error) {
	var ev SessionEvent
	var typ string
	var meta sql.NullString
	if err := rows.Scan(&ev.ID, &ev.SessionID, &typ, &ev.Detail, &meta, &ev.Time); err != nil {
		return ev, fmt.Errorf("failed to scan session event row: %w", err)
	}
	ev.Type = EventType(typ)
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &ev.Metadata); err != nil {
			return ev, fmt.Errorf("failed to decode event metadata: %w", err)
		}
	}
	return ev, nil
}
