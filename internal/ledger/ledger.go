// Package ledger keeps an append-only history of room events, so state
// changes the poll loop observed can be audited after the fact.
package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tcplightd/internal/gwr"
)

// Entry is a single recorded room event.
type Entry struct {
	ID        int64
	EventType string
	Timestamp time.Time
	Room      string
	Payload   map[string]any
}

// Ledger provides append-only room event logging.
type Ledger struct {
	db *sql.DB
}

// New creates a new Ledger using the provided database connection
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Record appends one room event with its observed device state.
func (l *Ledger) Record(ev gwr.RoomEvent) error {
	payload := map[string]any{
		"rid":   ev.Room.RID,
		"did":   ev.Room.Device.DID,
		"state": ev.Room.Device.State,
		"level": ev.Room.Device.Level,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = l.db.Exec(
		`INSERT INTO room_events (event_type, timestamp, room, payload) VALUES (?, ?, ?, ?)`,
		string(ev.Type), time.Now().UTC().Unix(), ev.Room.Name, string(payloadJSON),
	)
	return err
}

// Recent returns the most recent entries, newest first.
func (l *Ledger) Recent(limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, event_type, timestamp, room, payload
		FROM room_events
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByRoom returns entries for one room, newest first.
func (l *Ledger) ByRoom(room string, limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, event_type, timestamp, room, payload
		FROM room_events
		WHERE room = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, room, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// DeleteOlderThan removes entries older than the retention window.
func (l *Ledger) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Unix()
	result, err := l.db.Exec(`DELETE FROM room_events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		var entry Entry
		var payloadStr sql.NullString
		var timestamp int64

		if err := rows.Scan(&entry.ID, &entry.EventType, &timestamp, &entry.Room, &payloadStr); err != nil {
			return nil, err
		}

		entry.Timestamp = time.Unix(timestamp, 0).UTC()
		if payloadStr.Valid && payloadStr.String != "" {
			if err := json.Unmarshal([]byte(payloadStr.String), &entry.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
