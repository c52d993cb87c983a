package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"tcplightd/internal/db"
	"tcplightd/internal/gwr"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database.DB)
}

func roomEvent(name, state, level string) gwr.RoomEvent {
	return gwr.RoomEvent{
		Type: gwr.EventRoomStateChanged,
		Room: gwr.Room{
			RID:  "1",
			Name: name,
			Device: gwr.Device{
				DID:   "216",
				State: state,
				Level: level,
			},
		},
	}
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLedger(t)

	if err := l.Record(roomEvent("Office", "1", "60")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(roomEvent("Den", "0", "0")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	// Newest first.
	if entries[0].Room != "Den" {
		t.Errorf("newest entry room = %q, want Den", entries[0].Room)
	}
	if entries[0].EventType != string(gwr.EventRoomStateChanged) {
		t.Errorf("event type = %q", entries[0].EventType)
	}
	if entries[1].Payload["state"] != "1" || entries[1].Payload["level"] != "60" {
		t.Errorf("payload round-trip failed: %+v", entries[1].Payload)
	}
}

func TestByRoom(t *testing.T) {
	l := openTestLedger(t)

	for i := 0; i < 3; i++ {
		if err := l.Record(roomEvent("Office", "1", "60")); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Record(roomEvent("Den", "0", "0")); err != nil {
		t.Fatal(err)
	}

	entries, err := l.ByRoom("Office", 10)
	if err != nil {
		t.Fatalf("ByRoom: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d Office entries, want 3", len(entries))
	}
}

func TestDeleteOlderThan(t *testing.T) {
	l := openTestLedger(t)

	if err := l.Record(roomEvent("Office", "1", "60")); err != nil {
		t.Fatal(err)
	}

	// Nothing is old enough yet.
	removed, err := l.DeleteOlderThan(24 * time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed %d fresh entries, want 0", removed)
	}

	// A negative retention puts the cutoff in the future, sweeping everything.
	removed, err = l.DeleteOlderThan(-time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d entries, want 1", removed)
	}
}
