package gwr

import "sync"

// RoomRegistry owns the last-known snapshot of rooms. Callers never mutate
// entries directly; Reconcile is the only writer and Snapshot returns copies.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms []Room
	index map[string]int // name -> position in rooms
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{index: make(map[string]int)}
}

// Reconcile diffs an incoming snapshot against the stored one. Rooms with an
// unseen name are inserted and reported as discovered; rooms that differ by
// value equality replace the stored entry and are reported as changed; equal
// rooms produce nothing. Events are emitted in the order rooms appear in the
// gateway response. Feeding the same list twice yields no events the second
// time.
func (r *RoomRegistry) Reconcile(incoming []Room) []RoomEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []RoomEvent
	for _, room := range incoming {
		pos, seen := r.index[room.Name]
		if !seen {
			r.index[room.Name] = len(r.rooms)
			r.rooms = append(r.rooms, room)
			events = append(events, RoomEvent{Type: EventRoomDiscovered, Room: room})
			continue
		}
		if !r.rooms[pos].Equal(room) {
			r.rooms[pos] = room
			events = append(events, RoomEvent{Type: EventRoomStateChanged, Room: room})
		}
	}
	return events
}

// Snapshot returns a defensive copy of the current rooms.
func (r *RoomRegistry) Snapshot() []Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Room, len(r.rooms))
	copy(out, r.rooms)
	return out
}

// RoomByName returns a copy of the named room.
func (r *RoomRegistry) RoomByName(name string) (Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[name]
	if !ok {
		return Room{}, false
	}
	return r.rooms[pos], true
}

// RIDByName resolves a room name to the gateway's internal room id.
func (r *RoomRegistry) RIDByName(name string) (string, error) {
	room, ok := r.RoomByName(name)
	if !ok {
		return "", ErrUnknownRoom
	}
	return room.RID, nil
}

// DeviceExists reports whether any room's device carries the given id.
func (r *RoomRegistry) DeviceExists(did string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if room.Device.DID == did {
			return true
		}
	}
	return false
}

// Len returns the number of known rooms.
func (r *RoomRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
