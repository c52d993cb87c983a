// Package gwr implements a client for the GWR lighting gateway protocol:
// XML command envelopes over HTTPS, a token-based sync handshake, periodic
// room polling with change detection, and imperative room/device commands.
package gwr

// Device is a single light module as reported by the gateway.
// State and Level keep the gateway's string encoding ("0"/"1" and "0".."100");
// use RoomState for a typed projection.
type Device struct {
	DID   string
	State string
	Level string
	Color string
}

// Room is one gateway room with its single associated device.
// Name is the stable external key; RID/DID are gateway-internal and
// resolved lazily by name.
type Room struct {
	RID    string
	Name   string
	Color  string
	Device Device
}

// Equal reports value equality over the fields the gateway may change
// between polls. Two rooms that compare equal produce no change event.
func (r Room) Equal(other Room) bool {
	return r.Name == other.Name &&
		r.Device.DID == other.Device.DID &&
		r.Device.State == other.Device.State &&
		r.Device.Level == other.Device.Level &&
		r.Device.Color == other.Device.Color
}

// RoomState is a read-only projection of a room's power and level.
type RoomState struct {
	On    bool
	Level int
}

// EventType distinguishes the two notifications the registry can emit.
type EventType string

const (
	EventRoomDiscovered   EventType = "room_discovered"
	EventRoomStateChanged EventType = "room_state_changed"
)

// RoomEvent is emitted by the registry when a poll discovers a new room or
// observes a state change. Room is a copy; holders cannot mutate the snapshot.
type RoomEvent struct {
	Type EventType
	Room Room
}
