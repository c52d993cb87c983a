package gwr

import "errors"

var (
	// ErrNotInSyncMode means the gateway refused the login handshake. This is
	// terminal until a human presses the physical sync button on the gateway.
	ErrNotInSyncMode = errors.New("gateway is not in sync mode, press the sync button on the gateway")

	// ErrGatewayUnavailable covers every network-level failure: DNS, refused
	// connection, timeout. Surfaced for manual retry, never spin-looped.
	ErrGatewayUnavailable = errors.New("gateway is unreachable")

	// ErrInvalidToken means the gateway rejected our auth token. Triggers one
	// bounded re-sync-and-retry cycle in the orchestrator.
	ErrInvalidToken = errors.New("invalid token, renew the token")

	// ErrMalformedGWR means a response did not fit the expected room shape.
	// Usually transient gateway noise; retried without re-syncing.
	ErrMalformedGWR = errors.New("gateway response was malformed")

	// ErrUnknownRoom is returned for name-based operations when the name is
	// not present in the current snapshot.
	ErrUnknownRoom = errors.New("unknown room")

	// ErrUnknownDevice is the device-id analog of ErrUnknownRoom.
	ErrUnknownDevice = errors.New("unknown device")

	// ErrMultipleDevices marks the documented single-device-per-room
	// limitation. Multi-device rooms fail loudly instead of aggregating
	// incorrectly.
	ErrMultipleDevices = errors.New("rooms with multiple devices are not supported")
)
