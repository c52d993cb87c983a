package gwr

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// parseLevel converts the wire level string; anything unparseable reads as 0.
func parseLevel(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ClientState tracks the orchestrator's lifecycle.
type ClientState int32

const (
	StateUninitialized ClientState = iota
	StateAuthenticating
	StateReady
	StateFailed
)

func (s ClientState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Listener receives room events as polls observe them.
type Listener func(RoomEvent)

// Options configures a Client.
type Options struct {
	Host          string
	TokenPath     string
	Timeout       time.Duration // per-request HTTP timeout
	PollInterval  time.Duration // background poll cadence
	RetryAttempts int           // init retry budget before the final unguarded poll
	AccurateHue   bool          // use the real green channel in hue reads
}

// DefaultPollInterval is the background poll cadence when none is configured.
const DefaultPollInterval = 30 * time.Second

// DefaultRetryAttempts bounds the init poll/re-sync cycle.
const DefaultRetryAttempts = 5

// Client composes transport, codec, token manager, and room registry into
// the public gateway operations. It is the single logical owner of one
// gateway host and the only place retries happen.
type Client struct {
	transport     poster
	tokens        *TokenManager
	registry      *RoomRegistry
	pollInterval  time.Duration
	retryAttempts int
	compatHue     bool

	stateMu sync.Mutex
	state   ClientState

	listenerMu sync.Mutex
	listeners  []Listener
}

// NewClient creates a client for a single gateway host.
func NewClient(opts Options) *Client {
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = DefaultRetryAttempts
	}

	transport := NewTransport(opts.Host, opts.Timeout)
	return &Client{
		transport:     transport,
		tokens:        NewTokenManager(opts.TokenPath, transport),
		registry:      NewRoomRegistry(),
		pollInterval:  opts.PollInterval,
		retryAttempts: opts.RetryAttempts,
		compatHue:     !opts.AccurateHue,
	}
}

// State returns the current lifecycle state.
func (c *Client) State() ClientState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Client) setState(s ClientState) {
	c.stateMu.Lock()
	prev := c.state
	c.state = s
	c.stateMu.Unlock()
	if prev != s {
		log.Debug().Stringer("from", prev).Stringer("to", s).Msg("Gateway client state change")
	}
}

// AddListener registers a listener for room events. Listeners are invoked
// synchronously from the polling goroutine; slow consumers should hand off
// to their own queue.
func (c *Client) AddListener(l Listener) {
	c.listenerMu.Lock()
	c.listeners = append(c.listeners, l)
	c.listenerMu.Unlock()
}

func (c *Client) notify(events []RoomEvent) {
	c.listenerMu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.Unlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}

// Init authorizes against the gateway and performs the first poll.
//
// Token load failures fall through to the sync handshake, whose failures
// (not in sync mode, gateway unreachable) propagate verbatim: both require
// operator action and are not retried here. The first poll runs under a
// bounded retry budget: a rejected token triggers one re-sync per attempt, a
// malformed response retries immediately, and an unreachable gateway
// propagates rather than spinning against a dead host. When the budget is
// exhausted one final unguarded poll decides the outcome.
func (c *Client) Init(ctx context.Context) error {
	c.setState(StateAuthenticating)

	if _, ok := c.tokens.Load(); !ok {
		log.Info().Msg("No persisted token, starting sync handshake")
		if _, err := c.tokens.Sync(ctx); err != nil {
			c.setState(StateFailed)
			return err
		}
	}

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			c.setState(StateFailed)
			return err
		}

		err := c.Poll(ctx)
		if err == nil {
			c.setState(StateReady)
			return nil
		}

		switch {
		case errors.Is(err, ErrInvalidToken):
			log.Warn().Int("attempt", attempt+1).Msg("Token rejected, re-syncing")
			c.tokens.Invalidate()
			if _, serr := c.tokens.Sync(ctx); serr != nil {
				c.setState(StateFailed)
				return serr
			}
		case errors.Is(err, ErrMalformedGWR):
			log.Warn().Int("attempt", attempt+1).Msg("Malformed gateway response, retrying")
		default:
			c.setState(StateFailed)
			return err
		}
	}

	if err := c.Poll(ctx); err != nil {
		c.setState(StateFailed)
		return err
	}
	c.setState(StateReady)
	return nil
}

// Poll fetches the full room carousel, reconciles it against the snapshot,
// and notifies listeners of anything discovered or changed.
func (c *Client) Poll(ctx context.Context) error {
	token := c.tokens.Token()
	if token == "" {
		return ErrInvalidToken
	}

	body, err := c.transport.Post(ctx, encodeBatchQuery(token))
	if err != nil {
		return err
	}
	if body == "" {
		return ErrGatewayUnavailable
	}
	if isPermissionDenied(body) {
		return ErrInvalidToken
	}

	rooms, err := decodeState(body)
	if err != nil {
		return err
	}

	events := c.registry.Reconcile(rooms)
	for _, ev := range events {
		log.Debug().
			Str("event", string(ev.Type)).
			Str("room", ev.Room.Name).
			Str("state", ev.Room.Device.State).
			Str("level", ev.Room.Device.Level).
			Msg("Room event")
	}
	c.notify(events)
	return nil
}

// Run polls on the configured interval until the context is cancelled.
// A rejected token triggers one re-sync per cycle; an unreachable gateway is
// logged and retried on the next tick rather than aborting the loop.
func (c *Client) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		err := c.Poll(ctx)
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, ErrInvalidToken):
			log.Warn().Msg("Token rejected during poll, re-syncing")
			c.tokens.Invalidate()
			if _, serr := c.tokens.Sync(ctx); serr != nil {
				if errors.Is(serr, ErrNotInSyncMode) {
					// Needs the physical sync button; nothing to retry.
					c.setState(StateFailed)
					return serr
				}
				log.Error().Err(serr).Msg("Re-sync failed")
			}
		case errors.Is(err, ErrMalformedGWR):
			log.Warn().Msg("Malformed gateway response, will retry next poll")
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			log.Error().Err(err).Msg("Poll failed")
		}
	}
}

// Rooms returns a copy of the current room snapshot.
func (c *Client) Rooms() []Room {
	return c.registry.Snapshot()
}

// TurnOnRoomByName switches a room's device on at its current level.
func (c *Client) TurnOnRoomByName(ctx context.Context, name string) error {
	rid, err := c.registry.RIDByName(name)
	if err != nil {
		return err
	}
	return c.sendRoomCommand(ctx, rid, 1)
}

// TurnOffRoomByName switches a room's device off.
func (c *Client) TurnOffRoomByName(ctx context.Context, name string) error {
	rid, err := c.registry.RIDByName(name)
	if err != nil {
		return err
	}
	return c.sendRoomCommand(ctx, rid, 0)
}

// SetRoomLevelByName sets a room's output level (0-100).
func (c *Client) SetRoomLevelByName(ctx context.Context, name string, level int) error {
	rid, err := c.registry.RIDByName(name)
	if err != nil {
		return err
	}
	return c.sendRoomLevel(ctx, rid, level)
}

// TurnOnRoomWithLevelByName sets a room's level and then switches it on, in
// that order, matching the gateway's expectation for a dim-to command.
func (c *Client) TurnOnRoomWithLevelByName(ctx context.Context, name string, level int) error {
	rid, err := c.registry.RIDByName(name)
	if err != nil {
		return err
	}
	if err := c.sendRoomLevel(ctx, rid, level); err != nil {
		return err
	}
	return c.sendRoomCommand(ctx, rid, 1)
}

// TurnOnDevice switches a single device on by id.
func (c *Client) TurnOnDevice(ctx context.Context, did string) error {
	return c.sendDeviceCommand(ctx, did, 1)
}

// TurnOffDevice switches a single device off by id.
func (c *Client) TurnOffDevice(ctx context.Context, did string) error {
	return c.sendDeviceCommand(ctx, did, 0)
}

// SetDeviceLevel sets a single device's output level (0-100).
func (c *Client) SetDeviceLevel(ctx context.Context, did string, level int) error {
	token := c.tokens.Token()
	if token == "" {
		return ErrInvalidToken
	}
	if !c.registry.DeviceExists(did) {
		return ErrUnknownDevice
	}
	_, err := c.transport.Post(ctx, encodeDeviceLevel(token, did, level))
	return err
}

// RoomStateByName projects a room's current power and aggregate level.
// Rooms without device data fail loudly: aggregating multiple devices per
// room is not supported.
func (c *Client) RoomStateByName(name string) (RoomState, error) {
	room, ok := c.registry.RoomByName(name)
	if !ok {
		return RoomState{}, ErrUnknownRoom
	}
	if room.Device.DID == "" {
		return RoomState{}, ErrMultipleDevices
	}

	state := RoomState{}
	if room.Device.State != "0" && room.Device.State != "" {
		state.On = true
		state.Level = parseLevel(room.Device.Level)
	}
	return state, nil
}

// RoomHueByName decodes the room's hex color into a scaled HSV hue reading.
func (c *Client) RoomHueByName(name string) (int, error) {
	room, ok := c.registry.RoomByName(name)
	if !ok {
		return 0, ErrUnknownRoom
	}
	color := room.Color
	if color == "" {
		color = room.Device.Color
	}
	return colorToHue(color, c.compatHue)
}

// Commands are fire-and-forget: the gateway returns no success or failure
// signal for control commands, so acknowledgment bodies are discarded.

func (c *Client) sendRoomCommand(ctx context.Context, rid string, value int) error {
	token := c.tokens.Token()
	if token == "" {
		return ErrInvalidToken
	}
	_, err := c.transport.Post(ctx, encodeRoomCommand(token, rid, value))
	return err
}

func (c *Client) sendRoomLevel(ctx context.Context, rid string, level int) error {
	token := c.tokens.Token()
	if token == "" {
		return ErrInvalidToken
	}
	_, err := c.transport.Post(ctx, encodeRoomLevel(token, rid, level))
	return err
}

func (c *Client) sendDeviceCommand(ctx context.Context, did string, value int) error {
	token := c.tokens.Token()
	if token == "" {
		return ErrInvalidToken
	}
	if !c.registry.DeviceExists(did) {
		return ErrUnknownDevice
	}
	_, err := c.transport.Post(ctx, encodeDeviceCommand(token, did, value))
	return err
}
