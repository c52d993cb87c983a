package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"tcplightd/internal/config"
	"tcplightd/internal/eventbus"
	"tcplightd/internal/gwr"
)

// GatewayService wraps the gateway client: authorization, the background
// poll loop, and the bridge from client listeners onto the event bus.
type GatewayService struct {
	cfg    *config.Config
	Client *gwr.Client
	Bus    *eventbus.Bus
}

// NewGatewayService creates the gateway client and wires its room events
// into the bus.
func NewGatewayService(cfg *config.Config, bus *eventbus.Bus) *GatewayService {
	client := gwr.NewClient(gwr.Options{
		Host:          cfg.Gateway.Host,
		TokenPath:     cfg.Gateway.TokenPath,
		Timeout:       cfg.Gateway.Timeout.Duration(),
		PollInterval:  cfg.Gateway.PollInterval.Duration(),
		RetryAttempts: cfg.Gateway.RetryAttempts,
		AccurateHue:   cfg.Gateway.AccurateHue,
	})

	// Listener runs on the polling goroutine; Publish is non-blocking, so
	// polls are never held up by subscribers.
	client.AddListener(func(ev gwr.RoomEvent) {
		var t eventbus.EventType
		switch ev.Type {
		case gwr.EventRoomDiscovered:
			t = eventbus.EventTypeRoomDiscovered
		case gwr.EventRoomStateChanged:
			t = eventbus.EventTypeRoomStateChanged
		default:
			return
		}
		bus.Publish(eventbus.Event{Type: t, Data: ev})
	})

	return &GatewayService{cfg: cfg, Client: client, Bus: bus}
}

// Start performs the auth handshake and first poll. A gateway that is not in
// sync mode needs the operator to press the physical sync button; that error
// surfaces as-is for the caller to render.
func (s *GatewayService) Start(ctx context.Context) error {
	if err := s.Client.Init(ctx); err != nil {
		return err
	}
	log.Info().
		Str("host", s.cfg.Gateway.Host).
		Int("rooms", len(s.Client.Rooms())).
		Msg("Connected to lighting gateway")
	return nil
}

// StartBackground launches the poll loop. The loop only returns with an
// error that requires operator action, which is treated as fatal.
func (s *GatewayService) StartBackground(ctx context.Context, onFatalError func(error)) {
	go func() {
		err := s.Client.Run(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, gwr.ErrNotInSyncMode) {
			log.Error().Msg("Gateway left sync mode, press the sync button and restart")
			if onFatalError != nil {
				onFatalError(err)
			}
			return
		}
		log.Error().Err(err).Msg("Poll loop stopped")
	}()
}
