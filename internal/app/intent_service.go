package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"tcplightd/internal/config"
	"tcplightd/internal/eventbus"
	"tcplightd/internal/intent"
)

// IntentService connects the MQTT voice-intent listener to the gateway
// client through the event bus.
type IntentService struct {
	cfg      *config.Config
	listener *intent.Listener
	bus      *eventbus.Bus
	ctrl     intent.Controller
}

// NewIntentService creates the intent service. The listener is only created
// when voice intents are enabled.
func NewIntentService(cfg *config.Config, bus *eventbus.Bus, ctrl intent.Controller) *IntentService {
	s := &IntentService{cfg: cfg, bus: bus, ctrl: ctrl}

	if cfg.Voice.Enabled {
		s.listener = intent.NewListener(intent.ListenerConfig{
			Broker:      cfg.Voice.Broker,
			ClientID:    cfg.Voice.ClientID,
			Username:    cfg.Voice.Username,
			Password:    cfg.Voice.Password,
			TopicPrefix: cfg.Voice.TopicPrefix,
		}, bus)
	}

	return s
}

// Start subscribes the dispatch handler and connects the listener.
func (s *IntentService) Start(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}

	s.bus.Subscribe(eventbus.EventTypeIntent, func(ev eventbus.Event) {
		in, ok := ev.Data.(intent.Intent)
		if !ok {
			return
		}
		if err := intent.Dispatch(ctx, s.ctrl, in); err != nil {
			log.Error().Err(err).Str("room", in.Room).Msg("Intent dispatch failed")
		}
	})

	return s.listener.Start(ctx)
}

// Close disconnects the MQTT listener.
func (s *IntentService) Close() {
	if s.listener != nil {
		s.listener.Close()
	}
}
