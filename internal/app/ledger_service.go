package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tcplightd/internal/config"
	"tcplightd/internal/eventbus"
	"tcplightd/internal/gwr"
	"tcplightd/internal/ledger"
)

// LedgerService records room events into the ledger and enforces retention.
type LedgerService struct {
	cfg    *config.Config
	ledger *ledger.Ledger
	bus    *eventbus.Bus
}

// NewLedgerService creates a ledger service over an opened ledger.
func NewLedgerService(cfg *config.Config, l *ledger.Ledger, bus *eventbus.Bus) *LedgerService {
	return &LedgerService{cfg: cfg, ledger: l, bus: bus}
}

// Start subscribes the recording handlers and launches the retention sweep.
func (s *LedgerService) Start(ctx context.Context) {
	record := func(ev eventbus.Event) {
		roomEv, ok := ev.Data.(gwr.RoomEvent)
		if !ok {
			return
		}
		if err := s.ledger.Record(roomEv); err != nil {
			log.Error().Err(err).Str("room", roomEv.Room.Name).Msg("Failed to record room event")
		}
	}
	s.bus.Subscribe(eventbus.EventTypeRoomDiscovered, record)
	s.bus.Subscribe(eventbus.EventTypeRoomStateChanged, record)

	go s.cleanupLoop(ctx)
}

func (s *LedgerService) cleanupLoop(ctx context.Context) {
	interval := s.cfg.Ledger.CleanupInterval.Duration()
	retention := time.Duration(s.cfg.Ledger.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.ledger.DeleteOlderThan(retention)
			if err != nil {
				log.Error().Err(err).Msg("Ledger cleanup failed")
				continue
			}
			if removed > 0 {
				log.Info().Int64("removed", removed).Msg("Ledger retention sweep")
			}
		}
	}
}
