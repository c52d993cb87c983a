package app

import (
	"context"

	"tcplightd/internal/config"
	"tcplightd/internal/db"
	"tcplightd/internal/eventbus"
	"tcplightd/internal/gwr"
	"tcplightd/internal/ledger"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB  *db.DB
	Bus *eventbus.Bus

	// High-level services
	Gateway *GatewayService
	Intent  *IntentService
	Ledger  *LedgerService
	Health  *HealthService
}

// NewServices creates all services with proper dependency injection.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	s.Bus = eventbus.NewWithConfig(cfg.EventBus.GetWorkers(), cfg.EventBus.GetQueueSize())

	s.Gateway = NewGatewayService(cfg, s.Bus)
	s.Intent = NewIntentService(cfg, s.Bus, s.Gateway.Client)

	if cfg.Ledger.Enabled {
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.DB = database
		s.Ledger = NewLedgerService(cfg, ledger.New(database.DB), s.Bus)
	}

	s.Health = NewHealthService(cfg, func() bool {
		return s.Gateway.Client.State() == gwr.StateReady
	})

	return s, nil
}

// Start starts all services in the correct order. Subscribers attach to the
// bus before the first poll so no discovery event is missed.
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	if s.Ledger != nil {
		s.Ledger.Start(ctx)
	}

	if err := s.Gateway.Start(ctx); err != nil {
		return err
	}

	if err := s.Intent.Start(ctx); err != nil {
		return err
	}

	s.Gateway.StartBackground(ctx, onFatalError)
	s.Health.Start(ctx)

	return nil
}

// Stop gracefully stops all services.
func (s *Services) Stop() error {
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Intent != nil {
		s.Intent.Close()
	}
	if s.Bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
		defer cancel()
		s.Bus.Close(ctx)
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
