package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quotedesk/internal/adapters/clients"
	"github.com/jsamuelsen/quotedesk/internal/adapters/clients/postgrest"
	"github.com/jsamuelsen/quotedesk/internal/adapters/store/memory"
	"github.com/jsamuelsen/quotedesk/internal/adapters/store/pgxtrack"
	"github.com/jsamuelsen/quotedesk/internal/adapters/store/sqlstore"
	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// pinger is implemented by every store and tracker adapter.
type pinger interface {
	Ping(ctx context.Context) error
}

// backend is the record store and view tracker chosen by configuration.
type backend struct {
	store   ports.Store
	tracker ports.ViewTracker
	closers []func() error
}

// Close releases the backend in reverse order of opening.
func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}

	return errors.Join(errs...)
}

// openBackend opens the configured store driver and view tracker and
// registers a readiness check for each.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, registry ports.HealthRegistry) (*backend, error) {
	b := &backend{}

	store, err := openStore(ctx, cfg, logger, b)
	if err != nil {
		return nil, errors.Join(err, b.Close())
	}

	b.store = store

	if err := register(registry, "store", store, false); err != nil {
		return nil, errors.Join(err, b.Close())
	}

	switch cfg.ViewTracking.Mode {
	case config.ViewTrackingStore:
		tracker, ok := store.(ports.ViewTracker)
		if !ok {
			return nil, errors.Join(fmt.Errorf("store driver %s cannot track views", cfg.Store.Driver), b.Close())
		}

		b.tracker = tracker
	case config.ViewTrackingDirect:
		tracker, err := pgxtrack.New(ctx, cfg.ViewTracking.DSN)
		if err != nil {
			return nil, errors.Join(err, b.Close())
		}

		b.closers = append(b.closers, func() error { tracker.Close(); return nil })
		b.tracker = tracker

		// Views are best effort, so a failing tracker degrades rather than fails readiness.
		if err := register(registry, "view-tracker", tracker, true); err != nil {
			return nil, errors.Join(err, b.Close())
		}
	case config.ViewTrackingOff:
		logger.Info("client view tracking is off")
	}

	return b, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, b *backend) (ports.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgREST:
		client, err := clients.New(&clients.Config{
			BaseURL:     cfg.Store.PostgREST.URL,
			ServiceName: "postgrest",
			Timeout:     cfg.Client.Timeout,
			Retry:       cfg.Client.Retry,
			Circuit:     cfg.Client.CircuitBreaker,
			Transport:   cfg.Client.Transport,
			AuthFunc:    postgrest.AuthFunc(cfg.Store.PostgREST.APIKey),
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating postgrest client: %w", err)
		}

		return postgrest.New(client, postgrest.Config{
			APIKey: cfg.Store.PostgREST.APIKey,
			Schema: cfg.Store.PostgREST.Schema,
			Logger: logger,
		})
	case config.StoreDriverSQL:
		db, err := sqlstore.Open(ctx, cfg.Store.SQL, logger)
		if err != nil {
			return nil, err
		}

		store := sqlstore.New(db)
		b.closers = append(b.closers, store.Close)

		return store, nil
	default:
		logger.Warn("using the in-memory store; quotes are lost on restart")

		return memory.New(), nil
	}
}

func register(registry ports.HealthRegistry, name string, target any, optional bool) error {
	p, ok := target.(pinger)
	if !ok {
		return nil
	}

	return registry.Register(ports.CheckFunc{CheckName: name, Fn: p.Ping, IsOptional: optional})
}
