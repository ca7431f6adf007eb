// Package daemon provides the scaffolding for the long-running contextd
// process: it wires the database, trigger engine, action handlers, and the
// HTTP API together.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/contextd-io/contextd/internal/actions"
	"github.com/contextd-io/contextd/internal/api"
	"github.com/contextd-io/contextd/internal/config"
	"github.com/contextd-io/contextd/internal/db"
	"github.com/contextd-io/contextd/internal/engine"
	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/scenario"
)

// Daemon is the long-running process hosting the trigger engine and API.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger

	database *db.DB
	store    *scenario.Store
	engine   *engine.Engine
	server   *api.Server
}

// New constructs a daemon with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store := scenario.NewStore(database)
	eventRepo := db.NewEventRepository(database)
	registry := actions.NewDefaultRegistry(cfg.Actions)
	eng := engine.New(store, eventRepo, registry)

	return &Daemon{
		cfg:      cfg,
		logger:   logging.Component("daemon"),
		database: database,
		store:    store,
		engine:   eng,
		server:   api.NewServer(eng, store, eventRepo),
	}, nil
}

// Run starts the engine and API server and blocks until the context is
// canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	defer d.database.Close()

	if err := d.engine.Start(ctx); err != nil {
		return err
	}

	addr := d.cfg.HTTP.Addr()
	d.logger.Info().Str("addr", addr).Msg("contextd starting")

	errCh := make(chan error, 1)
	go func() {
		if err := d.server.Listen(addr); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		d.logger.Info().Msg("contextd shutting down...")
		if err := d.server.Shutdown(); err != nil {
			d.logger.Warn().Err(err).Msg("api shutdown failed")
		}
	case err := <-errCh:
		if err != nil {
			_ = d.engine.Stop()
			return fmt.Errorf("api server error: %w", err)
		}
	}

	if err := d.engine.Stop(); err != nil && !errors.Is(err, engine.ErrEngineNotRunning) {
		return err
	}

	d.logger.Info().Msg("contextd shutdown complete")
	return nil
}

// Engine returns the daemon's trigger engine.
// Useful for testing.
func (d *Daemon) Engine() *engine.Engine {
	return d.engine
}

// Store returns the daemon's scenario store.
// Useful for testing.
func (d *Daemon) Store() *scenario.Store {
	return d.store
}
