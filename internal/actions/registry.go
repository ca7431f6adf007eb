package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/contextd-io/contextd/internal/config"
	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/models"
)

// Registry manages the registered scenario handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[models.Scenario]Handler
	logger   zerolog.Logger
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[models.Scenario]Handler),
		logger:   logging.Component("actions"),
	}
}

// NewDefaultRegistry creates a registry with the built-in handlers wired
// to the configured external commands.
func NewDefaultRegistry(cfg config.ActionsConfig) *Registry {
	r := NewRegistry()
	r.MustRegister(NewMusicHandler(cfg, ExecRunner))
	r.MustRegister(NewWarningHandler(cfg, ExecRunner))
	r.MustRegister(NewHomeHandler(cfg, ExecRunner))
	return r
}

// Register adds a handler to the registry.
// Returns an error if a handler for the same scenario is already registered.
func (r *Registry) Register(handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scenario := handler.Scenario()
	if _, exists := r.handlers[scenario]; exists {
		return fmt.Errorf("handler for scenario %q already registered", scenario)
	}

	r.handlers[scenario] = handler
	return nil
}

// MustRegister adds a handler to the registry, panicking on error.
func (r *Registry) MustRegister(handler Handler) {
	if err := r.Register(handler); err != nil {
		panic(err)
	}
}

// Get retrieves the handler for a scenario.
// Returns nil if no handler is registered.
func (r *Registry) Get(scenario models.Scenario) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.handlers[scenario]
}

// Scenarios returns the scenarios that have a registered handler.
func (r *Registry) Scenarios() []models.Scenario {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenarios := make([]models.Scenario, 0, len(r.handlers))
	for scenario := range r.handlers {
		scenarios = append(scenarios, scenario)
	}
	return scenarios
}

// Unregister removes the handler for a scenario.
// Returns true if a handler was removed.
func (r *Registry) Unregister(scenario models.Scenario) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[scenario]; exists {
		delete(r.handlers, scenario)
		return true
	}
	return false
}

// Dispatch fires the handler for a scenario. Handler errors and missing
// handlers are logged; neither is reported back to the caller because the
// firing is already committed by the time the side effect runs.
func (r *Registry) Dispatch(ctx context.Context, scenario models.Scenario, fc FireContext) {
	handler := r.Get(scenario)
	if handler == nil {
		r.logger.Warn().
			Str("scenario", string(scenario)).
			Msg("no handler registered for fired scenario")
		return
	}

	if err := handler.Fire(ctx, fc); err != nil {
		r.logger.Error().
			Err(err).
			Str("scenario", string(scenario)).
			Str("trigger", fc.Trigger).
			Msg("scenario handler failed")
		return
	}

	r.logger.Info().
		Str("scenario", string(scenario)).
		Str("trigger", fc.Trigger).
		Str("activity", string(fc.Activity)).
		Msg("scenario action executed")
}
