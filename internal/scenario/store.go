// Package scenario provides the durable store for scenario configuration
// and runtime state. The trigger engine is the only writer of runtime
// state; display surfaces read through the Reader projection.
package scenario

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/contextd-io/contextd/internal/db"
	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/models"
)

// Reader is the narrow read-only projection handed to display surfaces
// (API, CLI). Nothing outside the engine writes through the store.
type Reader interface {
	Snapshot(ctx context.Context) ([]models.ScenarioStatus, error)
	CurrentActivity(ctx context.Context) (models.ActivityKind, error)
}

// Store is the single owned accessor for per-scenario configuration and
// state, backed by SQLite.
type Store struct {
	repo   *db.ScenarioRepository
	logger zerolog.Logger
}

// NewStore creates a Store over the given database.
func NewStore(database *db.DB) *Store {
	return &Store{
		repo:   db.NewScenarioRepository(database),
		logger: logging.Component("scenario"),
	}
}

// Config retrieves the configuration of a scenario.
func (s *Store) Config(ctx context.Context, scenario models.Scenario) (models.ScenarioConfig, error) {
	return s.repo.GetConfig(ctx, scenario)
}

// SetFence validates and persists a scenario's geofence.
func (s *Store) SetFence(ctx context.Context, scenario models.Scenario, latitude, longitude float64, radiusMeters int) error {
	cfg := models.ScenarioConfig{
		Scenario:     scenario,
		FenceSet:     true,
		Latitude:     latitude,
		Longitude:    longitude,
		RadiusMeters: radiusMeters,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.logger.Info().
		Str("scenario", string(scenario)).
		Float64("lat", latitude).
		Float64("lng", longitude).
		Int("radius_m", radiusMeters).
		Msg("updating scenario fence")
	return s.repo.SetFence(ctx, scenario, latitude, longitude, radiusMeters)
}

// ClearFence removes a scenario's geofence.
func (s *Store) ClearFence(ctx context.Context, scenario models.Scenario) error {
	return s.repo.ClearFence(ctx, scenario)
}

// SetEnabled switches a scenario on or off.
func (s *Store) SetEnabled(ctx context.Context, scenario models.Scenario, enabled bool) error {
	s.logger.Info().
		Str("scenario", string(scenario)).
		Bool("enabled", enabled).
		Msg("changing scenario activation")
	return s.repo.SetEnabled(ctx, scenario, enabled)
}

// SetTargetActivity changes the activity a scenario reacts to.
func (s *Store) SetTargetActivity(ctx context.Context, scenario models.Scenario, kind models.ActivityKind) error {
	return s.repo.SetTargetActivity(ctx, scenario, kind)
}

// SetWindow sets or clears a scenario's daily time window.
func (s *Store) SetWindow(ctx context.Context, scenario models.Scenario, window *models.TimeWindow) error {
	return s.repo.SetWindow(ctx, scenario, window)
}

// State retrieves the runtime state of a scenario.
func (s *Store) State(ctx context.Context, scenario models.Scenario) (models.ScenarioState, error) {
	return s.repo.GetState(ctx, scenario)
}

// SetGeofenceEntered persists the geofence occupancy flag.
func (s *Store) SetGeofenceEntered(ctx context.Context, scenario models.Scenario, entered bool) error {
	return s.repo.SetGeofenceEntered(ctx, scenario, entered)
}

// SetTriggered persists the triggered flag.
func (s *Store) SetTriggered(ctx context.Context, scenario models.Scenario, triggered bool) error {
	return s.repo.SetTriggered(ctx, scenario, triggered)
}

// CurrentActivity retrieves the device-wide last accepted activity.
func (s *Store) CurrentActivity(ctx context.Context) (models.ActivityKind, error) {
	return s.repo.CurrentActivity(ctx)
}

// SetCurrentActivity persists the device-wide current activity.
func (s *Store) SetCurrentActivity(ctx context.Context, kind models.ActivityKind) error {
	return s.repo.SetCurrentActivity(ctx, kind)
}

// AnyEnabled reports whether at least one scenario is enabled.
func (s *Store) AnyEnabled(ctx context.Context) (bool, error) {
	for _, scenario := range models.AllScenarios() {
		cfg, err := s.repo.GetConfig(ctx, scenario)
		if err != nil {
			return false, err
		}
		if cfg.Enabled {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot returns the combined configuration and state of every scenario
// in declaration order.
func (s *Store) Snapshot(ctx context.Context) ([]models.ScenarioStatus, error) {
	return s.repo.ListStatuses(ctx)
}
