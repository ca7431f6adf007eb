package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/contextd-io/contextd/internal/models"
)

// Scenario repository errors.
var (
	ErrScenarioNotFound = errors.New("scenario not found")
)

// ScenarioRepository handles persistence of scenario configuration, scenario
// runtime state, and the device-wide current activity. All writes are
// last-write-wins; the trigger engine is the only writer of runtime state.
type ScenarioRepository struct {
	db *DB
}

// NewScenarioRepository creates a new ScenarioRepository.
func NewScenarioRepository(db *DB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

// GetConfig retrieves the configuration of a scenario.
func (r *ScenarioRepository) GetConfig(ctx context.Context, scenario models.Scenario) (models.ScenarioConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, enabled, fence_set, latitude, longitude, radius_m,
		       target_activity, window_start, window_end
		FROM scenarios WHERE name = ?
	`, string(scenario))

	var cfg models.ScenarioConfig
	var name, target string
	var windowStart, windowEnd sql.NullString
	err := row.Scan(
		&name, &cfg.Enabled, &cfg.FenceSet, &cfg.Latitude, &cfg.Longitude,
		&cfg.RadiusMeters, &target, &windowStart, &windowEnd,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ScenarioConfig{}, ErrScenarioNotFound
		}
		return models.ScenarioConfig{}, fmt.Errorf("failed to scan scenario config: %w", err)
	}

	cfg.Scenario = models.Scenario(name)
	cfg.TargetActivity = models.ActivityKind(target)
	if windowStart.Valid && windowEnd.Valid {
		cfg.Window = &models.TimeWindow{Start: windowStart.String, End: windowEnd.String}
	}
	return cfg, nil
}

// SetFence configures the geofence of a scenario.
func (r *ScenarioRepository) SetFence(ctx context.Context, scenario models.Scenario, latitude, longitude float64, radiusMeters int) error {
	return r.updateScenario(ctx, scenario, `
		UPDATE scenarios
		SET fence_set = 1, latitude = ?, longitude = ?, radius_m = ?, config_updated_at = ?
		WHERE name = ?
	`, latitude, longitude, radiusMeters, nowRFC3339(), string(scenario))
}

// ClearFence removes the geofence of a scenario. Without a fence the
// scenario can never be inside it.
func (r *ScenarioRepository) ClearFence(ctx context.Context, scenario models.Scenario) error {
	return r.updateScenario(ctx, scenario, `
		UPDATE scenarios
		SET fence_set = 0, latitude = 0, longitude = 0, radius_m = -1, config_updated_at = ?
		WHERE name = ?
	`, nowRFC3339(), string(scenario))
}

// SetEnabled switches a scenario on or off.
func (r *ScenarioRepository) SetEnabled(ctx context.Context, scenario models.Scenario, enabled bool) error {
	return r.updateScenario(ctx, scenario, `
		UPDATE scenarios SET enabled = ?, config_updated_at = ? WHERE name = ?
	`, enabled, nowRFC3339(), string(scenario))
}

// SetTargetActivity changes the activity a scenario reacts to.
func (r *ScenarioRepository) SetTargetActivity(ctx context.Context, scenario models.Scenario, kind models.ActivityKind) error {
	return r.updateScenario(ctx, scenario, `
		UPDATE scenarios SET target_activity = ?, config_updated_at = ? WHERE name = ?
	`, string(kind), nowRFC3339(), string(scenario))
}

// SetWindow sets or clears (window == nil) the daily time window of a
// scenario.
func (r *ScenarioRepository) SetWindow(ctx context.Context, scenario models.Scenario, window *models.TimeWindow) error {
	var start, end any
	if window != nil {
		if err := window.Validate(); err != nil {
			return err
		}
		start, end = window.Start, window.End
	}
	return r.updateScenario(ctx, scenario, `
		UPDATE scenarios SET window_start = ?, window_end = ?, config_updated_at = ? WHERE name = ?
	`, start, end, nowRFC3339(), string(scenario))
}

// GetState retrieves the runtime state of a scenario.
func (r *ScenarioRepository) GetState(ctx context.Context, scenario models.Scenario) (models.ScenarioState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, geofence_entered, triggered, state_updated_at
		FROM scenarios WHERE name = ?
	`, string(scenario))

	var state models.ScenarioState
	var name, updated string
	if err := row.Scan(&name, &state.GeofenceEntered, &state.Triggered, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ScenarioState{}, ErrScenarioNotFound
		}
		return models.ScenarioState{}, fmt.Errorf("failed to scan scenario state: %w", err)
	}

	state.Scenario = models.Scenario(name)
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		state.UpdatedAt = t
	}
	return state, nil
}

// SetGeofenceEntered persists the geofence occupancy flag of a scenario.
func (r *ScenarioRepository) SetGeofenceEntered(ctx context.Context, scenario models.Scenario, entered bool) error {
	return r.updateScenario(ctx, scenario, `
		UPDATE scenarios SET geofence_entered = ?, state_updated_at = ? WHERE name = ?
	`, entered, nowRFC3339(), string(scenario))
}

// SetTriggered persists the triggered flag of a scenario.
func (r *ScenarioRepository) SetTriggered(ctx context.Context, scenario models.Scenario, triggered bool) error {
	return r.updateScenario(ctx, scenario, `
		UPDATE scenarios SET triggered = ?, state_updated_at = ? WHERE name = ?
	`, triggered, nowRFC3339(), string(scenario))
}

// CurrentActivity retrieves the device-wide last accepted activity.
func (r *ScenarioRepository) CurrentActivity(ctx context.Context) (models.ActivityKind, error) {
	var activity string
	err := r.db.QueryRowContext(ctx, `
		SELECT current_activity FROM device_state WHERE id = 1
	`).Scan(&activity)
	if err != nil {
		return models.ActivityUnknown, fmt.Errorf("failed to read current activity: %w", err)
	}
	return models.ActivityKind(activity), nil
}

// SetCurrentActivity persists the device-wide current activity.
func (r *ScenarioRepository) SetCurrentActivity(ctx context.Context, kind models.ActivityKind) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE device_state SET current_activity = ?, updated_at = ? WHERE id = 1
	`, string(kind), nowRFC3339())
	if err != nil {
		return fmt.Errorf("failed to update current activity: %w", err)
	}
	return nil
}

// ListStatuses returns the combined configuration and runtime state of every
// scenario in declaration order.
func (r *ScenarioRepository) ListStatuses(ctx context.Context) ([]models.ScenarioStatus, error) {
	statuses := make([]models.ScenarioStatus, 0, len(models.AllScenarios()))
	for _, scenario := range models.AllScenarios() {
		cfg, err := r.GetConfig(ctx, scenario)
		if err != nil {
			return nil, err
		}
		state, err := r.GetState(ctx, scenario)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, models.ScenarioStatus{Config: cfg, State: state})
	}
	return statuses, nil
}

func (r *ScenarioRepository) updateScenario(ctx context.Context, scenario models.Scenario, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update scenario %s: %w", scenario, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrScenarioNotFound
	}
	return nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
