// Package replay re-runs recorded event sequences through a fresh engine
// against an in-memory database. Replays have no side effects; firings are
// recorded in the event log only.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/contextd-io/contextd/internal/models"
)

// FixtureFence is the JSON shape of a scenario geofence.
type FixtureFence struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`
}

// FixtureScenario configures one scenario before the replay starts.
type FixtureScenario struct {
	Scenario       models.Scenario    `json:"scenario"`
	Enabled        bool               `json:"enabled"`
	Fence          *FixtureFence      `json:"fence,omitempty"`
	TargetActivity models.ActivityKind `json:"target_activity,omitempty"`
	Window         *models.TimeWindow `json:"window,omitempty"`
}

// Step is one recorded provider callback. Exactly one of Locations and
// Activities must be set; a step is processed as one batch.
type Step struct {
	Locations  []models.LocationFix    `json:"locations,omitempty"`
	Activities []models.ActivitySample `json:"activities,omitempty"`
}

// Fixture is the top-level JSON structure of a replay recording.
type Fixture struct {
	Description   string              `json:"description"`
	Scenarios     []FixtureScenario   `json:"scenarios"`
	StartActivity models.ActivityKind `json:"start_activity,omitempty"`
	Steps         []Step              `json:"steps"`
}

// Validate checks the fixture for structural problems before a run.
func (f *Fixture) Validate() error {
	for i, sc := range f.Scenarios {
		if _, err := models.ParseScenario(string(sc.Scenario)); err != nil {
			return fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		if sc.TargetActivity != "" {
			if _, err := models.ParseActivityKind(string(sc.TargetActivity)); err != nil {
				return fmt.Errorf("scenarios[%d]: %w", i, err)
			}
		}
		if sc.Window != nil {
			if err := sc.Window.Validate(); err != nil {
				return fmt.Errorf("scenarios[%d]: %w", i, err)
			}
		}
	}
	if f.StartActivity != "" {
		if _, err := models.ParseActivityKind(string(f.StartActivity)); err != nil {
			return fmt.Errorf("start_activity: %w", err)
		}
	}
	for i, step := range f.Steps {
		hasLocations := len(step.Locations) > 0
		hasActivities := len(step.Activities) > 0
		if hasLocations == hasActivities {
			return fmt.Errorf("steps[%d]: exactly one of locations and activities must be set", i)
		}
	}
	return nil
}

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}
	return &fixture, nil
}
