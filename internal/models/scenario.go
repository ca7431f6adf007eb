// Package models defines the core data types shared across contextd.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Scenario identifies one of the fixed automation scenarios. The set is
// defined at compile time; scenarios are never created or destroyed at
// runtime.
type Scenario string

const (
	ScenarioMusic   Scenario = "music"
	ScenarioWarning Scenario = "warning"
	ScenarioHome    Scenario = "home"
)

// AllScenarios lists every scenario in declaration order. The trigger engine
// evaluates scenarios in exactly this order so that firing order is
// deterministic within a single event.
func AllScenarios() []Scenario {
	return []Scenario{ScenarioMusic, ScenarioWarning, ScenarioHome}
}

// ParseScenario converts a user-supplied name into a Scenario.
func ParseScenario(s string) (Scenario, error) {
	switch Scenario(strings.ToLower(strings.TrimSpace(s))) {
	case ScenarioMusic:
		return ScenarioMusic, nil
	case ScenarioWarning:
		return ScenarioWarning, nil
	case ScenarioHome:
		return ScenarioHome, nil
	}
	return "", fmt.Errorf("unknown scenario %q", s)
}

// DefaultTargetActivity returns the activity a scenario reacts to before the
// user has configured anything: music triggers on running, warning and home
// trigger on being still.
func (s Scenario) DefaultTargetActivity() ActivityKind {
	switch s {
	case ScenarioMusic:
		return ActivityRunning
	case ScenarioWarning, ScenarioHome:
		return ActivityStill
	}
	return ActivityUnknown
}

// TimeWindow restricts a scenario to a daily time span. Start and End are
// "HH:MM" wall-clock times; a window may wrap past midnight (e.g. 22:00 to
// 06:00).
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate checks both endpoints parse as HH:MM.
func (w TimeWindow) Validate() error {
	if _, err := parseMinuteOfDay(w.Start); err != nil {
		return fmt.Errorf("window start: %w", err)
	}
	if _, err := parseMinuteOfDay(w.End); err != nil {
		return fmt.Errorf("window end: %w", err)
	}
	return nil
}

// Contains reports whether t falls inside the window. A window whose start
// equals its end covers the whole day. Windows that wrap midnight are
// handled.
func (w TimeWindow) Contains(t time.Time) bool {
	start, err := parseMinuteOfDay(w.Start)
	if err != nil {
		return true
	}
	end, err := parseMinuteOfDay(w.End)
	if err != nil {
		return true
	}

	minute := t.Hour()*60 + t.Minute()
	switch {
	case start == end:
		return true
	case start < end:
		return minute >= start && minute < end
	default:
		return minute >= start || minute < end
	}
}

func parseMinuteOfDay(s string) (int, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// ScenarioConfig is the user-editable configuration of a scenario.
type ScenarioConfig struct {
	// Scenario is the identity this configuration belongs to.
	Scenario Scenario `json:"scenario"`

	// Enabled gates whether the engine evaluates this scenario at all.
	Enabled bool `json:"enabled"`

	// FenceSet reports whether a geofence has been configured. A scenario
	// without a fence is never considered inside it.
	FenceSet bool `json:"fence_set"`

	// Latitude and Longitude locate the fence center in degrees.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// RadiusMeters is the fence radius. Negative means no fence.
	RadiusMeters int `json:"radius_meters"`

	// TargetActivity is the activity that must be current for the scenario
	// to fire.
	TargetActivity ActivityKind `json:"target_activity"`

	// Window optionally restricts firing to a daily time span. Nil means
	// the scenario can fire at any time of day.
	Window *TimeWindow `json:"window,omitempty"`
}

// HasFence reports whether the config describes a usable geofence.
func (c ScenarioConfig) HasFence() bool {
	return c.FenceSet && c.RadiusMeters >= 0
}

// InWindow reports whether t satisfies the scenario's time window.
func (c ScenarioConfig) InWindow(t time.Time) bool {
	if c.Window == nil {
		return true
	}
	return c.Window.Contains(t)
}

// Validate checks configuration invariants.
func (c ScenarioConfig) Validate() error {
	validation := &ValidationErrors{}
	if c.Scenario == "" {
		validation.AddMessage("scenario", "scenario is required")
	}
	if c.FenceSet {
		if c.Latitude < -90 || c.Latitude > 90 {
			validation.AddMessage("latitude", "latitude must be within [-90, 90]")
		}
		if c.Longitude < -180 || c.Longitude > 180 {
			validation.AddMessage("longitude", "longitude must be within [-180, 180]")
		}
		if c.RadiusMeters < 0 {
			validation.AddMessage("radius_meters", "radius must be >= 0 when a fence is set")
		}
	}
	if c.Window != nil {
		if err := c.Window.Validate(); err != nil {
			validation.AddMessage("window", err.Error())
		}
	}
	return validation.Err()
}

// ScenarioState is the durable runtime state of a scenario.
//
// Triggered only transitions false to true on a qualifying entry edge, and
// true to false when GeofenceEntered drops from true to false.
type ScenarioState struct {
	Scenario Scenario `json:"scenario"`

	// GeofenceEntered is true iff the last processed position was inside
	// the fence.
	GeofenceEntered bool `json:"geofence_entered"`

	// Triggered is true iff the scenario has fired and the fence has not
	// been left since.
	Triggered bool `json:"triggered"`

	// UpdatedAt is when the state last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// ScenarioStatus is the read-only projection handed to display surfaces: the
// configuration and runtime state of one scenario combined.
type ScenarioStatus struct {
	Config ScenarioConfig `json:"config"`
	State  ScenarioState  `json:"state"`
}
