package models

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 31, hour, minute, 0, 0, time.UTC)
}

func TestParseScenario(t *testing.T) {
	for _, name := range []string{"music", "Warning", " HOME "} {
		if _, err := ParseScenario(name); err != nil {
			t.Errorf("ParseScenario(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseScenario("picnic"); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestDefaultTargetActivity(t *testing.T) {
	if got := ScenarioMusic.DefaultTargetActivity(); got != ActivityRunning {
		t.Errorf("music default = %s, want running", got)
	}
	if got := ScenarioWarning.DefaultTargetActivity(); got != ActivityStill {
		t.Errorf("warning default = %s, want still", got)
	}
	if got := ScenarioHome.DefaultTargetActivity(); got != ActivityStill {
		t.Errorf("home default = %s, want still", got)
	}
}

func TestTimeWindowContains(t *testing.T) {
	tests := []struct {
		name   string
		window TimeWindow
		time   time.Time
		want   bool
	}{
		{"inside day window", TimeWindow{Start: "09:00", End: "17:00"}, at(12, 0), true},
		{"start inclusive", TimeWindow{Start: "09:00", End: "17:00"}, at(9, 0), true},
		{"end exclusive", TimeWindow{Start: "09:00", End: "17:00"}, at(17, 0), false},
		{"outside day window", TimeWindow{Start: "09:00", End: "17:00"}, at(20, 0), false},
		{"wrap before midnight", TimeWindow{Start: "22:00", End: "06:00"}, at(23, 30), true},
		{"wrap after midnight", TimeWindow{Start: "22:00", End: "06:00"}, at(2, 0), true},
		{"wrap outside", TimeWindow{Start: "22:00", End: "06:00"}, at(12, 0), false},
		{"equal endpoints cover all day", TimeWindow{Start: "08:00", End: "08:00"}, at(3, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.Contains(tt.time); got != tt.want {
				t.Errorf("Contains = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeWindowValidate(t *testing.T) {
	if err := (TimeWindow{Start: "22:00", End: "06:00"}).Validate(); err != nil {
		t.Errorf("valid window rejected: %v", err)
	}
	if err := (TimeWindow{Start: "25:00", End: "06:00"}).Validate(); err == nil {
		t.Error("expected error for hour out of range")
	}
	if err := (TimeWindow{Start: "22:00", End: "six"}).Validate(); err == nil {
		t.Error("expected error for non-numeric end")
	}
}

func TestScenarioConfigHasFence(t *testing.T) {
	cfg := ScenarioConfig{Scenario: ScenarioMusic}
	if cfg.HasFence() {
		t.Error("config without fence must not report one")
	}

	cfg.FenceSet = true
	cfg.RadiusMeters = -1
	if cfg.HasFence() {
		t.Error("negative radius means no fence")
	}

	cfg.RadiusMeters = 0
	if !cfg.HasFence() {
		t.Error("zero radius is still a fence")
	}
}

func TestScenarioConfigValidate(t *testing.T) {
	cfg := ScenarioConfig{Scenario: ScenarioMusic, FenceSet: true, Latitude: 49.8727, Longitude: 8.6312, RadiusMeters: 50}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	bad := cfg
	bad.Latitude = 95
	if err := bad.Validate(); err == nil {
		t.Error("expected error for latitude out of range")
	}

	bad = cfg
	bad.RadiusMeters = -2
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative radius with fence set")
	}
}
