package replay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contextd-io/contextd/internal/models"
)

func musicFixture() *Fixture {
	return &Fixture{
		Description:   "two laps around the running spot",
		StartActivity: models.ActivityRunning,
		Scenarios: []FixtureScenario{{
			Scenario:       models.ScenarioMusic,
			Enabled:        true,
			Fence:          &FixtureFence{Latitude: 49.8727, Longitude: 8.6312, RadiusMeters: 50},
			TargetActivity: models.ActivityRunning,
		}},
		Steps: []Step{
			{Locations: []models.LocationFix{{Latitude: 49.8727, Longitude: 8.6312}}},
			{Locations: []models.LocationFix{{Latitude: 49.8737, Longitude: 8.6312}}},
			{Locations: []models.LocationFix{{Latitude: 49.8727, Longitude: 8.6312}}},
		},
	}
}

func TestHarness_RunFiresPerEntry(t *testing.T) {
	harness := NewHarness()

	result, err := harness.Run(context.Background(), musicFixture())
	require.NoError(t, err)

	require.Equal(t, 3, result.Summary.Steps)
	require.Equal(t, 2, result.Summary.Fired[models.ScenarioMusic])
	require.Equal(t, 2, result.Summary.EventCounts[models.EventTypeFenceEntered])
	require.Equal(t, 1, result.Summary.EventCounts[models.EventTypeFenceExited])
	require.Equal(t, 1, result.Summary.EventCounts[models.EventTypeScenarioRearmed])

	// Per-step attribution: entry fires, exit re-arms, entry fires again.
	require.Len(t, result.Steps[0].Events, 2)
	require.Equal(t, models.EventTypeFenceEntered, result.Steps[0].Events[0].Type)
	require.Equal(t, models.EventTypeScenarioFired, result.Steps[0].Events[1].Type)
	require.Len(t, result.Steps[1].Events, 2)
	require.Len(t, result.Steps[2].Events, 2)
}

func TestHarness_RunLeavesFinalState(t *testing.T) {
	harness := NewHarness()

	result, err := harness.Run(context.Background(), musicFixture())
	require.NoError(t, err)

	var music *models.ScenarioStatus
	for i := range result.Summary.FinalStatuses {
		if result.Summary.FinalStatuses[i].Config.Scenario == models.ScenarioMusic {
			music = &result.Summary.FinalStatuses[i]
		}
	}
	require.NotNil(t, music)
	require.True(t, music.State.GeofenceEntered)
	require.True(t, music.State.Triggered)
	require.Equal(t, int64(3), result.Summary.Stats.LocationFixes)
}

func TestHarness_ActivitySteps(t *testing.T) {
	fixture := &Fixture{
		StartActivity: models.ActivityWalking,
		Scenarios: []FixtureScenario{{
			Scenario:       models.ScenarioWarning,
			Enabled:        true,
			Fence:          &FixtureFence{Latitude: 49.8727, Longitude: 8.6312, RadiusMeters: 50},
			TargetActivity: models.ActivityStill,
		}},
		Steps: []Step{
			{Locations: []models.LocationFix{{Latitude: 49.8727, Longitude: 8.6312}}},
			{Activities: []models.ActivitySample{{Kind: models.ActivityStill, Confidence: 70}}},
			{Activities: []models.ActivitySample{{Kind: models.ActivityStill, Confidence: 71}}},
		},
	}

	result, err := NewHarness().Run(context.Background(), fixture)
	require.NoError(t, err)

	require.Equal(t, 1, result.Summary.Fired[models.ScenarioWarning])
	require.Equal(t, 1, result.Summary.EventCounts[models.EventTypeActivityDropped])
	require.Equal(t, models.EventTypeScenarioFired, result.Steps[2].Events[0].Type)
}

func TestHarness_RejectsInvalidFixture(t *testing.T) {
	_, err := NewHarness().Run(context.Background(), &Fixture{Steps: []Step{{}}})
	require.Error(t, err)
}
