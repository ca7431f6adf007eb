package replay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/contextd-io/contextd/internal/db"
	"github.com/contextd-io/contextd/internal/engine"
	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/models"
	"github.com/contextd-io/contextd/internal/scenario"
)

// StepResult holds the events recorded while processing one step.
type StepResult struct {
	Index  int
	Events []*models.Event
}

// Summary aggregates the outcome of a replay run.
type Summary struct {
	Steps         int
	EventCounts   map[models.EventType]int
	Fired         map[models.Scenario]int
	FinalStatuses []models.ScenarioStatus
	Stats         engine.Stats
}

// Result is the full outcome of a replay run.
type Result struct {
	Description string
	Steps       []StepResult
	Summary     Summary
}

// Harness drives a fixture through a fresh engine.
type Harness struct {
	logger zerolog.Logger
}

// NewHarness creates a replay harness.
func NewHarness() *Harness {
	return &Harness{logger: logging.Component("replay")}
}

// Run replays a fixture against a fresh in-memory database and returns the
// per-step events and the aggregate summary.
func (h *Harness) Run(ctx context.Context, fixture *Fixture) (*Result, error) {
	if err := fixture.Validate(); err != nil {
		return nil, err
	}

	database, err := db.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open replay database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate replay database: %w", err)
	}

	store := scenario.NewStore(database)
	if err := h.applySetup(ctx, store, fixture); err != nil {
		return nil, err
	}

	// No action registry: replays must never reach the host system.
	eng := engine.New(store, db.NewEventRepository(database), nil)

	// Processing is synchronous, so every event a step records is in the
	// channel before the next step starts.
	eventCh, cancel := eng.Subscribe(4096)
	defer cancel()

	result := &Result{Description: fixture.Description}
	for i, step := range fixture.Steps {
		if len(step.Locations) > 0 {
			err = eng.ProcessLocationBatch(ctx, step.Locations)
		} else {
			err = eng.ProcessActivityBatch(ctx, step.Activities)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d failed: %w", i, err)
		}

		result.Steps = append(result.Steps, StepResult{Index: i, Events: drain(eventCh)})
	}

	statuses, err := store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final statuses: %w", err)
	}

	result.Summary = summarize(result.Steps, statuses, eng.Stats())
	h.logger.Info().
		Int("steps", result.Summary.Steps).
		Int("fired", result.Summary.EventCounts[models.EventTypeScenarioFired]).
		Msg("replay complete")
	return result, nil
}

func (h *Harness) applySetup(ctx context.Context, store *scenario.Store, fixture *Fixture) error {
	for _, sc := range fixture.Scenarios {
		if sc.Fence != nil {
			if err := store.SetFence(ctx, sc.Scenario, sc.Fence.Latitude, sc.Fence.Longitude, sc.Fence.RadiusMeters); err != nil {
				return fmt.Errorf("failed to set %s fence: %w", sc.Scenario, err)
			}
		}
		if sc.TargetActivity != "" {
			if err := store.SetTargetActivity(ctx, sc.Scenario, sc.TargetActivity); err != nil {
				return fmt.Errorf("failed to set %s target activity: %w", sc.Scenario, err)
			}
		}
		if sc.Window != nil {
			if err := store.SetWindow(ctx, sc.Scenario, sc.Window); err != nil {
				return fmt.Errorf("failed to set %s window: %w", sc.Scenario, err)
			}
		}
		if err := store.SetEnabled(ctx, sc.Scenario, sc.Enabled); err != nil {
			return fmt.Errorf("failed to enable %s: %w", sc.Scenario, err)
		}
	}
	if fixture.StartActivity != "" {
		if err := store.SetCurrentActivity(ctx, fixture.StartActivity); err != nil {
			return fmt.Errorf("failed to set start activity: %w", err)
		}
	}
	return nil
}

func drain(ch <-chan *models.Event) []*models.Event {
	var events []*models.Event
	for {
		select {
		case event := <-ch:
			events = append(events, event)
		default:
			return events
		}
	}
}

func summarize(steps []StepResult, statuses []models.ScenarioStatus, stats engine.Stats) Summary {
	summary := Summary{
		Steps:         len(steps),
		EventCounts:   make(map[models.EventType]int),
		Fired:         make(map[models.Scenario]int),
		FinalStatuses: statuses,
		Stats:         stats,
	}
	for _, step := range steps {
		for _, event := range step.Events {
			summary.EventCounts[event.Type]++
			if event.Type == models.EventTypeScenarioFired {
				summary.Fired[models.Scenario(event.EntityID)]++
			}
		}
	}
	return summary
}
