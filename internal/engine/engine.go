// Package engine implements the scenario trigger engine: it consumes
// filtered activity and location events, maintains per-scenario geofence
// and trigger state, and dispatches scenario actions on qualifying edges.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/contextd-io/contextd/internal/actions"
	"github.com/contextd-io/contextd/internal/activity"
	"github.com/contextd-io/contextd/internal/events"
	"github.com/contextd-io/contextd/internal/geofence"
	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/models"
)

// Trigger edge names recorded in scenario.fired events.
const (
	TriggerLocation = "location"
	TriggerActivity = "activity"
)

// Store is the scenario state persistence the engine depends on.
type Store interface {
	Config(ctx context.Context, scenario models.Scenario) (models.ScenarioConfig, error)
	State(ctx context.Context, scenario models.Scenario) (models.ScenarioState, error)
	SetGeofenceEntered(ctx context.Context, scenario models.Scenario, entered bool) error
	SetTriggered(ctx context.Context, scenario models.Scenario, triggered bool) error
	CurrentActivity(ctx context.Context) (models.ActivityKind, error)
	SetCurrentActivity(ctx context.Context, kind models.ActivityKind) error
}

// Stats tracks engine activity counters.
type Stats struct {
	LocationFixes    int64
	ActivitySamples  int64
	SamplesDropped   int64
	FenceTransitions int64
	ScenariosFired   int64
	Errors           int64
}

// Engine serializes all event processing: one event is evaluated against
// every scenario before the next one starts, so cross-scenario state is
// always consistent within an event.
type Engine struct {
	store      Store
	eventRepo  events.Repository
	classifier *activity.Classifier
	registry   *actions.Registry
	logger     zerolog.Logger

	// now is the engine clock, swapped out in tests.
	now func() time.Time

	// mu serializes ProcessLocationBatch and ProcessActivityBatch.
	mu sync.Mutex

	statsMu sync.Mutex
	stats   Stats

	subMu       sync.RWMutex
	subscribers map[int]chan *models.Event
	nextSubID   int

	// Run-loop state
	runMu      sync.Mutex
	running    bool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	locationCh chan []models.LocationFix
	activityCh chan []models.ActivitySample
}

// New creates an Engine. The registry may be nil when no side effects are
// wanted (replays, dry runs); firings are still recorded.
func New(store Store, eventRepo events.Repository, registry *actions.Registry) *Engine {
	return &Engine{
		store:       store,
		eventRepo:   eventRepo,
		classifier:  activity.NewClassifier(),
		registry:    registry,
		logger:      logging.Component("engine"),
		now:         time.Now,
		subscribers: make(map[int]chan *models.Event),
		locationCh:  make(chan []models.LocationFix, 64),
		activityCh:  make(chan []models.ActivitySample, 64),
	}
}

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// Subscribe registers a listener for recorded events. The returned cancel
// function releases the subscription. Slow subscribers miss events rather
// than stalling the engine.
func (e *Engine) Subscribe(buffer int) (<-chan *models.Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan *models.Event, buffer)

	e.subMu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = ch
	e.subMu.Unlock()

	cancel := func() {
		e.subMu.Lock()
		if existing, ok := e.subscribers[id]; ok {
			delete(e.subscribers, id)
			close(existing)
		}
		e.subMu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) publish(event *models.Event) {
	e.subMu.RLock()
	defer e.subMu.RUnlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// publishingRepo wraps the event repository so helper functions in the
// events package hand back the stored event for broadcasting.
type publishingRepo struct {
	inner events.Repository
	last  *models.Event
}

func (p *publishingRepo) Append(ctx context.Context, event *models.Event) error {
	if err := p.inner.Append(ctx, event); err != nil {
		return err
	}
	p.last = event
	return nil
}

func (e *Engine) log(ctx context.Context, write func(repo events.Repository) error) {
	wrapped := &publishingRepo{inner: e.eventRepo}
	if err := write(wrapped); err != nil {
		e.logger.Error().Err(err).Msg("failed to record event")
		return
	}
	if wrapped.last != nil {
		e.publish(wrapped.last)
	}
}

func (e *Engine) countError() {
	e.statsMu.Lock()
	e.stats.Errors++
	e.statsMu.Unlock()
}

// ProcessLocationBatch evaluates a batch of position fixes, in delivery
// order, against every enabled scenario. Each fix is one atomic event.
func (e *Engine) ProcessLocationBatch(ctx context.Context, fixes []models.LocationFix) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, fix := range fixes {
		e.statsMu.Lock()
		e.stats.LocationFixes++
		e.statsMu.Unlock()

		if err := e.processFix(ctx, fix); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) processFix(ctx context.Context, fix models.LocationFix) error {
	if !fix.Valid() {
		e.logger.Warn().
			Float64("lat", fix.Latitude).
			Float64("lng", fix.Longitude).
			Msg("discarding implausible location fix")
		return nil
	}

	currentActivity, err := e.store.CurrentActivity(ctx)
	if err != nil {
		e.countError()
		return fmt.Errorf("failed to read current activity: %w", err)
	}

	for _, scenario := range models.AllScenarios() {
		e.evaluateFixForScenario(ctx, scenario, fix, currentActivity)
	}
	return nil
}

// evaluateFixForScenario applies one fix to one scenario. Persistence
// failures leave the scenario untouched for this event; the fence edge
// will be seen again on the next fix.
func (e *Engine) evaluateFixForScenario(ctx context.Context, scenario models.Scenario, fix models.LocationFix, currentActivity models.ActivityKind) {
	cfg, err := e.store.Config(ctx, scenario)
	if err != nil {
		e.recordError(ctx, fmt.Sprintf("loading %s config", scenario), err)
		return
	}
	if !cfg.Enabled {
		return
	}

	state, err := e.store.State(ctx, scenario)
	if err != nil {
		e.recordError(ctx, fmt.Sprintf("loading %s state", scenario), err)
		return
	}

	result := geofence.Evaluate(fix, cfg)
	wasInside := state.GeofenceEntered
	if result.Inside == wasInside {
		return
	}

	if err := e.store.SetGeofenceEntered(ctx, scenario, result.Inside); err != nil {
		e.recordError(ctx, fmt.Sprintf("persisting %s fence flag", scenario), err)
		return
	}

	e.statsMu.Lock()
	e.stats.FenceTransitions++
	e.statsMu.Unlock()

	transition := models.FenceTransitionPayload{
		Scenario:       scenario,
		Latitude:       fix.Latitude,
		Longitude:      fix.Longitude,
		DistanceMeters: result.DistanceMeters,
		RadiusMeters:   cfg.RadiusMeters,
	}

	if result.Inside {
		e.logger.Info().
			Str("scenario", string(scenario)).
			Float64("distance_m", result.DistanceMeters).
			Msg("geofence entered")
		e.log(ctx, func(repo events.Repository) error {
			return events.LogFenceEntered(ctx, repo, transition)
		})

		if !state.Triggered && currentActivity == cfg.TargetActivity && cfg.InWindow(fix.Time()) {
			e.fire(ctx, scenario, currentActivity, TriggerLocation)
		}
		return
	}

	e.logger.Info().
		Str("scenario", string(scenario)).
		Float64("distance_m", result.DistanceMeters).
		Msg("geofence exited")
	e.log(ctx, func(repo events.Repository) error {
		return events.LogFenceExited(ctx, repo, transition)
	})

	// Leaving the fence re-arms the scenario for its next entry.
	if state.Triggered {
		if err := e.store.SetTriggered(ctx, scenario, false); err != nil {
			e.recordError(ctx, fmt.Sprintf("re-arming %s", scenario), err)
			return
		}
		e.log(ctx, func(repo events.Repository) error {
			return events.LogScenarioRearmed(ctx, repo, scenario)
		})
	}
}

// ProcessActivityBatch runs a ranked activity result batch through the
// confidence filter and evaluates each accepted sample, in delivery order,
// against every enabled scenario. Each sample is one atomic event.
func (e *Engine) ProcessActivityBatch(ctx context.Context, samples []models.ActivitySample) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, sample := range samples {
		e.statsMu.Lock()
		e.stats.ActivitySamples++
		e.statsMu.Unlock()

		kind, ok := e.classifier.Accept(sample)
		if !ok {
			e.statsMu.Lock()
			e.stats.SamplesDropped++
			e.statsMu.Unlock()
			e.log(ctx, func(repo events.Repository) error {
				return events.LogActivityDropped(ctx, repo, sample.Confidence, "below confidence threshold or malformed")
			})
			continue
		}

		if err := e.processActivity(ctx, kind, sample.Confidence); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) processActivity(ctx context.Context, kind models.ActivityKind, confidence int) error {
	previous, err := e.store.CurrentActivity(ctx)
	if err != nil {
		e.countError()
		return fmt.Errorf("failed to read current activity: %w", err)
	}

	// Repeated reports of the held activity are no-ops end to end.
	if kind == previous {
		return nil
	}

	now := e.now()
	for _, scenario := range models.AllScenarios() {
		e.evaluateActivityForScenario(ctx, scenario, kind, now)
	}

	// The device activity is committed once, after every scenario saw the
	// transition against the previous value.
	if err := e.store.SetCurrentActivity(ctx, kind); err != nil {
		e.recordError(ctx, "persisting current activity", err)
		return nil
	}

	e.log(ctx, func(repo events.Repository) error {
		return events.LogActivityChanged(ctx, repo, previous, kind, confidence)
	})
	return nil
}

func (e *Engine) evaluateActivityForScenario(ctx context.Context, scenario models.Scenario, kind models.ActivityKind, now time.Time) {
	cfg, err := e.store.Config(ctx, scenario)
	if err != nil {
		e.recordError(ctx, fmt.Sprintf("loading %s config", scenario), err)
		return
	}
	if !cfg.Enabled || cfg.TargetActivity != kind {
		return
	}

	state, err := e.store.State(ctx, scenario)
	if err != nil {
		e.recordError(ctx, fmt.Sprintf("loading %s state", scenario), err)
		return
	}
	if !state.GeofenceEntered || state.Triggered || !cfg.InWindow(now) {
		return
	}

	e.fire(ctx, scenario, kind, TriggerActivity)
}

// fire commits the triggered flag and only then records the firing and
// dispatches the side effect. A failed commit means no firing happened.
func (e *Engine) fire(ctx context.Context, scenario models.Scenario, kind models.ActivityKind, trigger string) {
	if err := e.store.SetTriggered(ctx, scenario, true); err != nil {
		e.recordError(ctx, fmt.Sprintf("committing %s firing", scenario), err)
		return
	}

	e.statsMu.Lock()
	e.stats.ScenariosFired++
	e.statsMu.Unlock()

	e.logger.Info().
		Str("scenario", string(scenario)).
		Str("activity", string(kind)).
		Str("trigger", trigger).
		Msg("scenario fired")

	e.log(ctx, func(repo events.Repository) error {
		return events.LogScenarioFired(ctx, repo, scenario, kind, trigger)
	})

	if e.registry != nil {
		e.registry.Dispatch(ctx, scenario, actions.FireContext{
			Activity: kind,
			Trigger:  trigger,
			At:       e.now(),
		})
	}
}

func (e *Engine) recordError(ctx context.Context, errContext string, err error) {
	e.countError()
	e.logger.Error().Err(err).Str("context", errContext).Msg("engine error")
	e.log(ctx, func(repo events.Repository) error {
		return events.LogError(ctx, repo, errContext, err)
	})
}
