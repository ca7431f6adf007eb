// Package events provides helper functions for recording contextd events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/contextd-io/contextd/internal/models"
)

// DeviceEntityID is the entity ID used for device-wide events.
const DeviceEntityID = "device"

// Repository is the minimal interface needed to write events.
type Repository interface {
	Append(ctx context.Context, event *models.Event) error
}

func appendEvent(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return repo.Append(ctx, &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    data,
	})
}

// LogActivityChanged records a device activity transition.
func LogActivityChanged(ctx context.Context, repo Repository, previous, current models.ActivityKind, confidence int) error {
	if current == "" {
		return fmt.Errorf("current activity is required")
	}
	return appendEvent(ctx, repo, models.EventTypeActivityChanged, models.EntityTypeDevice, DeviceEntityID,
		models.ActivityChangedPayload{
			Previous:   previous,
			Current:    current,
			Confidence: confidence,
		})
}

// LogActivityDropped records a rejected activity sample.
func LogActivityDropped(ctx context.Context, repo Repository, confidence int, reason string) error {
	return appendEvent(ctx, repo, models.EventTypeActivityDropped, models.EntityTypeDevice, DeviceEntityID,
		models.ActivityDroppedPayload{
			Confidence: confidence,
			Reason:     reason,
		})
}

// LogFenceEntered records a geofence entry for a scenario.
func LogFenceEntered(ctx context.Context, repo Repository, payload models.FenceTransitionPayload) error {
	if payload.Scenario == "" {
		return fmt.Errorf("scenario is required")
	}
	return appendEvent(ctx, repo, models.EventTypeFenceEntered, models.EntityTypeScenario, string(payload.Scenario), payload)
}

// LogFenceExited records a geofence exit for a scenario.
func LogFenceExited(ctx context.Context, repo Repository, payload models.FenceTransitionPayload) error {
	if payload.Scenario == "" {
		return fmt.Errorf("scenario is required")
	}
	return appendEvent(ctx, repo, models.EventTypeFenceExited, models.EntityTypeScenario, string(payload.Scenario), payload)
}

// LogScenarioFired records a committed scenario firing.
func LogScenarioFired(ctx context.Context, repo Repository, scenario models.Scenario, activity models.ActivityKind, trigger string) error {
	if scenario == "" {
		return fmt.Errorf("scenario is required")
	}
	return appendEvent(ctx, repo, models.EventTypeScenarioFired, models.EntityTypeScenario, string(scenario),
		models.ScenarioFiredPayload{
			Scenario: scenario,
			Activity: activity,
			Trigger:  trigger,
		})
}

// LogScenarioRearmed records that a scenario is armed for its next firing.
func LogScenarioRearmed(ctx context.Context, repo Repository, scenario models.Scenario) error {
	if scenario == "" {
		return fmt.Errorf("scenario is required")
	}
	return appendEvent(ctx, repo, models.EventTypeScenarioRearmed, models.EntityTypeScenario, string(scenario),
		models.ScenarioRearmedPayload{Scenario: scenario})
}

// LogError records a processing error.
func LogError(ctx context.Context, repo Repository, errContext string, err error) error {
	if err == nil {
		return fmt.Errorf("error is required")
	}
	return appendEvent(ctx, repo, models.EventTypeError, models.EntityTypeSystem, "contextd",
		models.ErrorPayload{
			Error:   err.Error(),
			Context: errContext,
		})
}
