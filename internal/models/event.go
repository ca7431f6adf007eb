package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes entries in the append-only event log.
type EventType string

const (
	// Activity events
	EventTypeActivityChanged EventType = "activity.changed"
	EventTypeActivityDropped EventType = "activity.dropped"

	// Geofence events
	EventTypeFenceEntered EventType = "fence.entered"
	EventTypeFenceExited  EventType = "fence.exited"

	// Scenario events
	EventTypeScenarioFired   EventType = "scenario.fired"
	EventTypeScenarioRearmed EventType = "scenario.rearmed"

	// System events
	EventTypeError EventType = "error"
)

// EntityType identifies the kind of entity an event relates to.
type EntityType string

const (
	EntityTypeScenario EntityType = "scenario"
	EntityTypeDevice   EntityType = "device"
	EntityTypeSystem   EntityType = "system"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity (a scenario name, or
	// "device" for raw update events).
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// ActivityChangedPayload is the payload for activity.changed events.
type ActivityChangedPayload struct {
	Previous   ActivityKind `json:"previous"`
	Current    ActivityKind `json:"current"`
	Confidence int          `json:"confidence"`
}

// ActivityDroppedPayload is the payload for activity.dropped events.
type ActivityDroppedPayload struct {
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}

// FenceTransitionPayload is the payload for fence.entered and fence.exited
// events.
type FenceTransitionPayload struct {
	Scenario       Scenario `json:"scenario"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	DistanceMeters float64  `json:"distance_meters"`
	RadiusMeters   int      `json:"radius_meters"`
}

// ScenarioFiredPayload is the payload for scenario.fired events.
type ScenarioFiredPayload struct {
	Scenario Scenario     `json:"scenario"`
	Activity ActivityKind `json:"activity"`
	Trigger  string       `json:"trigger"` // "location" or "activity"
}

// ScenarioRearmedPayload is the payload for scenario.rearmed events.
type ScenarioRearmedPayload struct {
	Scenario Scenario `json:"scenario"`
}

// ErrorPayload is the payload for error events.
type ErrorPayload struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}
