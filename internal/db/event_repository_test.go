package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/contextd-io/contextd/internal/models"
)

func appendTestEvent(t *testing.T, repo *EventRepository, eventType models.EventType, entityID string, ts time.Time) *models.Event {
	t.Helper()

	payload, err := json.Marshal(models.ScenarioFiredPayload{
		Scenario: models.ScenarioHome,
		Activity: models.ActivityStill,
		Trigger:  "location",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	event := &models.Event{
		Timestamp:  ts,
		Type:       eventType,
		EntityType: models.EntityTypeScenario,
		EntityID:   entityID,
		Payload:    payload,
	}
	if err := repo.Append(context.Background(), event); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return event
}

func TestEventRepository_AppendAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewEventRepository(testDB)

	event := appendTestEvent(t, repo, models.EventTypeScenarioFired, "home", time.Now().UTC())
	if event.ID == "" {
		t.Fatal("expected Append to assign an ID")
	}

	retrieved, err := repo.Get(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.Type != models.EventTypeScenarioFired {
		t.Errorf("type = %s, want %s", retrieved.Type, models.EventTypeScenarioFired)
	}
	if retrieved.EntityID != "home" {
		t.Errorf("entity_id = %s, want home", retrieved.EntityID)
	}

	var payload models.ScenarioFiredPayload
	if err := json.Unmarshal(retrieved.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Scenario != models.ScenarioHome || payload.Trigger != "location" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestEventRepository_AppendRejectsInvalid(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewEventRepository(testDB)

	err := repo.Append(context.Background(), &models.Event{Type: models.EventTypeScenarioFired})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("error = %v, want ErrInvalidEvent", err)
	}
}

func TestEventRepository_GetNotFound(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewEventRepository(testDB)

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("error = %v, want ErrEventNotFound", err)
	}
}

func TestEventRepository_QueryFilters(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewEventRepository(testDB)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendTestEvent(t, repo, models.EventTypeFenceEntered, "home", base)
	appendTestEvent(t, repo, models.EventTypeScenarioFired, "home", base.Add(time.Second))
	appendTestEvent(t, repo, models.EventTypeScenarioFired, "music", base.Add(2*time.Second))

	fired := models.EventTypeScenarioFired
	page, err := repo.Query(context.Background(), EventQuery{Type: &fired})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(page.Events))
	}

	entityID := "home"
	page, err = repo.Query(context.Background(), EventQuery{EntityID: &entityID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("got %d home events, want 2", len(page.Events))
	}

	since := base.Add(time.Second)
	until := base.Add(2 * time.Second)
	page, err = repo.Query(context.Background(), EventQuery{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page.Events) != 1 || page.Events[0].Type != models.EventTypeScenarioFired {
		t.Fatalf("time-bounded query = %v", page.Events)
	}
}

func TestEventRepository_QueryPagination(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewEventRepository(testDB)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		appendTestEvent(t, repo, models.EventTypeFenceEntered, "home", base.Add(time.Duration(i)*time.Second))
	}

	page, err := repo.Query(context.Background(), EventQuery{Limit: 3})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page.Events) != 3 {
		t.Fatalf("first page has %d events, want 3", len(page.Events))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}

	page2, err := repo.Query(context.Background(), EventQuery{Limit: 3, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page2.Events) != 2 {
		t.Fatalf("second page has %d events, want 2", len(page2.Events))
	}
	if page2.NextCursor != "" {
		t.Errorf("unexpected next cursor %q on final page", page2.NextCursor)
	}
}

func TestEventRepository_ListRecent(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewEventRepository(testDB)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendTestEvent(t, repo, models.EventTypeFenceEntered, "home", base)
	appendTestEvent(t, repo, models.EventTypeScenarioFired, "home", base.Add(time.Second))

	events, err := repo.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != models.EventTypeScenarioFired {
		t.Errorf("newest first: got %s", events[0].Type)
	}
}
