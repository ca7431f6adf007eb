package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/contextd-io/contextd/internal/db"
	"github.com/contextd-io/contextd/internal/models"
)

// ActivityRequest is the body of POST /v1/activity.
type ActivityRequest struct {
	Samples []models.ActivitySample `json:"samples"`
}

// LocationRequest is the body of POST /v1/location.
type LocationRequest struct {
	Fixes []models.LocationFix `json:"fixes"`
}

// handleActivity ingests a ranked activity result batch. The request
// returns once the whole batch has been evaluated, which gives providers
// natural backpressure.
func (s *Server) handleActivity(c *fiber.Ctx) error {
	var req ActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(req.Samples) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "samples must not be empty"})
	}

	if err := s.engine.ProcessActivityBatch(c.Context(), req.Samples); err != nil {
		s.logger.Error().Err(err).Msg("activity batch failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"processed": len(req.Samples)})
}

// handleLocation ingests a batch of position fixes.
func (s *Server) handleLocation(c *fiber.Ctx) error {
	var req LocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(req.Fixes) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "fixes must not be empty"})
	}

	if err := s.engine.ProcessLocationBatch(c.Context(), req.Fixes); err != nil {
		s.logger.Error().Err(err).Msg("location batch failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"processed": len(req.Fixes)})
}

// handleStatus reports the device activity and engine counters.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	current, err := s.reader.CurrentActivity(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"current_activity": current,
		"stats":            s.engine.Stats(),
	})
}

// handleScenarios reports configuration and runtime state of every scenario.
func (s *Server) handleScenarios(c *fiber.Ctx) error {
	statuses, err := s.reader.Snapshot(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"scenarios": statuses})
}

// handleEvents queries the event log with optional filters and cursor
// pagination.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	query := db.EventQuery{
		Cursor: c.Query("cursor"),
		Limit:  c.QueryInt("limit", 50),
	}

	if raw := c.Query("type"); raw != "" {
		eventType := models.EventType(raw)
		query.Type = &eventType
	}
	if raw := c.Query("entity"); raw != "" {
		entity := raw
		query.EntityID = &entity
	}
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "since must be RFC3339"})
		}
		query.Since = &t
	}
	if raw := c.Query("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "until must be RFC3339"})
		}
		query.Until = &t
	}

	page, err := s.eventRepo.Query(c.Context(), query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"events":      page.Events,
		"next_cursor": page.NextCursor,
	})
}
