// Package api exposes the contextd ingest and status HTTP API. Providers
// push activity and location batches in; dashboards read scenario state and
// follow the event stream over a websocket.
package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/contextd-io/contextd/internal/db"
	"github.com/contextd-io/contextd/internal/engine"
	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/scenario"
)

// Server is the contextd HTTP API server.
type Server struct {
	app       *fiber.App
	engine    *engine.Engine
	reader    scenario.Reader
	eventRepo *db.EventRepository
	logger    zerolog.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(eng *engine.Engine, reader scenario.Reader, eventRepo *db.EventRepository) *Server {
	s := &Server{
		engine:    eng,
		reader:    reader,
		eventRepo: eventRepo,
		logger:    logging.Component("api"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "contextd",
		DisableStartupMessage: true,
	})

	v1 := app.Group("/v1")
	v1.Post("/activity", s.handleActivity)
	v1.Post("/location", s.handleLocation)
	v1.Get("/status", s.handleStatus)
	v1.Get("/scenarios", s.handleScenarios)
	v1.Get("/events", s.handleEvents)

	v1.Use("/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	v1.Get("/stream", websocket.New(s.handleStream))

	s.app = app
	return s
}

// App returns the underlying fiber application, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves the API on the given address until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("api listening")
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
