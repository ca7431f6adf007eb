package api

import (
	"github.com/gofiber/contrib/websocket"
)

// handleStream streams recorded events to a websocket client as JSON, one
// message per event, until the client disconnects.
func (s *Server) handleStream(c *websocket.Conn) {
	events, cancel := s.engine.Subscribe(64)
	defer cancel()

	s.logger.Debug().Str("remote", c.RemoteAddr().String()).Msg("stream client connected")
	defer s.logger.Debug().Str("remote", c.RemoteAddr().String()).Msg("stream client disconnected")

	// The read loop only watches for the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
