package server

import (
	"log"

	"plateful/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedWebSocketUpgrade gates /ws/feed to real upgrade requests and stashes
// the resolved viewer id for the websocket handler.
func (s *Server) FeedWebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	viewer := middleware.ViewerFrom(c)
	c.Locals("viewerID", viewer.UserID)
	return c.Next()
}

// FeedWebSocketHandler registers upgraded connections with the feed hub. The
// connection is unregistered when the read pump exits, so a torn-down view
// stops receiving feed events.
func (s *Server) FeedWebSocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("viewerID").(string)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("feed ws: registration rejected: %v", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
