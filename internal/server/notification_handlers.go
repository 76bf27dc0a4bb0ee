package server

import (
	"plateful/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"notifications": s.center.List(),
		"unread_count":  s.center.UnreadCount(),
	})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
// The transition is one-directional; re-marking a read notification is a no-op.
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.center.MarkRead(id) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Notification", id))
	}
	return c.JSON(fiber.Map{"unread_count": s.center.UnreadCount()})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	s.center.MarkAllRead()
	return c.JSON(fiber.Map{"unread_count": 0})
}
