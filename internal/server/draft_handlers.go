package server

import (
	"plateful/internal/middleware"
	"plateful/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetDraft handles GET /api/draft
// Restores the viewer's draft slot; an absent or malformed slot yields an
// empty composition rather than an error.
func (s *Server) GetDraft(c *fiber.Ctx) error {
	viewer := middleware.ViewerFrom(c)
	d, found, err := s.drafts.Load(viewer.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"draft": d,
		"found": found,
	})
}

// SaveDraft handles PUT /api/draft
// Overwrites the single draft slot; last write wins.
func (s *Server) SaveDraft(c *fiber.Ctx) error {
	viewer := middleware.ViewerFrom(c)

	var d models.Draft
	if err := c.BodyParser(&d); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid draft body"))
	}

	if err := s.drafts.Save(viewer.UserID, d); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"saved": true})
}

// ClearDraft handles DELETE /api/draft
func (s *Server) ClearDraft(c *fiber.Ctx) error {
	viewer := middleware.ViewerFrom(c)
	if err := s.drafts.Clear(viewer.UserID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"cleared": true})
}
