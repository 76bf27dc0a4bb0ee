package server

import (
	"errors"

	"plateful/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondServiceError maps service-layer errors onto HTTP responses.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "AUTH_REQUIRED":
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", c.Params("id")))
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

// postIDParam extracts the :id route parameter. Post ids are opaque strings;
// only presence is validated.
func postIDParam(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if id == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
		return "", false
	}
	return id, true
}
