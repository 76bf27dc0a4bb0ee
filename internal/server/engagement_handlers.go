package server

import (
	"errors"

	"plateful/internal/cache"
	"plateful/internal/middleware"
	"plateful/internal/models"
	"plateful/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetEngagement handles GET /api/posts/:id/engagement
// Returns the post's like count, the viewer's like state, and comments
// newest-first. Counts are public; the viewer flag needs a session. Anonymous
// reads are served cache-aside since they carry no per-viewer state; writes
// invalidate the key.
func (s *Server) GetEngagement(c *fiber.Ctx) error {
	postID, ok := postIDParam(c)
	if !ok {
		return nil
	}
	viewer := middleware.ViewerFrom(c)

	if !viewer.Authenticated() {
		var eng service.Engagement
		// A degraded load reports an error, so the zeroed aggregate is
		// served to this request without being cached.
		_ = cache.Aside(c.UserContext(), cache.EngagementKey(postID), &eng, cache.EngagementTTL, func() error {
			var loadErr error
			eng, loadErr = s.engagement.Load(c.UserContext(), postID, "")
			return loadErr
		})
		return c.JSON(eng)
	}

	eng, _ := s.engagement.Load(c.UserContext(), postID, viewer.UserID)
	return c.JSON(eng)
}

// ToggleLike handles POST /api/posts/:id/like
// Toggles the viewer's like with optimistic semantics: while a previous
// toggle for this post is still in flight the request is ignored and the
// current view is returned unchanged.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, ok := postIDParam(c)
	if !ok {
		return nil
	}
	viewer := middleware.ViewerFrom(c)

	status, err := s.engagement.ToggleLike(c.UserContext(), viewer.UserID, postID)
	if err != nil {
		if errors.Is(err, service.ErrToggleInFlight) {
			return c.Status(fiber.StatusAccepted).JSON(status)
		}
		return respondServiceError(c, err)
	}
	return c.JSON(status)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, ok := postIDParam(c)
	if !ok {
		return nil
	}
	comments, err := s.commentRepo.ListByPost(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if comments == nil {
		comments = make([]*models.Comment, 0)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
// On success the full re-fetched comment list is returned; its length is the
// new displayed count. On a rejected insert the response carries the
// submitted text back so the client can restore the input field.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, ok := postIDParam(c)
	if !ok {
		return nil
	}
	viewer := middleware.ViewerFrom(c)

	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comments, err := s.engagement.SubmitComment(c.UserContext(), viewer, postID, body.Content)
	if err != nil {
		var rejected *service.CommentRejectedError
		if errors.As(err, &rejected) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":         "Comment could not be saved",
				"restored_text": rejected.Text,
			})
		}
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"comments":      comments,
		"comment_count": len(comments),
	})
}
