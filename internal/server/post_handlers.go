package server

import (
	"plateful/internal/cache"
	"plateful/internal/middleware"
	"plateful/internal/models"
	"plateful/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// Returns the in-memory feed sequence, newest-first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	return c.JSON(s.feed.Posts())
}

// GetPost handles GET /api/posts/:id
// Anonymous reads carry no per-viewer state and are served cache-aside;
// engagement writes invalidate the key. A failed load is never cached.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, ok := postIDParam(c)
	if !ok {
		return nil
	}
	viewer := middleware.ViewerFrom(c)

	if !viewer.Authenticated() {
		var post models.Post
		err := cache.Aside(c.UserContext(), cache.PostKey(postID), &post, cache.PostTTL, func() error {
			loaded, err := s.postService.GetPost(c.UserContext(), postID, "")
			if err != nil {
				return err
			}
			post = *loaded
			return nil
		})
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(post)
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, viewer.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// The calorie total is computed from the submitted item list; the stored
// value is immutable afterwards. Submission clears the viewer's draft slot.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	viewer := middleware.ViewerFrom(c)

	var body struct {
		Title    string                `json:"title"`
		Caption  string                `json:"caption"`
		ImageURL string                `json:"image_url"`
		MealType string                `json:"mealtype"`
		Tags     []string              `json:"tags"`
		Items    []service.CalorieItem `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   viewer.UserID,
		Title:    body.Title,
		Caption:  body.Caption,
		ImageURL: body.ImageURL,
		MealType: body.MealType,
		Tags:     body.Tags,
		Items:    body.Items,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	// The creator's own feed picks the post up immediately; the push event
	// reaches everyone else. AppendIfNew keeps the two paths from ever
	// duplicating the entry.
	s.feed.AppendIfNew(post)

	return c.Status(fiber.StatusCreated).JSON(post)
}
