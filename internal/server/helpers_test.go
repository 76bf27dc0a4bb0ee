package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plateful/internal/cache"
	"plateful/internal/database"
	"plateful/internal/draft"
	"plateful/internal/identity"
	"plateful/internal/middleware"
	"plateful/internal/models"
	"plateful/internal/realtime"
	"plateful/internal/repository"
	"plateful/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// useTestRedis points the cache package at a fresh miniredis for the test.
func useTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(c)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = c.Close()
	})
	return mr
}

// newTestServer builds a Server on an isolated in-memory database with an
// in-process draft store and no Redis, and a Fiber app with the API routes
// wired the way SetupRoutes does (minus metrics and rate limiting).
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := database.OpenTest()
	require.NoError(t, err)

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	notifier := realtime.NewNotifier(nil)
	center := service.NewNotificationCenter()

	s := &Server{
		db:          db,
		identities:  identity.NewProvider(testSecret),
		postRepo:    postRepo,
		commentRepo: commentRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		hub:         realtime.NewHub(),
		drafts:      draft.NewMemoryStore(),
		center:      center,
		postService: service.NewPostService(postRepo, notifier, draft.NewMemoryStore()),
		engagement:  service.NewEngagementService(postRepo, commentRepo, profileRepo, center),
		feed:        service.NewFeedService(postRepo, profileRepo, notifier, nil),
	}

	app := fiber.New()
	app.Use(middleware.AuthOptional(s.identities))

	api := app.Group("/api")
	api.Get("/feed", s.GetFeed)
	api.Get("/posts/:id/engagement", s.GetEngagement)
	api.Get("/posts/:id/comments", s.GetComments)
	api.Get("/posts/:id", s.GetPost)

	protected := api.Group("", middleware.AuthRequired(s.identities))
	protected.Post("/posts", s.CreatePost)
	protected.Post("/posts/:id/like", s.ToggleLike)
	protected.Post("/posts/:id/comments", s.CreateComment)
	protected.Get("/draft", s.GetDraft)
	protected.Put("/draft", s.SaveDraft)
	protected.Delete("/draft", s.ClearDraft)
	protected.Get("/notifications", s.GetNotifications)
	protected.Post("/notifications/read-all", s.MarkAllNotificationsRead)
	protected.Post("/notifications/:id/read", s.MarkNotificationRead)

	return s, app
}

func signTestToken(t *testing.T, s *Server, userID string) string {
	t.Helper()
	token, err := s.identities.SignToken(identity.Identity{UserID: userID, Username: userID})
	require.NoError(t, err)
	return token
}

func seedTestProfile(t *testing.T, db *gorm.DB, userID, username string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Profile{
		UserID:      userID,
		Username:    username,
		DisplayName: username,
	}).Error)
}

func seedTestPost(t *testing.T, db *gorm.DB, id, userID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Post{
		ID:        id,
		Title:     "Test Meal",
		UserID:    userID,
		CreatedAt: time.Now(),
	}).Error)
}

func jsonRequest(method, target, token string, body any) *http.Request {
	var buf io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
