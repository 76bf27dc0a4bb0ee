// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"plateful/internal/cache"
	"plateful/internal/config"
	"plateful/internal/database"
	"plateful/internal/draft"
	"plateful/internal/identity"
	"plateful/internal/middleware"
	"plateful/internal/observability"
	"plateful/internal/realtime"
	"plateful/internal/repository"
	"plateful/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	identities     *identity.Provider

	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	profileRepo repository.ProfileRepository

	notifier *realtime.Notifier
	hub      *realtime.Hub

	drafts        draft.Store
	center        *service.NotificationCenter
	postService   *service.PostService
	engagement    *service.EngagementService
	feed          *service.FeedService
	feedCancel    context.CancelFunc
	tracingCloser func(context.Context) error
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	drafts, err := draft.NewFileStore(cfg.DraftDir)
	if err != nil {
		return nil, fmt.Errorf("draft store init failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, drafts)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, drafts draft.Store) (*Server, error) {
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	prom := observability.InitMetrics("plateful-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		identities:     identity.NewProvider(cfg.JWTSecret),
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		profileRepo:    profileRepo,
		drafts:         drafts,
		center:         service.NewNotificationCenter(),
	}

	server.notifier = realtime.NewNotifier(redisClient)
	server.hub = realtime.NewHub()
	server.postService = service.NewPostService(postRepo, server.notifier, drafts)
	server.engagement = service.NewEngagementService(postRepo, commentRepo, profileRepo, server.center)
	server.feed = service.NewFeedService(postRepo, profileRepo, server.notifier, server.hub)

	return server, nil
}

// Start loads the feed and attaches the push subscription.
func (s *Server) Start(ctx context.Context) error {
	if err := s.feed.Load(ctx); err != nil {
		return fmt.Errorf("initial feed load failed: %w", err)
	}

	feedCtx, cancel := context.WithCancel(ctx)
	s.feedCancel = cancel
	if err := s.feed.Start(feedCtx); err != nil {
		cancel()
		return fmt.Errorf("feed subscription failed: %w", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "plateful-api",
		ServiceVersion: "1.0.0",
		Environment:    s.config.Env,
		Enabled:        s.config.TracingEnabled,
	})
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	s.tracingCloser = shutdownTracing

	return nil
}

// Shutdown releases the push subscription, the hub, and the tracer.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.feedCancel != nil {
		s.feedCancel()
	}
	s.feed.Close()
	if err := s.hub.Shutdown(ctx); err != nil {
		return err
	}
	if s.tracingCloser != nil {
		return s.tracingCloser(ctx)
	}
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Resolve the viewer identity when a token is present; most reads are public.
	app.Use(middleware.AuthOptional(s.identities))

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Public feed and engagement reads (counts are public)
	api.Get("/feed", s.GetFeed)
	posts := api.Group("/posts")
	posts.Get("/:id/engagement", s.GetEngagement)
	posts.Get("/:id/comments", s.GetComments)
	posts.Get("/:id", s.GetPost)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired(s.identities))

	protectedPosts := protected.Group("/posts")
	protectedPosts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	protectedPosts.Post("/:id/like", s.ToggleLike)
	protectedPosts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)

	// Draft slot
	protected.Get("/draft", s.GetDraft)
	protected.Put("/draft", s.SaveDraft)
	protected.Delete("/draft", s.ClearDraft)

	// Local notification center
	notifications := protected.Group("/notifications")
	notifications.Get("/", s.GetNotifications)
	notifications.Post("/read-all", s.MarkAllNotificationsRead)
	notifications.Post("/:id/read", s.MarkNotificationRead)

	// Feed websocket: anonymous viewers may watch the feed too
	app.Get("/ws/feed", s.FeedWebSocketUpgrade, s.FeedWebSocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The push channel needs Redis; without it the feed goes stale.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
