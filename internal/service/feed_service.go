package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"plateful/internal/models"
	"plateful/internal/observability"
	"plateful/internal/realtime"
	"plateful/internal/repository"
)

const defaultFeedSize = 50

// FeedService maintains the in-memory home feed: newest-first posts,
// initially populated by a full fetch and kept current by the push channel.
// The subscription is released via Close (or the context passed to Start) so
// a torn-down feed stops receiving events.
type FeedService struct {
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	notifier    *realtime.Notifier
	hub         *realtime.Hub
	logger      *slog.Logger

	mu     sync.RWMutex
	posts  []*models.Post
	cancel context.CancelFunc
}

// NewFeedService creates a FeedService. hub may be nil when no WebSocket
// fanout is wanted.
func NewFeedService(
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	notifier *realtime.Notifier,
	hub *realtime.Hub,
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		hub:         hub,
		logger:      slog.Default(),
	}
}

// Load populates the feed with a full fetch, newest-first.
func (s *FeedService) Load(ctx context.Context) error {
	posts, err := s.postRepo.List(ctx, defaultFeedSize, 0, "")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	return nil
}

// Posts returns a snapshot copy of the current feed sequence.
func (s *FeedService) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Start subscribes to the push channel for new-post events. The subscription
// lives until Close is called or ctx is cancelled.
func (s *FeedService) Start(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	return s.notifier.SubscribePostInserts(subCtx, s.handleInsert)
}

// Close releases the push subscription.
func (s *FeedService) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// handleInsert maps a push event into the feed's post shape and merges it.
// The event payload has no joined profile, so the author is fetched here.
func (s *FeedService) handleInsert(ev realtime.PostInsertedEvent) {
	post := &models.Post{
		ID:        ev.ID,
		Title:     ev.Title,
		Caption:   ev.Caption,
		ImageURL:  ev.ImageURL,
		Calories:  ev.Calories,
		Tags:      ev.Tags,
		MealType:  ev.MealType,
		UserID:    ev.UserID,
		CreatedAt: ev.CreatedAt,
	}

	profile, err := s.profileRepo.GetByUserID(context.Background(), ev.UserID)
	if err != nil {
		// Merge anyway; the author block stays empty rather than dropping
		// the post from the feed.
		s.logger.Warn("feed insert: author profile fetch failed",
			slog.String("post_id", ev.ID),
			slog.String("user_id", ev.UserID),
			slog.String("error", err.Error()),
		)
	} else {
		post.User = *profile
	}

	if !s.AppendIfNew(post) {
		observability.FeedEventsApplied.WithLabelValues("deduped").Inc()
		return
	}
	observability.FeedEventsApplied.WithLabelValues("applied").Inc()

	if s.hub != nil {
		if payload, err := json.Marshal(map[string]any{
			"type": "post_inserted",
			"post": post,
		}); err == nil {
			s.hub.BroadcastAll(payload)
		}
	}
}

// AppendIfNew prepends the post to the feed unless a post with the same id is
// already present. It reports whether the post was applied; the operation is
// idempotent per post identifier.
func (s *FeedService) AppendIfNew(post *models.Post) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, applied := mergeIfNew(s.posts, post)
	s.posts = merged
	return applied
}

// mergeIfNew is the pure merge behind AppendIfNew: the returned sequence
// never contains two entries with the same identifier.
func mergeIfNew(posts []*models.Post, post *models.Post) ([]*models.Post, bool) {
	for _, p := range posts {
		if p.ID == post.ID {
			return posts, false
		}
	}
	merged := make([]*models.Post, 0, len(posts)+1)
	merged = append(merged, post)
	merged = append(merged, posts...)
	return merged, true
}
