// Package service implements the feed and engagement consistency logic on top
// of the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"plateful/internal/identity"
	"plateful/internal/models"
	"plateful/internal/observability"
	"plateful/internal/repository"
)

// LikePhase is the per-(post, viewer) state of the like toggle machine.
type LikePhase int

const (
	// LikeUnliked: no like relation exists and nothing is in flight.
	LikeUnliked LikePhase = iota
	// LikeLiked: the like relation exists and nothing is in flight.
	LikeLiked
	// LikeLiking: an optimistic transition to Liked awaiting confirmation.
	LikeLiking
	// LikeUnliking: an optimistic transition to Unliked awaiting confirmation.
	LikeUnliking
)

func (p LikePhase) inFlight() bool {
	return p == LikeLiking || p == LikeUnliking
}

// ErrToggleInFlight is returned when a toggle arrives while a previous toggle
// for the same post and viewer has not resolved. Callers treat it as "ignore
// the click": the returned status still reflects the current optimistic view.
var ErrToggleInFlight = errors.New("like toggle already in flight")

// CommentRejectedError wraps a failed comment insert and carries the original
// text so the UI can restore it into the input field.
type CommentRejectedError struct {
	Text string
	Err  error
}

func (e *CommentRejectedError) Error() string {
	return fmt.Sprintf("comment rejected: %v", e.Err)
}

func (e *CommentRejectedError) Unwrap() error { return e.Err }

// Engagement is the per-post view exposed to the UI: counts, the viewer's own
// like state, and the comment list newest-first.
type Engagement struct {
	LikeCount      int64             `json:"like_count"`
	ViewerHasLiked bool              `json:"viewer_has_liked"`
	CommentCount   int               `json:"comment_count"`
	Comments       []*models.Comment `json:"comments"`
}

// LikeStatus is the viewer-facing result of a toggle.
type LikeStatus struct {
	LikeCount      int64 `json:"like_count"`
	ViewerHasLiked bool  `json:"viewer_has_liked"`
}

type pairKey struct {
	postID string
	userID string
}

type likeState struct {
	phase LikePhase
	count int64
}

func (st *likeState) status() LikeStatus {
	return LikeStatus{
		LikeCount:      st.count,
		ViewerHasLiked: st.phase == LikeLiked || st.phase == LikeLiking,
	}
}

// EngagementService owns the optimistic like/comment synchronization for
// posts. Displayed counts are speculative between a toggle and its
// confirmation; after every confirmed write the count is reconciled from an
// authoritative re-read, which is the only defense against concurrent
// writers.
type EngagementService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	profileRepo repository.ProfileRepository
	center      *NotificationCenter
	logger      *slog.Logger

	mu    sync.Mutex
	likes map[pairKey]*likeState
}

// NewEngagementService creates an EngagementService. center may be nil when
// no local notification simulation is wanted.
func NewEngagementService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	profileRepo repository.ProfileRepository,
	center *NotificationCenter,
) *EngagementService {
	return &EngagementService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		profileRepo: profileRepo,
		center:      center,
		logger:      slog.Default(),
		likes:       make(map[pairKey]*likeState),
	}
}

// Load retrieves a post's engagement aggregate: total like count, whether the
// viewer has liked it, and comments newest-first. Counts are public; an empty
// viewer id only forces ViewerHasLiked to false. Read failures degrade to a
// zeroed aggregate instead of failing the post render; the returned error
// reports the degradation so callers do not persist or cache the zero view.
func (s *EngagementService) Load(ctx context.Context, postID, viewerID string) (Engagement, error) {
	likeCount, err := s.postRepo.LikeCount(ctx, postID)
	if err != nil {
		s.logger.ErrorContext(ctx, "engagement load failed",
			slog.String("post_id", postID), slog.String("error", err.Error()))
		return Engagement{Comments: []*models.Comment{}}, err
	}

	liked := false
	if viewerID != "" {
		liked, err = s.postRepo.IsLiked(ctx, viewerID, postID)
		if err != nil {
			s.logger.ErrorContext(ctx, "engagement load failed",
				slog.String("post_id", postID), slog.String("error", err.Error()))
			return Engagement{Comments: []*models.Comment{}}, err
		}
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		s.logger.ErrorContext(ctx, "engagement load failed",
			slog.String("post_id", postID), slog.String("error", err.Error()))
		return Engagement{Comments: []*models.Comment{}}, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	if viewerID != "" {
		s.seedState(postID, viewerID, liked, likeCount)
	}

	return Engagement{
		LikeCount:      likeCount,
		ViewerHasLiked: liked,
		CommentCount:   len(comments),
		Comments:       comments,
	}, nil
}

// seedState records the loaded like state for the pair unless a toggle is in
// flight, in which case the optimistic view wins. An existing entry is
// mutated in place so the pointer a running toggle holds stays the map's
// entry.
func (s *EngagementService) seedState(postID, viewerID string, liked bool, count int64) {
	key := pairKey{postID: postID, userID: viewerID}
	phase := LikeUnliked
	if liked {
		phase = LikeLiked
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.likes[key]; ok {
		if st.phase.inFlight() {
			return
		}
		st.phase = phase
		st.count = count
		return
	}
	s.likes[key] = &likeState{phase: phase, count: count}
}

// ToggleLike flips the viewer's like on a post. The displayed state and count
// change optimistically before the remote write; a failed write rolls both
// back, and a confirmed write replaces the count with an authoritative
// re-read. While a toggle is in flight, further toggles for the same pair are
// ignored and ErrToggleInFlight is returned alongside the current view.
func (s *EngagementService) ToggleLike(ctx context.Context, viewerID, postID string) (LikeStatus, error) {
	if viewerID == "" {
		return LikeStatus{}, models.NewAuthRequiredError("You must be signed in to like posts")
	}

	key := pairKey{postID: postID, userID: viewerID}
	st, err := s.ensureState(ctx, key)
	if err != nil {
		return LikeStatus{}, err
	}

	s.mu.Lock()
	// The map entry is authoritative; re-read it under the same lock that
	// performs the guard check and transition.
	if cur, ok := s.likes[key]; ok {
		st = cur
	}
	if st.phase.inFlight() {
		status := st.status()
		s.mu.Unlock()
		observability.ToggleGuardHits.Inc()
		return status, ErrToggleInFlight
	}

	prevPhase, prevCount := st.phase, st.count
	liking := st.phase != LikeLiked
	if liking {
		st.phase = LikeLiking
		st.count++
	} else {
		st.phase = LikeUnliking
		if st.count > 0 {
			st.count--
		}
	}
	s.mu.Unlock()

	if liking {
		err = s.postRepo.Like(ctx, viewerID, postID)
	} else {
		err = s.postRepo.Unlike(ctx, viewerID, postID)
	}

	if err != nil {
		s.mu.Lock()
		st.phase, st.count = prevPhase, prevCount
		status := st.status()
		s.mu.Unlock()
		observability.LikeRollbacks.Inc()
		s.logger.WarnContext(ctx, "like toggle rolled back",
			slog.String("post_id", postID),
			slog.String("user_id", viewerID),
			slog.String("error", err.Error()),
		)
		return status, fmt.Errorf("toggle like: %w", err)
	}

	// Reconcile against the authoritative count; concurrent likes from other
	// viewers may have changed it since the optimistic update.
	authoritative, countErr := s.postRepo.LikeCount(ctx, postID)

	s.mu.Lock()
	if liking {
		st.phase = LikeLiked
	} else {
		st.phase = LikeUnliked
	}
	if countErr == nil {
		st.count = authoritative
		observability.LikeReconciliations.Inc()
	} else {
		s.logger.WarnContext(ctx, "like count reconciliation failed, keeping optimistic count",
			slog.String("post_id", postID), slog.String("error", countErr.Error()))
	}
	status := st.status()
	s.mu.Unlock()

	if liking && s.center != nil {
		s.center.Push(models.Notification{
			Type:    models.NotificationLike,
			Message: "Your post got a new like",
			Post:    &models.NotificationPostRef{ID: postID},
		})
	}

	return status, nil
}

// ensureState returns the like state for the pair, deriving it from the store
// on first touch.
func (s *EngagementService) ensureState(ctx context.Context, key pairKey) (*likeState, error) {
	s.mu.Lock()
	if st, ok := s.likes[key]; ok {
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	liked, err := s.postRepo.IsLiked(ctx, key.userID, key.postID)
	if err != nil {
		return nil, fmt.Errorf("load like state: %w", err)
	}
	count, err := s.postRepo.LikeCount(ctx, key.postID)
	if err != nil {
		return nil, fmt.Errorf("load like count: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.likes[key]; ok {
		return st, nil
	}
	phase := LikeUnliked
	if liked {
		phase = LikeLiked
	}
	st := &likeState{phase: phase, count: count}
	s.likes[key] = st
	return st, nil
}

// SubmitComment appends a comment to a post. The text must be non-empty after
// trimming and the viewer must be authenticated with a resolved profile;
// otherwise the submission is rejected before any remote call. On success the
// full comment list is re-fetched so the returned list (and its length, the
// new displayed count) includes comments from concurrent writers. On a failed
// insert the returned error carries the original text for restoration.
func (s *EngagementService) SubmitComment(ctx context.Context, viewer identity.Identity, postID, text string) ([]*models.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if !viewer.Authenticated() {
		return nil, models.NewAuthRequiredError("You must be signed in to comment")
	}
	profile, err := s.profileRepo.GetByUserID(ctx, viewer.UserID)
	if err != nil {
		return nil, models.NewAuthRequiredError("Your profile could not be resolved")
	}

	comment := &models.Comment{
		Content: trimmed,
		UserID:  viewer.UserID,
		PostID:  postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, &CommentRejectedError{Text: text, Err: err}
	}

	if s.center != nil {
		s.center.Push(models.Notification{
			Type:    models.NotificationComment,
			Message: fmt.Sprintf("%s commented on your post", profile.DisplayName),
			Post:    &models.NotificationPostRef{ID: postID},
			Actor: &models.NotificationUserRef{
				DisplayName: profile.DisplayName,
				Username:    profile.Username,
				AvatarURL:   profile.AvatarURL,
			},
		})
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		// The write is confirmed; a failed re-fetch degrades to an empty
		// list the same way a failed load does.
		s.logger.ErrorContext(ctx, "comment re-fetch failed",
			slog.String("post_id", postID), slog.String("error", err.Error()))
		return []*models.Comment{}, nil
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// LikePhaseFor reports the current machine phase for a pair. Exposed for
// tests and diagnostics.
func (s *EngagementService) LikePhaseFor(postID, viewerID string) (LikePhase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.likes[pairKey{postID: postID, userID: viewerID}]
	if !ok {
		return LikeUnliked, false
	}
	return st.phase, true
}
