package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"plateful/internal/cache"
	"plateful/internal/models"
	"plateful/internal/repository"
	"plateful/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEngagementAnonymous(t *testing.T) {
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")
	require.NoError(t, s.db.Create(&models.Like{UserID: "u1", PostID: "p1"}).Error)
	require.NoError(t, s.db.Create(&models.Comment{ID: "c1", Content: "nice", UserID: "u1", PostID: "p1"}).Error)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/posts/p1/engagement", "", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body service.Engagement
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(1), body.LikeCount)
	assert.False(t, body.ViewerHasLiked)
	assert.Equal(t, 1, body.CommentCount)
	require.Len(t, body.Comments, 1)
}

func TestGetEngagementAnonymousServedFromCache(t *testing.T) {
	mr := useTestRedis(t)
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")
	require.NoError(t, s.db.Create(&models.Like{UserID: "u1", PostID: "p1"}).Error)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/posts/p1/engagement", "", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, mr.Exists(cache.EngagementKey("p1")))

	// The cached aggregate keeps serving until an engagement write
	// invalidates the key.
	require.NoError(t, s.db.Where("post_id = ?", "p1").Delete(&models.Like{}).Error)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/posts/p1/engagement", "", nil))
	require.NoError(t, err)

	var body service.Engagement
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(1), body.LikeCount)
}

// failingPostRepo fails like-count reads while delegating everything else.
type failingPostRepo struct {
	repository.PostRepository
}

func (f *failingPostRepo) LikeCount(_ context.Context, _ string) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestGetEngagementDegradedLoadNotCached(t *testing.T) {
	mr := useTestRedis(t)
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")
	s.engagement = service.NewEngagementService(
		&failingPostRepo{s.postRepo}, s.commentRepo, s.profileRepo, s.center)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/posts/p1/engagement", "", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body service.Engagement
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(0), body.LikeCount)
	// The zeroed aggregate must not shadow a later healthy read.
	assert.False(t, mr.Exists(cache.EngagementKey("p1")))
}

func TestGetEngagementViewerFlag(t *testing.T) {
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")
	require.NoError(t, s.db.Create(&models.Like{UserID: "u1", PostID: "p1"}).Error)

	token := signTestToken(t, s, "u1")
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/posts/p1/engagement", token, nil))
	require.NoError(t, err)

	var body service.Engagement
	decodeBody(t, resp, &body)
	assert.True(t, body.ViewerHasLiked)
}

func TestToggleLikeRequiresSession(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/posts/p1/like", "", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")
	token := signTestToken(t, s, "u1")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/posts/p1/like", token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status service.LikeStatus
	decodeBody(t, resp, &status)
	assert.True(t, status.ViewerHasLiked)
	assert.Equal(t, int64(1), status.LikeCount)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/posts/p1/like", token, nil))
	require.NoError(t, err)
	decodeBody(t, resp, &status)
	assert.False(t, status.ViewerHasLiked)
	assert.Equal(t, int64(0), status.LikeCount)
}

func TestGetCommentsNewestFirst(t *testing.T) {
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/posts/p1/comments", "", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var comments []models.Comment
	decodeBody(t, resp, &comments)
	assert.Empty(t, comments)
}

func TestCreateCommentRoundTrip(t *testing.T) {
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")
	token := signTestToken(t, s, "u1")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/posts/p1/comments", token,
		fiber.Map{"content": "  looks delicious  "}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Comments     []models.Comment `json:"comments"`
		CommentCount int              `json:"comment_count"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Comments, 1)
	assert.Equal(t, 1, body.CommentCount)
	assert.Equal(t, "looks delicious", body.Comments[0].Content)
	assert.Equal(t, "ana", body.Comments[0].User.Username)
}

func TestCreateCommentWhitespaceRejected(t *testing.T) {
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")
	token := signTestToken(t, s, "u1")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/posts/p1/comments", token,
		fiber.Map{"content": "   \n  "}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateCommentUnknownViewerRejected(t *testing.T) {
	// Valid session token but no mirrored profile: profile resolution fails.
	s, app := newTestServer(t)
	seedTestPost(t, s.db, "p1", "u1")
	token := signTestToken(t, s, "ghost")

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/posts/p1/comments", token,
		fiber.Map{"content": "hello"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// failingCommentRepo rejects every insert while delegating reads.
type failingCommentRepo struct {
	inner interface {
		ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
		CountByPost(ctx context.Context, postID string) (int64, error)
	}
}

func (f *failingCommentRepo) Create(_ context.Context, _ *models.Comment) error {
	return errors.New("insert rejected")
}
func (f *failingCommentRepo) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return f.inner.ListByPost(ctx, postID)
}
func (f *failingCommentRepo) CountByPost(ctx context.Context, postID string) (int64, error) {
	return f.inner.CountByPost(ctx, postID)
}

func TestCreateCommentFailureRestoresText(t *testing.T) {
	s, app := newTestServer(t)
	seedTestProfile(t, s.db, "u1", "ana")
	seedTestPost(t, s.db, "p1", "u1")

	s.engagement = service.NewEngagementService(
		s.postRepo, &failingCommentRepo{inner: s.commentRepo}, s.profileRepo, s.center)

	token := signTestToken(t, s, "u1")
	original := " my comment "
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/posts/p1/comments", token,
		fiber.Map{"content": original}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body struct {
		RestoredText string `json:"restored_text"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, original, body.RestoredText)
}
