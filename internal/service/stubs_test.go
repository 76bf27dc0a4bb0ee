package service

import (
	"context"

	"plateful/internal/models"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn    func(context.Context, *models.Post) error
	getByIDFn   func(context.Context, string, string) (*models.Post, error)
	listFn      func(context.Context, int, int, string) ([]*models.Post, error)
	likeCountFn func(context.Context, string) (int64, error)
	isLikedFn   func(context.Context, string, string) (bool, error)
	likeFn      func(context.Context, string, string) error
	unlikeFn    func(context.Context, string, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID string) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, currentUserID string) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, currentUserID)
}
func (s *postRepoStub) LikeCount(ctx context.Context, postID string) (int64, error) {
	return s.likeCountFn(ctx, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID string) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID string) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:    func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:   func(_ context.Context, _, _ string) (*models.Post, error) { return &models.Post{}, nil },
		listFn:      func(_ context.Context, _, _ int, _ string) ([]*models.Post, error) { return nil, nil },
		likeCountFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
		isLikedFn:   func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		likeFn:      func(_ context.Context, _, _ string) error { return nil },
		unlikeFn:    func(_ context.Context, _, _ string) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	listByPostFn  func(context.Context, string) ([]*models.Comment, error)
	countByPostFn func(context.Context, string) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID string) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		listByPostFn:  func(_ context.Context, _ string) ([]*models.Comment, error) { return nil, nil },
		countByPostFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByUserIDFn func(context.Context, string) (*models.Profile, error)
	upsertFn      func(context.Context, *models.Profile) error
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) Upsert(ctx context.Context, profile *models.Profile) error {
	return s.upsertFn(ctx, profile)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByUserIDFn: func(_ context.Context, userID string) (*models.Profile, error) {
			return &models.Profile{UserID: userID, Username: "tester", DisplayName: "Tester"}, nil
		},
		upsertFn: func(_ context.Context, _ *models.Profile) error { return nil },
	}
}
