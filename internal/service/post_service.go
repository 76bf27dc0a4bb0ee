package service

import (
	"context"
	"log/slog"
	"strings"

	"plateful/internal/draft"
	"plateful/internal/models"
	"plateful/internal/realtime"
	"plateful/internal/repository"
)

// CalorieItem is one constituent food item of a composition.
type CalorieItem struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Servings int    `json:"servings"`
}

// CreatePostInput carries the submitted composition.
type CreatePostInput struct {
	UserID   string
	Title    string
	Caption  string
	ImageURL string
	MealType string
	Tags     []string
	Items    []CalorieItem
}

// PostService handles post creation: the only write path for posts. Posts
// are immutable once created.
type PostService struct {
	postRepo repository.PostRepository
	notifier *realtime.Notifier
	drafts   draft.Store
	logger   *slog.Logger
}

// NewPostService creates a PostService. drafts may be nil when submission
// should not clear a draft slot.
func NewPostService(postRepo repository.PostRepository, notifier *realtime.Notifier, drafts draft.Store) *PostService {
	return &PostService{
		postRepo: postRepo,
		notifier: notifier,
		drafts:   drafts,
		logger:   slog.Default(),
	}
}

// TotalCalories computes the composition's calorie total: the sum of each
// item's calories times its servings. The total is fixed at submission time.
func TotalCalories(items []CalorieItem) (int, error) {
	total := 0
	for _, item := range items {
		if item.Calories < 0 {
			return 0, models.NewValidationError("Item calories cannot be negative")
		}
		if item.Servings < 0 {
			return 0, models.NewValidationError("Item servings cannot be negative")
		}
		total += item.Calories * item.Servings
	}
	return total, nil
}

// CreatePost validates and inserts a post, publishes the insert event to the
// push channel, and clears the author's draft slot.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxTitleLen = 300
	const maxCaptionLen = 10000

	if in.UserID == "" {
		return nil, models.NewAuthRequiredError("You must be signed in to post")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(in.Caption) > maxCaptionLen {
		return nil, models.NewValidationError("Caption too long (max 10000 characters)")
	}
	if !models.ValidMealType(in.MealType) {
		return nil, models.NewValidationError("Invalid mealtype")
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) > models.MaxPostTags {
		return nil, models.NewValidationError("Too many tags (max 5)")
	}

	calories, err := TotalCalories(in.Items)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    title,
		Caption:  in.Caption,
		ImageURL: in.ImageURL,
		Calories: calories,
		Tags:     models.JoinTags(tags),
		MealType: in.MealType,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		ev := realtime.PostInsertedEvent{
			ID:        post.ID,
			Title:     post.Title,
			Caption:   post.Caption,
			ImageURL:  post.ImageURL,
			Calories:  post.Calories,
			Tags:      post.Tags,
			MealType:  post.MealType,
			UserID:    post.UserID,
			CreatedAt: post.CreatedAt,
		}
		if err := s.notifier.PublishPostInserted(ctx, ev); err != nil {
			s.logger.WarnContext(ctx, "post insert event publish failed",
				slog.String("post_id", post.ID), slog.String("error", err.Error()))
		}
	}

	// Successful submission consumes the draft slot.
	if s.drafts != nil {
		if err := s.drafts.Clear(in.UserID); err != nil {
			s.logger.WarnContext(ctx, "draft clear after submit failed",
				slog.String("user_id", in.UserID), slog.String("error", err.Error()))
		}
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost retrieves a post with its computed engagement fields.
func (s *PostService) GetPost(ctx context.Context, id, currentUserID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}
