// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"plateful/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder populates the database with fake profiles, meal posts, likes and
// comments so the feed has something to show during development.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.Post{}, &models.Profile{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// SeedProfiles creates n fake display profiles and returns them.
func (s *Seeder) SeedProfiles(n int) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, n)
	for i := 0; i < n; i++ {
		profiles = append(profiles, models.Profile{
			UserID:      uuid.NewString(),
			Username:    fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			DisplayName: gofakeit.Name(),
			AvatarURL:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		})
	}
	if err := s.db.Create(&profiles).Error; err != nil {
		return nil, fmt.Errorf("seed profiles: %w", err)
	}
	log.Printf("Created %d profiles", len(profiles))
	return profiles, nil
}

var mealTypes = []string{
	models.MealTypeBreakfast,
	models.MealTypeLunch,
	models.MealTypeDinner,
	models.MealTypeSnack,
	models.MealTypeSweet,
	models.MealTypeDessert,
}

func (s *Seeder) fakeDish(mealType string) string {
	switch mealType {
	case models.MealTypeBreakfast:
		return gofakeit.Breakfast()
	case models.MealTypeLunch:
		return gofakeit.Lunch()
	case models.MealTypeDinner:
		return gofakeit.Dinner()
	case models.MealTypeSnack:
		return gofakeit.Snack()
	default:
		return gofakeit.Dessert()
	}
}

// SeedMeals creates n meal posts spread over the past weeks, each with a
// random helping of likes and comments from the given profiles.
func (s *Seeder) SeedMeals(profiles []models.Profile, n int) ([]models.Post, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("seed meals: no profiles to attribute posts to")
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := profiles[s.rng.Intn(len(profiles))]
		mealType := mealTypes[s.rng.Intn(len(mealTypes))]
		tagCount := s.rng.Intn(models.MaxPostTags + 1)
		tags := make([]string, 0, tagCount)
		for t := 0; t < tagCount; t++ {
			tags = append(tags, strings.ToLower(gofakeit.Word()))
		}

		posts = append(posts, models.Post{
			ID:       uuid.NewString(),
			Title:    s.fakeDish(mealType),
			Caption:  gofakeit.Sentence(12),
			ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			Calories: gofakeit.Number(80, 1400),
			Tags:     models.JoinTags(tags),
			MealType: mealType,
			UserID:   author.UserID,
			CreatedAt: time.Now().
				Add(-time.Duration(s.rng.Intn(21*24)) * time.Hour).
				Add(-time.Duration(s.rng.Intn(60)) * time.Minute),
		})
	}
	if err := s.db.Create(&posts).Error; err != nil {
		return nil, fmt.Errorf("seed meals: %w", err)
	}
	log.Printf("Created %d meal posts", len(posts))

	if err := s.seedEngagement(profiles, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) seedEngagement(profiles []models.Profile, posts []models.Post) error {
	var likes []models.Like
	var comments []models.Comment

	for _, post := range posts {
		// Pick a distinct subset of likers per post to respect the
		// unique (user, post) constraint.
		perm := s.rng.Perm(len(profiles))
		likers := s.rng.Intn(len(profiles) + 1)
		for _, idx := range perm[:likers] {
			likes = append(likes, models.Like{
				UserID: profiles[idx].UserID,
				PostID: post.ID,
			})
		}

		for c := 0; c < s.rng.Intn(6); c++ {
			commenter := profiles[s.rng.Intn(len(profiles))]
			comments = append(comments, models.Comment{
				ID:        uuid.NewString(),
				Content:   gofakeit.Sentence(8),
				UserID:    commenter.UserID,
				PostID:    post.ID,
				CreatedAt: post.CreatedAt.Add(time.Duration(s.rng.Intn(600)) * time.Minute),
			})
		}
	}

	if len(likes) > 0 {
		if err := s.db.CreateInBatches(&likes, 500).Error; err != nil {
			return fmt.Errorf("seed likes: %w", err)
		}
	}
	if len(comments) > 0 {
		if err := s.db.CreateInBatches(&comments, 500).Error; err != nil {
			return fmt.Errorf("seed comments: %w", err)
		}
	}
	log.Printf("Created %d likes, %d comments", len(likes), len(comments))
	return nil
}
