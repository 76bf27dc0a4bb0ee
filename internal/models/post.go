package models

import (
	"strings"
	"time"
)

// Meal type values accepted for a post. Empty string means unset.
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
	MealTypeSweet     = "sweet"
	MealTypeDessert   = "dessert"
	MealTypeUnset     = ""
)

// ValidMealType reports whether mt is one of the accepted meal types.
func ValidMealType(mt string) bool {
	switch mt {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack,
		MealTypeSweet, MealTypeDessert, MealTypeUnset:
		return true
	}
	return false
}

// MaxPostTags is the upper bound on tags per post.
const MaxPostTags = 5

// Post represents a meal post. Posts are immutable after creation: there is
// no update or delete path, and Calories is fixed at submission time.
type Post struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Caption  string `gorm:"type:text" json:"caption"`
	ImageURL string `json:"image_url"`
	// Calories is the total computed from the composition's item list
	// (calories x servings per item) before submission.
	Calories int `gorm:"not null;default:0" json:"calories"`
	// Tags is stored comma-joined; use TagList for the split form.
	Tags     string  `json:"tags"`
	MealType string  `gorm:"size:16" json:"mealtype"`
	UserID   string  `gorm:"not null;index;size:64" json:"user_id"`
	User     Profile `gorm:"foreignKey:UserID;references:UserID" json:"user"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
}

// TagList splits the stored comma-joined tags, dropping empties.
func (p *Post) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags normalizes and comma-joins a tag list for storage.
func JoinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}
