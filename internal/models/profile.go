// Package models contains data structures for the application's domain models.
package models

import "time"

// Profile is the display profile attached to posts and comments.
// The UserID is the opaque identifier issued by the identity provider;
// profiles are never created or mutated through this service.
type Profile struct {
	UserID      string    `gorm:"primaryKey;size:64" json:"user_id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}
