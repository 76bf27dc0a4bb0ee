package models

import "time"

// Comment is an append-only comment on a post. Comments are never updated
// or deleted, and are always presented newest-first.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    string    `gorm:"not null;index;size:64" json:"user_id"`
	PostID    string    `gorm:"not null;index;size:36" json:"post_id"`
	User      Profile   `gorm:"foreignKey:UserID;references:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
