package models

import "time"

// Notification type tags.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
	NotificationSystem  = "system"
)

// NotificationPostRef is the optional triggering post attached to a notification.
type NotificationPostRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// NotificationUserRef is the optional triggering user attached to a notification.
type NotificationUserRef struct {
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url"`
}

// Notification is a local, in-process notification. It has no remote
// counterpart and is not persisted beyond the process lifetime; the ID is
// derived from the creation instant. Read transitions only from false to
// true.
type Notification struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	Message   string               `json:"message"`
	Read      bool                 `json:"read"`
	Post      *NotificationPostRef `json:"post,omitempty"`
	Actor     *NotificationUserRef `json:"actor,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}
