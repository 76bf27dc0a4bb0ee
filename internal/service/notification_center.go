package service

import (
	"strconv"
	"sync"
	"time"

	"plateful/internal/models"
)

// NotificationCenter holds the local, in-process notification list. Nothing
// here survives a restart and nothing is written to the store; identifiers
// are derived from the creation instant.
type NotificationCenter struct {
	mu   sync.Mutex
	list []*models.Notification
	now  func() time.Time
}

// NewNotificationCenter returns an empty center.
func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{now: time.Now}
}

// Push records a notification and returns it with its assigned identifier.
func (c *NotificationCenter) Push(n models.Notification) *models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	created := c.now()
	n.ID = strconv.FormatInt(created.UnixNano(), 10)
	n.CreatedAt = created
	n.Read = false

	stored := n
	c.list = append([]*models.Notification{&stored}, c.list...)
	return &stored
}

// List returns a snapshot of all notifications, newest-first.
func (c *NotificationCenter) List() []*models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.Notification, len(c.list))
	copy(out, c.list)
	return out
}

// MarkRead flips a notification from unread to read. The transition is
// one-directional; marking an already-read notification is a no-op. Returns
// whether the id was found.
func (c *NotificationCenter) MarkRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.list {
		if n.ID == id {
			n.Read = true
			return true
		}
	}
	return false
}

// MarkAllRead sets every notification's read flag.
func (c *NotificationCenter) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.list {
		n.Read = true
	}
}

// UnreadCount returns the number of notifications with read = false.
func (c *NotificationCenter) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.list {
		if !n.Read {
			count++
		}
	}
	return count
}
