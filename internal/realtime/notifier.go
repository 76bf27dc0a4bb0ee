// Package realtime provides the push channel: row-level change events
// published over Redis pub/sub, and a WebSocket hub fanning them out to
// connected views.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

// PostsInsertedChannel carries insert events for the posts table.
const PostsInsertedChannel = "plateful:posts:inserted"

// PostInsertedEvent is the push payload for a new post row. It carries the
// raw row only; the author profile is not joined and must be fetched by the
// consumer.
type PostInsertedEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption"`
	ImageURL  string    `json:"image_url"`
	Calories  int       `json:"calories"`
	Tags      string    `json:"tags"`
	MealType  string    `json:"mealtype"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier publishes row change events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishPostInserted emits an insert event for a new post row.
// A nil Redis client turns publishing into a no-op.
func (n *Notifier) PublishPostInserted(ctx context.Context, ev PostInsertedEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, PostsInsertedChannel, payload).Err()
}

// SubscribePostInserts subscribes to the posts insert channel and calls
// onEvent for each decoded event until ctx is cancelled. The subscription is
// released when ctx is done.
func (n *Notifier) SubscribePostInserts(ctx context.Context, onEvent func(PostInsertedEvent)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, PostsInsertedChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev PostInsertedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("realtime: dropping malformed post insert event: %v", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in post insert subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
