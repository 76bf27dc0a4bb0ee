package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix       = "post:%s"
	EngagementKeyPrefix = "post:%s:engagement"
)

const (
	PostTTL       = 30 * time.Minute
	EngagementTTL = 30 * time.Second
)

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func EngagementKey(postID string) string {
	return fmt.Sprintf(EngagementKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, EngagementKey(postID))
}
