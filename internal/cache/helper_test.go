package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedEngagement struct {
	LikeCount    int64 `json:"like_count"`
	CommentCount int   `json:"comment_count"`
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(c)
	t.Cleanup(func() {
		SetClient(nil)
		_ = c.Close()
	})
	return mr
}

func TestGetSetJSONRoundTrip(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	in := cachedEngagement{LikeCount: 12, CommentCount: 4}
	require.NoError(t, SetJSON(ctx, EngagementKey("p1"), in, EngagementTTL))

	var out cachedEngagement
	found, err := GetJSON(ctx, EngagementKey("p1"), &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, out)
}

func TestGetJSONMiss(t *testing.T) {
	useMiniredis(t)

	var out cachedEngagement
	found, err := GetJSON(context.Background(), PostKey("nope"), &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAsidePopulatesOnMissThenServesFromCache(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedEngagement) func() error {
		return func() error {
			fetches++
			*dest = cachedEngagement{LikeCount: 3}
			return nil
		}
	}

	var first cachedEngagement
	require.NoError(t, Aside(ctx, EngagementKey("p1"), &first, time.Minute, fetch(&first)))
	assert.Equal(t, int64(3), first.LikeCount)
	assert.Equal(t, 1, fetches)

	var second cachedEngagement
	require.NoError(t, Aside(ctx, EngagementKey("p1"), &second, time.Minute, fetch(&second)))
	assert.Equal(t, int64(3), second.LikeCount)
	assert.Equal(t, 1, fetches, "second read must come from cache")
}

func TestAsidePropagatesFetchError(t *testing.T) {
	useMiniredis(t)

	var dest cachedEngagement
	fetchErr := errors.New("db down")
	err := Aside(context.Background(), EngagementKey("p1"), &dest, time.Minute, func() error {
		return fetchErr
	})
	assert.ErrorIs(t, err, fetchErr)
}

func TestInvalidatePostDropsBothKeys(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey("p1"), cachedEngagement{}, PostTTL))
	require.NoError(t, SetJSON(ctx, EngagementKey("p1"), cachedEngagement{}, EngagementTTL))

	InvalidatePost(ctx, "p1")

	assert.False(t, mr.Exists(PostKey("p1")))
	assert.False(t, mr.Exists(EngagementKey("p1")))
}

func TestHelpersAreNilSafe(t *testing.T) {
	SetClient(nil)

	var out cachedEngagement
	found, err := GetJSON(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(context.Background(), "k", out, time.Minute))
	Invalidate(context.Background(), "k")
}
