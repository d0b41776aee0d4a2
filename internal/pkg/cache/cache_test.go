package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	c := New(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	srv.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
