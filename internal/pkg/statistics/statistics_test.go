package statistics

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/cache"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/database"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/metrics/counter"
)

func newRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return repository.NewRepositories(db)
}

func TestCollectWithoutCache(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.User.Create(ctx, &models.User{ClerkID: "user_1", Email: "a@example.com"}))
	_, err := repos.WebhookEvent.Record(ctx, &models.WebhookEvent{
		Provider: models.WebhookProviderClerk, ProviderEventID: "msg_1", EventType: "user.created",
	})
	require.NoError(t, err)

	data, err := NewCollector(repos, nil, nil).Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), data.Collections["users"])
	assert.Equal(t, int64(0), data.Collections["payment-attempts"])
	assert.Len(t, data.Collections, 6)
	assert.Equal(t, int64(1), data.WebhookDeliveries["user.created"])
}

func TestCollectCachesCounts(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	wc := counter.NewWebhookCounter(rdb)
	collector := NewCollector(repos, cache.New(rdb), wc)

	require.NoError(t, wc.AddDelivery(ctx, "user.created"))

	data, err := collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), data.Collections["users"])
	assert.Equal(t, int64(1), data.WebhookDeliveries["user.created"])
	assert.True(t, srv.Exists(CacheKeyCollections))

	require.NoError(t, repos.User.Create(ctx, &models.User{ClerkID: "user_1", Email: "a@example.com"}))

	data, err = collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), data.Collections["users"], "served from cache")

	collector.Invalidate(ctx)
	data, err = collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), data.Collections["users"])
}
