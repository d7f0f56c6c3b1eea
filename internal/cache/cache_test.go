package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/insert-planner/internal/cache"
)

func newStore(t *testing.T) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.New(rdb, time.Hour), mr
}

type details struct {
	Name string `json:"name"`
	Step int    `json:"step"`
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "camp-1", cache.SectionDetails, details{Name: "Spring FSI", Step: 5}))

	var got details
	require.NoError(t, store.Get(ctx, "camp-1", cache.SectionDetails, &got))
	assert.Equal(t, "Spring FSI", got.Name)
	assert.Equal(t, 5, got.Step)
}

func TestGet_Miss(t *testing.T) {
	store, _ := newStore(t)

	var got details
	err := store.Get(context.Background(), "camp-1", cache.SectionDetails, &got)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestInvalidate_ScopedToCampaign(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "camp-1", cache.SectionDetails, details{Name: "a"}))
	require.NoError(t, store.Set(ctx, "camp-1", cache.SectionAgreement, details{Name: "b"}))
	require.NoError(t, store.Set(ctx, "camp-2", cache.SectionDetails, details{Name: "keep"}))

	require.NoError(t, store.Invalidate(ctx, "camp-1"))

	var got details
	assert.ErrorIs(t, store.Get(ctx, "camp-1", cache.SectionDetails, &got), cache.ErrMiss)
	assert.ErrorIs(t, store.Get(ctx, "camp-1", cache.SectionAgreement, &got), cache.ErrMiss)
	require.NoError(t, store.Get(ctx, "camp-2", cache.SectionDetails, &got))
	assert.Equal(t, "keep", got.Name)

	// Only the untouched campaign's key remains.
	assert.True(t, mr.Exists(cache.Key("camp-2", cache.SectionDetails)))
}

func TestInvalidate_NoKeysIsFine(t *testing.T) {
	store, _ := newStore(t)
	assert.NoError(t, store.Invalidate(context.Background(), "never-cached"))
}

func TestEntriesExpire(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "camp-1", cache.SectionDetails, details{Name: "a"}))
	mr.FastForward(2 * time.Hour)

	var got details
	assert.ErrorIs(t, store.Get(ctx, "camp-1", cache.SectionDetails, &got), cache.ErrMiss)
}
