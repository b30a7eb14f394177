package authz

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedSetsReadThrough(t *testing.T) {
	mr, client := newTestRedis(t)
	source := &stubSets{sets: []PermissionSet{
		grantSet(ModuleProduct, "category", SubmodulePermissions{View: true}),
	}}
	cached := NewCachedSets(source, client, time.Minute, nil)

	sets, err := cached.SetsForUser(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 1, source.calls)
	assert.True(t, mr.Exists("authz:sets:42"))

	// Second read is served from cache.
	sets, err = cached.SetsForUser(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.True(t, sets[0].Grants(ModuleProduct, "category", ActionView))
	assert.Equal(t, 1, source.calls)
}

func TestCachedSetsInvalidate(t *testing.T) {
	mr, client := newTestRedis(t)
	source := &stubSets{}
	cached := NewCachedSets(source, client, time.Minute, nil)

	_, err := cached.SetsForUser(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, mr.Exists("authz:sets:7"))

	cached.Invalidate(context.Background(), 7)
	assert.False(t, mr.Exists("authz:sets:7"))

	_, err = cached.SetsForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestCachedSetsDropsUnreadableEntry(t *testing.T) {
	mr, client := newTestRedis(t)
	source := &stubSets{sets: []PermissionSet{{UserID: 9}}}
	cached := NewCachedSets(source, client, time.Minute, nil)

	require.NoError(t, mr.Set("authz:sets:9", "{corrupt"))

	sets, err := cached.SetsForUser(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 1, source.calls)

	// The corrupt entry was replaced by a fresh serialization.
	payload, err := mr.Get("authz:sets:9")
	require.NoError(t, err)
	var cachedSets []PermissionSet
	require.NoError(t, json.Unmarshal([]byte(payload), &cachedSets))
	assert.Equal(t, int64(9), cachedSets[0].UserID)
}

func TestCachedSetsNilClientPassthrough(t *testing.T) {
	source := &stubSets{}
	cached := NewCachedSets(source, nil, time.Minute, nil)

	_, err := cached.SetsForUser(context.Background(), 1)
	require.NoError(t, err)
	_, err = cached.SetsForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	cached.Invalidate(context.Background(), 1)
}

func TestCachedSetsSourceErrorNotCached(t *testing.T) {
	mr, client := newTestRedis(t)
	source := &stubSets{err: assert.AnError}
	cached := NewCachedSets(source, client, time.Minute, nil)

	_, err := cached.SetsForUser(context.Background(), 3)
	require.Error(t, err)
	assert.False(t, mr.Exists("authz:sets:3"))
}
