package authz

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*EffectiveCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewEffectiveCache(client, ttl), mr
}

func TestEffectiveCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, 10*time.Second)
	ctx := context.Background()

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)

	cache.Set(ctx, 1, map[string]struct{}{"read_students": {}, "read_users": {}})

	got, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Contains(t, got, "read_students")
	assert.Contains(t, got, "read_users")
	assert.Len(t, got, 2)
}

func TestEffectiveCacheInvalidateUser(t *testing.T) {
	cache, _ := newTestCache(t, 10*time.Second)
	ctx := context.Background()

	cache.Set(ctx, 1, map[string]struct{}{"read_students": {}})
	cache.Set(ctx, 2, map[string]struct{}{"read_users": {}})

	cache.InvalidateUser(ctx, 1)

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 2)
	assert.True(t, ok)
}

func TestEffectiveCacheTTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t, 10*time.Second)
	ctx := context.Background()

	cache.Set(ctx, 1, map[string]struct{}{"read_students": {}})
	mr.FastForward(11 * time.Second)

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
}

func TestEffectiveCacheDisabled(t *testing.T) {
	cache, _ := newTestCache(t, 0)
	ctx := context.Background()

	cache.Set(ctx, 1, map[string]struct{}{"read_students": {}})
	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)

	// A nil cache behaves the same; the service passes nil when caching is off.
	var nilCache *EffectiveCache
	nilCache.Set(ctx, 1, nil)
	_, ok = nilCache.Get(ctx, 1)
	assert.False(t, ok)
	nilCache.InvalidateUser(ctx, 1)
}

func TestServiceUsesCacheUntilInvalidated(t *testing.T) {
	cache, _ := newTestCache(t, 10*time.Second)
	store := newMemStore()
	svc := NewService(store, cache)
	ctx := context.Background()

	_, err := svc.DefinePermission(ctx, "read_students", "students", "read", "")
	require.NoError(t, err)
	require.NoError(t, svc.SetRoleGrant(ctx, RoleTeacher, "read_students", true))

	p := Principal{ID: 9, Role: RoleTeacher, IsActive: true}
	effective, err := svc.EffectivePermissions(ctx, p)
	require.NoError(t, err)
	assert.Contains(t, effective, "read_students")

	// Store changes are invisible while the cached set lives...
	delete(store.roleGrants[RoleTeacher], store.perms["read_students"].ID)
	effective, err = svc.EffectivePermissions(ctx, p)
	require.NoError(t, err)
	assert.Contains(t, effective, "read_students")

	// ...but a user-grant write drops the user's entry immediately.
	_, err = svc.DefinePermission(ctx, "update_students", "students", "update", "")
	require.NoError(t, err)
	require.NoError(t, svc.SetUserGrant(ctx, p.ID, "update_students", true, 1))

	effective, err = svc.EffectivePermissions(ctx, p)
	require.NoError(t, err)
	assert.NotContains(t, effective, "read_students")
	assert.Contains(t, effective, "update_students")
}
