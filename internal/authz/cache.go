package authz

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// EffectiveCache holds resolved effective-permission sets for a short TTL.
// User-grant writes invalidate the affected user eagerly; role-grant writes
// rely on TTL expiry, which bounds staleness to a few seconds.
type EffectiveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEffectiveCache constructs a cache with the given TTL. A zero TTL
// disables caching entirely.
func NewEffectiveCache(client *redis.Client, ttl time.Duration) *EffectiveCache {
	return &EffectiveCache{client: client, ttl: ttl}
}

func (c *EffectiveCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached effective set for a user, or ok=false on miss.
func (c *EffectiveCache) Get(ctx context.Context, userID int64) (map[string]struct{}, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, false
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, true
}

// Set stores the effective set for a user.
func (c *EffectiveCache) Set(ctx context.Context, userID int64, effective map[string]struct{}) {
	if !c.enabled() {
		return
	}
	names := make([]string, 0, len(effective))
	for n := range effective {
		names = append(names, n)
	}
	data, err := json.Marshal(names)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(userID), data, c.ttl).Err()
}

// InvalidateUser drops the cached set for one user.
func (c *EffectiveCache) InvalidateUser(ctx context.Context, userID int64) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return
	}
}

func (c *EffectiveCache) key(userID int64) string {
	return "authz:effective:" + strconv.FormatInt(userID, 10)
}
