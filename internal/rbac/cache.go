package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleCache memoizes resolved role sets in Redis so the permission middleware
// does not hit Postgres on every request. Entries expire after the configured
// TTL and are invalidated eagerly on role mutation.
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache constructs a RoleCache. A nil client disables caching.
func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{client: client, ttl: ttl}
}

// Get returns the cached role set for a user, if present.
func (c *RoleCache) Get(ctx context.Context, userID string) ([]Role, bool) {
	if c == nil || c.client == nil {
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
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		if role, ok := ParseRole(name); ok {
			roles = append(roles, role)
		}
	}
	return roles, true
}

// Set stores the role set for a user.
func (c *RoleCache) Set(ctx context.Context, userID string, roles []Role) {
	if c == nil || c.client == nil {
		return
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	data, err := json.Marshal(names)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(userID), data, c.ttl).Err()
}

// Invalidate drops the cached role set for a user.
func (c *RoleCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (c *RoleCache) key(userID string) string {
	return "rbac:roles:" + userID
}
