package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedUsers decorates a Gateway with a redis read-through cache for user
// lookups. User objects are fetched on every card render and transcript
// build; a short TTL keeps usernames fresh enough.
type CachedUsers struct {
	Gateway
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUsers wraps gw. A nil client disables caching.
func NewCachedUsers(gw Gateway, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedUsers {
	return &CachedUsers{Gateway: gw, client: client, ttl: ttl, logger: logger}
}

func (c *CachedUsers) User(ctx context.Context, userID string) (*User, error) {
	if c.client == nil {
		return c.Gateway.User(ctx, userID)
	}

	key := "user:" + userID
	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var user User
		if err := json.Unmarshal(cached, &user); err == nil {
			return &user, nil
		}
		// poisoned entry, fall through to refetch
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.logger.Debug("user cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	user, err := c.Gateway.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(user); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Debug("user cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return user, nil
}
