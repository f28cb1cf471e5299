// Package cache keeps a Redis seen-set in front of the database existence
// check. Purely an optimization: a cache miss falls through to the database,
// and the unique constraint there stays authoritative.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

type SeenCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func key(channelID int, externalID string) string {
	return fmt.Sprintf("hotdeal:seen:%d:%s", channelID, externalID)
}

// Seen reports whether the pair was recently persisted. Redis errors read as
// "not seen" so a cache outage never blocks ingestion.
func (c *SeenCache) Seen(ctx context.Context, channelID int, externalID string) bool {
	n, err := c.Client.Exists(ctx, key(channelID, externalID)).Result()
	return err == nil && n > 0
}

// Mark records the pair after a successful persist. Best effort.
func (c *SeenCache) Mark(ctx context.Context, channelID int, externalID string) {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c.Client.Set(ctx, key(channelID, externalID), "1", ttl)
}
