package cancellation

import (
	"context"
	"encoding/json"
	"time"

	"staynest/models"

	"github.com/go-redis/redis/v8"
)

// blockCacheTTL bounds staleness of cached calendars when an invalidation is
// lost. Appends invalidate eagerly, so hits are normally current.
const blockCacheTTL = 5 * time.Minute

// BlockCache is a read-through cache of a listing's blocked-date entries.
type BlockCache interface {
	// GetBlocks returns the cached entries and whether the listing was cached.
	GetBlocks(ctx context.Context, listingID string) ([]models.BlockedDateEntry, bool)
	SetBlocks(ctx context.Context, listingID string, entries []models.BlockedDateEntry)
	Invalidate(ctx context.Context, listingID string)
}

// RedisBlockCache implements BlockCache on a Redis client. Cache errors are
// swallowed: a miss just falls through to the listing store.
type RedisBlockCache struct {
	Client *redis.Client
}

// NewRedisBlockCache returns a BlockCache backed by the given client.
func NewRedisBlockCache(client *redis.Client) *RedisBlockCache {
	return &RedisBlockCache{Client: client}
}

func blockCacheKey(listingID string) string {
	return "listing_blocks:" + listingID
}

func (c *RedisBlockCache) GetBlocks(ctx context.Context, listingID string) ([]models.BlockedDateEntry, bool) {
	raw, err := c.Client.Get(ctx, blockCacheKey(listingID)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []models.BlockedDateEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *RedisBlockCache) SetBlocks(ctx context.Context, listingID string, entries []models.BlockedDateEntry) {
	if entries == nil {
		entries = []models.BlockedDateEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	c.Client.Set(ctx, blockCacheKey(listingID), raw, blockCacheTTL)
}

func (c *RedisBlockCache) Invalidate(ctx context.Context, listingID string) {
	c.Client.Del(ctx, blockCacheKey(listingID))
}
