package cache

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RankCache memoizes rider ranking responses in Redis for a few seconds per
// geohash cell, so a burst of riders at one stop does not recompute the same
// list. A nil *RankCache is valid and does nothing.
type RankCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// InitRankCache connects to Redis. It returns nil, disabling the cache, when
// no address is configured or the server is unreachable; ranking works the
// same either way.
func InitRankCache(addr, password string, db int, ttl time.Duration) *RankCache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("WARNING: Redis unreachable at %s, rank cache disabled: %v", addr, err)
		return nil
	}
	log.Println("Connected to Redis, rank cache enabled.")
	return &RankCache{rdb: rdb, ttl: ttl}
}

func (c *RankCache) Get(ctx context.Context, cell string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, "rank:"+cell).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RankCache) Set(ctx context.Context, cell string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, "rank:"+cell, payload, c.ttl).Err(); err != nil {
		log.Printf("WARNING: rank cache write failed: %v", err)
	}
}
