package geo

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache stores resolved coordinates. Entries are never invalidated.
type Cache interface {
	Get(ctx context.Context, key string) (*LocationInfo, bool)
	Put(ctx context.Context, key string, info *LocationInfo)
	Len() int
}

// MemoryCache is the in-process cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*LocationInfo
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]*LocationInfo)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*LocationInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.items[key]
	return info, ok
}

func (c *MemoryCache) Put(_ context.Context, key string, info *LocationInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		return
	}
	c.items[key] = info
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// RedisCache keeps the memory cache in front of a Redis hash so resolved
// coordinates survive restarts and can be shared between bot instances.
type RedisCache struct {
	mem    *MemoryCache
	client *redis.Client
	hash   string
}

func NewRedisCache(client *redis.Client, hash string) *RedisCache {
	if hash == "" {
		hash = "streakbot:geocode"
	}
	return &RedisCache{mem: NewMemoryCache(), client: client, hash: hash}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*LocationInfo, bool) {
	if info, ok := c.mem.Get(ctx, key); ok {
		return info, true
	}
	raw, err := c.client.HGet(ctx, c.hash, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("Redis geocode lookup failed")
		}
		return nil, false
	}
	var info LocationInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, false
	}
	c.mem.Put(ctx, key, &info)
	// 同時に別経路で入った値があればそちらを返す
	return c.mem.Get(ctx, key)
}

func (c *RedisCache) Put(ctx context.Context, key string, info *LocationInfo) {
	c.mem.Put(ctx, key, info)
	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.client.HSet(ctx, c.hash, key, raw).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis geocode store failed")
	}
}

func (c *RedisCache) Len() int {
	return c.mem.Len()
}

// OpenRedis parses a redis:// URL and pings the server.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
