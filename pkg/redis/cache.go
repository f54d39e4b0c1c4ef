package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs by data kind
const (
	TTLLong  = 1 * time.Hour  // 일별 종가 시리즈
	TTLDaily = 24 * time.Hour // 재무 데이터
)

// Cache stores JSON values under "<prefix>:cache:<key>"
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a cache over client; a disabled client makes every call a miss
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Enabled reports whether reads and writes reach Redis
func (c *Cache) Enabled() bool {
	return c.client.Enabled()
}

func (c *Cache) key(key string) string {
	return c.prefix + ":cache:" + key
}

// Get decodes a cached value into dest; a miss returns (false, nil)
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	data, err := c.client.get(ctx, c.key(key))
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value as JSON with ttl
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.set(ctx, c.key(key), data, ttl)
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.del(ctx, c.key(key))
}

// SeriesKey identifies a cached price series
func SeriesKey(provider, ticker, from, to string) string {
	return strings.Join([]string{"series", provider, ticker, from, to}, ":")
}

// FundamentalsKey identifies cached fundamentals
func FundamentalsKey(provider, ticker string) string {
	return strings.Join([]string{"fundamentals", provider, ticker}, ":")
}
