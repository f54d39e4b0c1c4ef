package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/esgproxy/backend/pkg/config"
)

// cacheTimeoutShare is the fraction of the market data timeout a cache round trip may take
const cacheTimeoutShare = 10

// minCacheTimeout keeps cache timeouts usable when MARKETDATA_TIMEOUT is small or unset
const minCacheTimeout = 200 * time.Millisecond

// Client is a go-redis client that may be disabled
// A disabled (or nil) client is valid; every operation on it is a no-op miss.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb *redis.Client
}

// New connects when REDIS_ENABLED is set, otherwise returns a disabled client
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	opts := Options(cfg)
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", opts.Addr, err)
	}
	return &Client{rdb: rdb}, nil
}

// Options builds go-redis options from config
// 캐시 왕복은 시세 조회 타임아웃의 1/10 이내
func Options(cfg *config.Config) *redis.Options {
	timeout := cfg.MarketData.Timeout / cacheTimeoutShare
	if timeout < minCacheTimeout {
		timeout = minCacheTimeout
	}
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  2 * timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
}

// Enabled reports whether operations reach Redis
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Close closes the connection pool
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

func (c *Client) get(ctx context.Context, key string) ([]byte, error) {
	return c.rdb.Get(ctx, key).Bytes()
}

func (c *Client) set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

func (c *Client) del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
