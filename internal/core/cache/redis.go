// Package cache is a read-through Redis cache. A nil *Cache is valid and
// means caching is disabled.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// 所有 key 都加这个前缀，和同库的其他应用隔开
const prefix = "1ps:"

var lookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{Namespace: "oneps", Name: "cache_lookups_total", Help: "Read-through cache lookups by result"},
	[]string{"result"}, // hit | miss | error
)

func init() { prometheus.MustRegister(lookups) }

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

// New addr 为空返回 nil（禁用缓存）
func New(addr, pass string, db int) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		RDB: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     pass,
			DB:           db,
			DialTimeout:  time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		}),
	}
}

func (c *Cache) enabled() bool { return c != nil && c.RDB != nil }

// GetOrLoad Redis 出错时直接回源，不影响请求
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if !c.enabled() {
		return load(ctx)
	}
	b, err := c.RDB.Get(ctx, prefix+key).Bytes()
	switch {
	case err == nil:
		lookups.WithLabelValues("hit").Inc()
		return b, nil
	case errors.Is(err, redis.Nil):
		lookups.WithLabelValues("miss").Inc()
	default:
		lookups.WithLabelValues("error").Inc()
		return load(ctx)
	}
	// 同一个 key 的并发未命中只回源一次
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.RDB.Set(ctx, prefix+key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Del 写操作后失效相关 key；Redis 不可用时返回错误，由调用方记录
func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = prefix + k
	}
	return c.RDB.Del(ctx, full...).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.RDB.Close()
}
