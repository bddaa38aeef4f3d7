package cache

import (
	"context"
	"encoding/json"
	"time"
)

// LoadJSON 读穿缓存，值以 JSON 存放。缓存里的坏数据按未命中处理
func LoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var out T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		_ = c.Del(ctx, key)
		return load(ctx)
	}
	return out, nil
}
