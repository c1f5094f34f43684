package ratelimit

import (
	"context"
	"fmt"
	"io"

	"WebTool-Platform/internal/config"
)

// Limiter 判断某个调用方的请求是否放行。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New 根据配置创建限流器。driver 为空时返回 nil，表示不限流。
func New(ctx context.Context, cfg config.RateLimitConfig) (Limiter, io.Closer, error) {
	switch cfg.Driver {
	case "":
		return nil, nopCloser{}, nil
	case "memory":
		l := NewMemory(ctx, cfg.RequestsPerSecond, cfg.Burst)
		return l, l, nil
	case "redis":
		l, err := NewRedis(ctx, RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			Rate:     cfg.RequestsPerSecond,
			Burst:    cfg.Burst,
		})
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	default:
		return nil, nil, fmt.Errorf("不支持的限流驱动: %s", cfg.Driver)
	}
}
