package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucket 在 Redis 中原子地执行令牌桶算法。
// KEYS[1] 为桶的 key；ARGV 依次为每秒补充速率、容量、消耗数量与当前时间（秒）。
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local cost = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local state = redis.call("HMGET", key, "tokens", "last_refill")
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if not tokens or not last_refill then
    tokens = capacity
    last_refill = now
end

local elapsed = now - last_refill
if elapsed > 0 then
    tokens = math.min(capacity, tokens + elapsed * rate)
    last_refill = now
end

local allowed = 0
if tokens >= cost then
    tokens = tokens - cost
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_refill", last_refill)
redis.call("EXPIRE", key, 60)

return allowed
`)

// RedisOptions 描述 Redis 限流器的连接与配额。
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	Rate     float64
	Burst    int
}

// RedisLimiter 通过 Redis 共享令牌桶，适合多实例部署。
type RedisLimiter struct {
	client *redis.Client
	prefix string
	rate   float64
	burst  int
	now    func() time.Time
}

// NewRedis 连接 Redis 并创建限流器。
func NewRedis(ctx context.Context, opts RedisOptions) (*RedisLimiter, error) {
	if opts.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return newRedisLimiter(client, opts), nil
}

func newRedisLimiter(client *redis.Client, opts RedisOptions) *RedisLimiter {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "webtool:ratelimit"
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	rate := opts.Rate
	if rate <= 0 {
		rate = 1
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RedisLimiter{client: client, prefix: prefix, rate: rate, burst: burst, now: time.Now}
}

// Allow 在 Redis 中消耗 key 对应的一个令牌。
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(l.now().UnixMicro()) / 1e6
	allowed, err := tokenBucket.Run(ctx, l.client, []string{l.prefix + key}, l.rate, l.burst, 1, now).Int64()
	if err != nil {
		return false, fmt.Errorf("Redis 限流失败: %w", err)
	}
	return allowed == 1, nil
}

// Close 关闭 Redis 连接。
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
