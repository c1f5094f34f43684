package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter 在进程内为每个 key 维护一个令牌桶，适合单实例部署。
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	stop     context.CancelFunc
}

// NewMemory 创建进程内限流器，后台清理协程随 ctx 或 Close 退出。
func NewMemory(ctx context.Context, rps float64, burst int) *MemoryLimiter {
	if burst <= 0 {
		burst = 1
	}
	cleanupCtx, cancel := context.WithCancel(ctx)
	l := &MemoryLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		stop:     cancel,
	}
	go l.cleanup(cleanupCtx)
	return l
}

// Allow 消耗 key 对应令牌桶中的一个令牌。
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.visitor(key).Allow(), nil
}

func (l *MemoryLimiter) visitor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (l *MemoryLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evict(now)
		}
	}
}

// evict 删除超过 visitorTTL 未出现的 key。
func (l *MemoryLimiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

// Close 停止后台清理。
func (l *MemoryLimiter) Close() error {
	l.stop()
	return nil
}
