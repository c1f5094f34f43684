package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	xerrors "WebTool-Platform/internal/errors"
	"WebTool-Platform/internal/observability/metrics"
	"WebTool-Platform/internal/schema"
)

// Middleware 按客户端 IP 限流。被拒绝的请求返回 429 与统一错误体；
// 限流器自身出错时放行请求并记录告警日志。
func Middleware(l Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			allowed, err := l.Allow(r.Context(), key)
			if err != nil {
				if log != nil {
					log.Warn("限流器不可用，放行请求", slog.String("client", key), slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.ObserveRateLimited()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(schema.Failure(xerrors.AttributesOf(xerrors.CodeRateLimited).Message, ""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP 从 RemoteAddr 中提取客户端地址。
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = strings.TrimSuffix(strings.TrimPrefix(r.RemoteAddr, "["), "]")
	}
	return ip
}
