package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/creamcroissant/sub2xray/internal/cache"
)

// RateLimitConfig 配置按客户端限流，用于会触发上游拉取的接口。
type RateLimitConfig struct {
	Store  cache.Store
	Limit  int
	Window time.Duration
	// KeyFunc 默认取 RemoteAddr 的主机部分（RealIP 之后即为真实来源）。
	KeyFunc func(*http.Request) string
	Logger  *slog.Logger
}

// RateLimit 超过限额时返回 429，并附带 X-RateLimit-* 与 Retry-After 头。
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Limit <= 0 {
		cfg.Limit = 6
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	if cfg.Store == nil {
		cfg.Store = cache.NewStore(cache.Options{DefaultTTL: cfg.Window})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	store := cfg.Store.Namespace("rate")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.URL.Path + "|" + cfg.KeyFunc(r)
			count, err := store.Increment(r.Context(), key, 1, cfg.Window)
			if err != nil {
				// 计数失败时放行
				cfg.Logger.Warn("rate limit counter failed", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.Limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			reset := cfg.Window
			if ttl, ok := store.TTL(r.Context(), key); ok {
				reset = ttl
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

			if count > int64(cfg.Limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
