package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

// Limiter ограничивает частоту запросов по адресу клиента:
// token bucket на адрес, rps запросов в секунду с всплеском burst
type Limiter struct {
	log     *slog.Logger
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

func New(log *slog.Logger, rps int) *Limiter {
	return &Limiter{
		log:     log.With("component", "ratelimit"),
		buckets: make(map[string]*rate.Limiter),
		rps:     rate.Limit(rps),
		burst:   rps * 2,
	}
}

// Middleware возвращает middleware для Huma
func (l *Limiter) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		addr := ctx.RemoteAddr()
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}

		if !l.bucket(addr).Allow() {
			l.log.Debug("rate limit exceeded", "addr", addr)
			ctx.SetStatus(http.StatusTooManyRequests)
			ctx.SetHeader("Content-Type", "application/json")
			_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
				"error": "Too many requests",
			})
			return
		}

		next(ctx)
	}
}

func (l *Limiter) bucket(addr string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[addr]
	if !ok {
		b = rate.NewLimiter(l.rps, l.burst)
		l.buckets[addr] = b
	}
	return b
}
