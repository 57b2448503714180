package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/doimih/mini-crm/internal/httpx"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

// RateLimitStore is the subset of redis commands the limiter uses. Satisfied
// by *redis.Client.
type RateLimitStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RateLimiter applies a fixed-window per-IP limit to the unauthenticated
// auth endpoints. It fails open: Redis being unreachable must never block
// authentication.
type RateLimiter struct {
	client   RateLimitStore
	requests int
	window   time.Duration
	logger   *slog.Logger
}

// NewRateLimiter creates a Redis-backed fixed-window limiter.
func NewRateLimiter(client RateLimitStore, requests int, window time.Duration, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		client:   client,
		requests: requests,
		window:   window,
		logger:   logger,
	}
}

// Limit returns a middleware keyed by operation name and client IP.
func (l *RateLimiter) Limit(op string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, _ := humachi.Unwrap(ctx)

		key := fmt.Sprintf("ratelimit:%s:%s", op, clientIP(r))

		count, err := l.client.Incr(r.Context(), key).Result()
		if err != nil {
			l.logger.Warn("rate limiter unavailable, failing open", "error", err)
			next(ctx)
			return
		}
		if count == 1 {
			if err := l.client.Expire(r.Context(), key, l.window).Err(); err != nil {
				// A counter without a TTL would limit this IP forever, so
				// drop it and fail open.
				l.logger.Warn("rate limiter could not start window, failing open", "error", err)
				l.client.Del(r.Context(), key)
				next(ctx)
				return
			}
		}

		if count > int64(l.requests) {
			retryAfter := l.window
			if ttl, err := l.client.TTL(r.Context(), key).Result(); err == nil && ttl > 0 {
				retryAfter = ttl
			}
			l.writeTooManyRequests(ctx, r, retryAfter)
			return
		}

		next(ctx)
	}
}

func (l *RateLimiter) writeTooManyRequests(ctx huma.Context, r *http.Request, retryAfter time.Duration) {
	_, w := humachi.Unwrap(ctx)

	p := &httpx.Problem{
		Type:      "urn:problem:rate-limited",
		Title:     http.StatusText(http.StatusTooManyRequests),
		Status:    http.StatusTooManyRequests,
		Detail:    "too many requests, please try again later",
		Code:      "ErrRateLimited",
		RequestID: chimw.GetReqID(r.Context()),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	w.WriteHeader(p.GetStatus())
	_ = json.NewEncoder(w).Encode(p)
}

// clientIP relies on chi's RealIP middleware having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
