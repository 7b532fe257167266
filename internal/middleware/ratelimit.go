package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	rateLimitPeriod = 1 * time.Minute
	rateLimitCount  = 5
)

// RateLimit caps requests per client IP using a Redis counter with expiry.
// A nil client disables limiting; Redis errors fail open so an outage never
// blocks logins.
func RateLimit(client *redis.Client, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate_limit:" + ip

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				logger.Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				client.Expire(r.Context(), key, rateLimitPeriod)
			}

			if count > rateLimitCount {
				logger.Warn().Str("ip", ip).Int64("count", count).Msg("rate limit exceeded")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
