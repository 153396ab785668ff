package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/opsboard/opsboard/internal/adapter/http/response"
	"github.com/opsboard/opsboard/internal/service/ratelimit"
)

// RateLimitMiddleware throttles a route by caller IP using the shared
// limiter. Applied to login and ingestion, the two endpoints reachable
// without a session.
type RateLimitMiddleware struct {
	limiter ratelimit.RateLimitService
	limit   int
	window  time.Duration
	prefix  string
}

func NewRateLimitMiddleware(limiter ratelimit.RateLimitService, limit int, window time.Duration, prefix string) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
	}
}

func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		allowed, err := m.limiter.Allow(r.Context(), m.prefix+":"+host, m.limit, m.window)
		if err != nil {
			// The limiter backend being down must not take the
			// endpoint with it.
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			response.TooManyRequests(w, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
