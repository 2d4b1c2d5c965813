package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dunamismax/skinflow/internal/ratelimit"
)

type RateLimiter interface {
	Take(ctx context.Context, subject string, cost int64) (ratelimit.Decision, error)
}

// routeCosts weights each limited route by how much rendering it triggers.
// A synchronous convert runs the full normalizer; jobs only enqueue work.
var routeCosts = map[string]int64{
	"/v1/jobs":            1,
	"/v1/jobs/{id}/start": 1,
	"/v1/skins/inspect":   2,
	"/v1/skins/head":      2,
	"/v1/skins/convert":   3,
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeLabel(r.URL.Path)
		cost, limited := routeCosts[route]
		if r.Method == http.MethodGet || !limited {
			next.ServeHTTP(w, r)
			return
		}

		subject := strings.TrimSpace(r.Header.Get(s.rateLimitUserIDHeader))
		if subject == "" {
			subject = "anonymous"
		}

		decision, err := s.rateLimiter.Take(r.Context(), subject, cost)
		if err != nil {
			s.logger.Printf("rate limiter check failed subject=%s route=%s err=%v", subject, route, err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if decision.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := max(int(decision.RetryAfter.Round(time.Second).Seconds()), 1)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		s.metrics.rateLimitRejected.WithLabelValues(route).Inc()
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": "rate limit exceeded",
		})
	})
}
