package middlewares

import (
	"net/http"
	"strconv"

	"github.com/brouclean/helloauth/internal/http/errors"
	"github.com/brouclean/helloauth/internal/http/helpers"
	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/rate"
)

// WithRateLimit throttles a route by client IP. A broken limiter
// backend fails open: rejecting sign-ins because Redis is down would be
// a worse outage.
func WithRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), helpers.ClientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After",
					strconv.Itoa(int(res.RetryAfter.Seconds())+1))
				errors.WriteError(w, errors.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
