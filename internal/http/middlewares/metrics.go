package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brouclean/helloauth/internal/metrics"
	"github.com/brouclean/helloauth/internal/observability/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// WithMetrics records request counts and latency, labeled by the chi
// route pattern so path parameters don't explode cardinality.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					path = p
				}
			}
			elapsed := time.Since(start)
			metrics.HTTPRequestsTotal.
				WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			metrics.HTTPRequestDuration.
				WithLabelValues(r.Method, path).Observe(elapsed.Seconds())

			logger.From(r.Context()).Debug("request completed",
				logger.Status(rec.status), logger.Duration(elapsed))
		})
	}
}
