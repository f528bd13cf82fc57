package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/session"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxIdentityKey  ctxKey = "identity"
)

// WithRequestContext assigns a request id and puts a request-scoped
// logger into the context. Everything downstream logs through it.
func WithRequestContext() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			log := logger.L().With(
				logger.RequestID(requestID),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)

			ctx := context.WithValue(r.Context(), ctxRequestIDKey, requestID)
			ctx = logger.ToContext(ctx, log)

			w.Header().Set("X-Request-Id", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request id, or "" outside the middleware.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithIdentity resolves the session cookie once per request and parks
// the identity in the context. Anonymous requests pass through; the
// controllers decide whether identity is required.
func WithIdentity(sessions *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := sessions.FromRequest(r); err == nil {
				ctx := context.WithValue(r.Context(), ctxIdentityKey, id)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity returns the authenticated identity, if any.
func GetIdentity(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey).(session.Identity)
	return id, ok
}
