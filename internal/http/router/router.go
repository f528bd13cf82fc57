// Package router assembles the route tree and middleware stack.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brouclean/helloauth/internal/http/middlewares"
	"github.com/brouclean/helloauth/internal/metrics"
	"github.com/brouclean/helloauth/internal/session"
)

// Controller mounts its routes on a chi router.
type Controller interface {
	Register(r chi.Router)
}

// Deps contains everything the router needs.
type Deps struct {
	Sessions    *session.Manager
	Controllers []Controller

	// MetricsEnabled mounts /metrics.
	MetricsEnabled bool
}

// New builds the full handler: common middleware stack, then every
// controller's routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewares.WithRequestContext(),
		middlewares.WithRecover(),
		middlewares.WithSecurityHeaders(),
		middlewares.WithMetrics(),
		middlewares.WithIdentity(d.Sessions),
	)

	for _, c := range d.Controllers {
		c.Register(r)
	}

	if d.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	return r
}
