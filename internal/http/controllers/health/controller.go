// Package health exposes the liveness/readiness probes.
package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brouclean/helloauth/internal/http/helpers"
	"github.com/brouclean/helloauth/internal/store"
)

// Controller answers the probe endpoints.
type Controller struct {
	store store.Store
}

// NewController creates the health controller.
func NewController(st store.Store) *Controller {
	return &Controller{store: st}
}

// Register mounts the routes.
func (c *Controller) Register(r chi.Router) {
	r.Get("/healthz", c.handleLive)
	r.Get("/readyz", c.handleReady)
}

func (c *Controller) handleLive(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Controller) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Ping(r.Context()); err != nil {
		helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  "unreachable",
		})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
