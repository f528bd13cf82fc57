// Package appsctl exposes the app registration CRUD and the identity
// token handoff.
package appsctl

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brouclean/helloauth/internal/access"
	"github.com/brouclean/helloauth/internal/apps"
	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/http/dto"
	httperrors "github.com/brouclean/helloauth/internal/http/errors"
	"github.com/brouclean/helloauth/internal/http/helpers"
	"github.com/brouclean/helloauth/internal/http/middlewares"
	"github.com/brouclean/helloauth/internal/metrics"
	"github.com/brouclean/helloauth/internal/token"
)

// Controller wires the app registry to HTTP.
type Controller struct {
	registry *apps.Registry
}

// Deps contains the controller dependencies.
type Deps struct {
	Registry *apps.Registry
}

// NewController creates the apps controller.
func NewController(d Deps) *Controller {
	return &Controller{registry: d.Registry}
}

// Register mounts the routes.
func (c *Controller) Register(r chi.Router) {
	r.Route("/apps", func(r chi.Router) {
		r.Get("/", c.handleList)
		r.Post("/", c.handleCreate)
		r.Get("/{id}", c.handleGet)
		r.Put("/{id}", c.handleUpdate)
		r.Post("/{id}/token", c.handleIssueToken)
	})
}

func (c *Controller) handleList(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}

	owned, err := c.registry.ListOwnedBy(r.Context(), id.UserID, id.Mail)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	resp := make([]dto.AppResponse, 0, len(owned))
	for _, app := range owned {
		resp = append(resp, dto.NewAppResponse(app))
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func (c *Controller) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}
	if !access.CanCreate(id.UserID) {
		httperrors.WriteError(w, httperrors.ErrForbidden)
		return
	}

	var in dto.AppRequest
	if !helpers.ReadJSON(w, r, &in) {
		return
	}
	if err := validateAppRequest(in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	created, err := c.registry.Create(r.Context(), in.ToApp(-1), id.UserID)
	if err != nil {
		httperrors.WriteError(w, mapRegistryError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.NewAppResponse(created))
}

func (c *Controller) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}

	appID, err := pathAppID(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	app, err := c.registry.Get(r.Context(), appID)
	if err != nil {
		httperrors.WriteError(w, mapRegistryError(err))
		return
	}
	if !access.CanRead(app, id.UserID) {
		httperrors.WriteError(w, httperrors.ErrForbidden)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewAppResponse(app))
}

func (c *Controller) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}

	appID, err := pathAppID(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	current, err := c.registry.Get(r.Context(), appID)
	if err != nil {
		httperrors.WriteError(w, mapRegistryError(err))
		return
	}
	if !access.CanUpdate(current, id.UserID) {
		httperrors.WriteError(w, httperrors.ErrForbidden)
		return
	}

	var in dto.AppRequest
	if !helpers.ReadJSON(w, r, &in) {
		return
	}
	if err := validateAppRequest(in); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	next := in.ToApp(appID)
	next.OwnerID = current.OwnerID
	next.CreatedAt = current.CreatedAt
	if next.Secret == "" {
		next.Secret = current.Secret
	}

	updated, err := c.registry.Update(r.Context(), next)
	if err != nil {
		httperrors.WriteError(w, mapRegistryError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewAppResponse(updated))
}

// TokenResponse hands an identity token to a signed-in user heading
// into an app.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// handleIssueToken mints an identity token audienced to the app, signed
// with the app's own secret, for the caller's account. The relying
// party verifies it with the secret it registered.
func (c *Controller) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}

	appID, err := pathAppID(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	app, err := c.registry.Get(r.Context(), appID)
	if err != nil {
		httperrors.WriteError(w, mapRegistryError(err))
		return
	}

	user := domain.User{
		ID:            id.UserID,
		Name:          id.Name,
		Mail:          id.Mail,
		AvatarURL:     id.Avatar,
		MailConfirmed: id.MailConfirmed,
	}
	if id.Birthday != "" {
		if bd, err := domain.ParseBirthday(id.Birthday); err == nil {
			user.Birthday = bd
		}
	}

	tk, err := token.NewFactory(c.registry.Authenticator(), app).IssueIdentity(user)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	metrics.TokensIssuedTotal.WithLabelValues("identity").Inc()

	helpers.WriteJSON(w, http.StatusOK, TokenResponse{
		Token:     tk.Signed,
		ExpiresIn: app.TokenLifetime,
	})
}

func pathAppID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, httperrors.ErrBadRequest.WithDetail("app id must be an integer")
	}
	return id, nil
}

func validateAppRequest(in dto.AppRequest) error {
	if in.Name == "" || in.BaseURL == "" || in.Secret == "" {
		return httperrors.ErrBadRequest.WithDetail("name, base_url and secret are required")
	}
	if in.TokenLifetime <= 0 {
		return httperrors.ErrBadRequest.WithDetail("token_lifetime must be positive")
	}
	return nil
}

func mapRegistryError(err error) error {
	switch {
	case repository.IsNotFound(err):
		return httperrors.ErrNotFound.WithDetail("unknown app")
	case repository.IsConflict(err):
		return httperrors.ErrConflict
	case err == domain.ErrAppInvalidURI:
		return httperrors.New(http.StatusBadRequest, "app_invalid_uri", "base_url must be an absolute URL with a host")
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
