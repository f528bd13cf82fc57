// Package oauth exposes the authorize endpoint of the redirect flow.
package oauth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/brouclean/helloauth/internal/authorize"
	"github.com/brouclean/helloauth/internal/http/dto"
	httperrors "github.com/brouclean/helloauth/internal/http/errors"
	"github.com/brouclean/helloauth/internal/http/helpers"
	"github.com/brouclean/helloauth/internal/http/middlewares"
	"github.com/brouclean/helloauth/internal/metrics"
	"github.com/brouclean/helloauth/internal/observability/logger"
)

// Controller wires the authorize validator to HTTP.
type Controller struct {
	authorize authorize.Service
}

// Deps contains the controller dependencies.
type Deps struct {
	Authorize authorize.Service
}

// NewController creates the oauth controller.
func NewController(d Deps) *Controller {
	return &Controller{authorize: d.Authorize}
}

// Register mounts the routes. The endpoint accepts both query and form
// encodings.
func (c *Controller) Register(r chi.Router) {
	r.Get("/authorize", c.handleAuthorize)
	r.Post("/authorize", c.handleAuthorize)
}

// PromptResponse tells an unauthenticated caller to sign in and where
// to resume afterwards.
type PromptResponse struct {
	App               dto.AppResponse `json:"app"`
	SignIn            string          `json:"sign_in"`
	RequestedEndpoint string          `json:"requested_endpoint"`
}

func (c *Controller) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	req := authorizeRequest(r)
	_, signedIn := middlewares.GetIdentity(r.Context())

	res, err := c.authorize.Authorize(r.Context(), req, signedIn, r.URL.RequestURI())
	if err != nil {
		c.writeAuthorizeError(w, r, err)
		return
	}

	switch res.Kind {
	case authorize.ResultRedirect:
		metrics.AuthorizeRequestsTotal.WithLabelValues("redirect").Inc()
		http.Redirect(w, r, res.RedirectTarget, http.StatusFound)
	case authorize.ResultPrompt:
		metrics.AuthorizeRequestsTotal.WithLabelValues("prompt").Inc()
		helpers.WriteJSON(w, http.StatusOK, PromptResponse{
			App: dto.NewAppResponse(res.App),
			SignIn: fmt.Sprintf("/signin?app_id=%d&requested_endpoint=%s",
				res.App.ID, url.QueryEscape(res.RequestedEndpoint)),
			RequestedEndpoint: res.RequestedEndpoint,
		})
	}
}

// writeAuthorizeError redirects classified errors back to the relying
// party when the target is trusted, otherwise answers locally.
func (c *Controller) writeAuthorizeError(w http.ResponseWriter, r *http.Request, err error) {
	var oerr *authorize.Error
	if !errors.As(err, &oerr) {
		metrics.AuthorizeRequestsTotal.WithLabelValues("error").Inc()
		httperrors.WriteError(w, err)
		return
	}

	metrics.AuthorizeRequestsTotal.WithLabelValues(string(oerr.Code)).Inc()
	if oerr.Redirectable() {
		http.Redirect(w, r, oerr.RedirectTarget(), http.StatusFound)
		return
	}
	httperrors.WriteError(w,
		httperrors.New(http.StatusBadRequest, string(oerr.Code), "authorization request rejected"))
}

// authorizeRequest reads the parameters from the query string or, for
// POST, the form body. Form values win on conflict.
func authorizeRequest(r *http.Request) authorize.Request {
	get := r.URL.Query().Get
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			// Fall through with whatever parsed; the validator rejects
			// the incomplete request.
			logger.From(r.Context()).Debug("authorize form unreadable", logger.Err(err))
		}
		get = r.Form.Get
	}
	return authorize.Request{
		Scope:        get("scope"),
		ResponseType: get("response_type"),
		ClientID:     get("client_id"),
		RedirectURI:  get("redirect_uri"),
	}
}
