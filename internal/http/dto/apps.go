package dto

import (
	"time"

	"github.com/brouclean/helloauth/internal/domain"
)

// AppRequest is the app registration form.
type AppRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	BaseURL          string `json:"base_url"`
	RedirectEndpoint string `json:"redirect_endpoint,omitempty"`
	LogoEndpoint     string `json:"logo_endpoint,omitempty"`
	Secret           string `json:"secret"`
	TokenLifetime    int    `json:"token_lifetime"`
}

// ToApp maps the form onto a domain app with the given id.
func (in AppRequest) ToApp(id int64) domain.App {
	return domain.App{
		ID:               id,
		Name:             in.Name,
		Description:      in.Description,
		BaseURL:          in.BaseURL,
		RedirectEndpoint: in.RedirectEndpoint,
		LogoEndpoint:     in.LogoEndpoint,
		Secret:           in.Secret,
		TokenLifetime:    in.TokenLifetime,
	}
}

// AppResponse is the public registration shape. The signing secret
// never leaves the token layer.
type AppResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	BaseURL          string    `json:"base_url"`
	RedirectEndpoint string    `json:"redirect_endpoint,omitempty"`
	LogoEndpoint     string    `json:"logo_endpoint,omitempty"`
	RedirectURL      string    `json:"redirect_url"`
	LogoURL          string    `json:"logo_url"`
	TokenLifetime    int       `json:"token_lifetime"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
	OwnerID          string    `json:"owner_id,omitempty"`
}

// NewAppResponse maps a domain app.
func NewAppResponse(app domain.App) AppResponse {
	resp := AppResponse{
		ID:               app.ID,
		Name:             app.Name,
		Description:      app.Description,
		BaseURL:          app.BaseURL,
		RedirectEndpoint: app.RedirectEndpoint,
		LogoEndpoint:     app.LogoEndpoint,
		RedirectURL:      app.RedirectURL(),
		LogoURL:          app.LogoURL(),
		TokenLifetime:    app.TokenLifetime,
		CreatedAt:        app.CreatedAt,
	}
	if app.OwnerID != nil {
		resp.OwnerID = app.OwnerID.String()
	}
	return resp
}
