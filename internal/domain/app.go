package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthenticatorAppID is the reserved id of the authenticator itself.
// App 0 lives in config, not in the apps table.
const AuthenticatorAppID int64 = 0

// App is a relying party allowed to receive identity tokens.
type App struct {
	ID               int64
	Name             string
	Description      string
	BaseURL          string
	RedirectEndpoint string
	LogoEndpoint     string
	Secret           string
	TokenLifetime    int // seconds
	CreatedAt        time.Time
	OwnerID          *uuid.UUID // nil for the authenticator app
}

// AuthenticatorConfig carries the startup values for app 0.
type AuthenticatorConfig struct {
	Name             string
	Description      string
	BaseURL          string
	RedirectEndpoint string
	LogoEndpoint     string
	Secret           string
	TokenLifetime    int
	OwnerMail        string
}

// NewAuthenticatorApp builds the immutable app 0 from configuration.
func NewAuthenticatorApp(cfg AuthenticatorConfig) App {
	return App{
		ID:               AuthenticatorAppID,
		Name:             cfg.Name,
		Description:      cfg.Description,
		BaseURL:          cfg.BaseURL,
		RedirectEndpoint: cfg.RedirectEndpoint,
		LogoEndpoint:     cfg.LogoEndpoint,
		Secret:           cfg.Secret,
		TokenLifetime:    cfg.TokenLifetime,
	}
}

// IsAuthenticator reports whether this is app 0.
func (a App) IsAuthenticator() bool {
	return a.ID == AuthenticatorAppID
}

// IsNew reports whether the app has not been persisted yet.
func (a App) IsNew() bool {
	return a.ID < 0
}

// IsOwnedBy reports whether userID owns the app. The authenticator app has
// no owner and always returns false.
func (a App) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID != nil && *a.OwnerID == userID
}

// Domain returns the host of BaseURL, used as the secure cookie domain.
func (a App) Domain() (string, error) {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return "", ErrAppInvalidURI
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return "", ErrAppInvalidURI
	}
	return u.Hostname(), nil
}

// RedirectURL is the absolute URL users are sent to after sign-in.
func (a App) RedirectURL() string {
	return EndpointJoin(a.BaseURL, a.RedirectEndpoint)
}

// LogoURL is the absolute logo URL, or a placeholder when unset.
func (a App) LogoURL() string {
	if a.BaseURL == "" || a.LogoEndpoint == "" {
		return "/assets/images/app.png"
	}
	return EndpointJoin(a.BaseURL, a.LogoEndpoint)
}

// EndpointJoin concatenates a base URL and an endpoint with exactly one
// slash between them, whatever each side already carries.
func EndpointJoin(base, endpoint string) string {
	if endpoint == "" {
		return strings.TrimRight(base, "/")
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}
