package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brouclean/helloauth/internal/domain"
)

func TestEndpointJoin(t *testing.T) {
	cases := []struct {
		base, endpoint, want string
	}{
		{"https://app.example.com", "home", "https://app.example.com/home"},
		{"https://app.example.com/", "home", "https://app.example.com/home"},
		{"https://app.example.com", "/home", "https://app.example.com/home"},
		{"https://app.example.com/", "/home", "https://app.example.com/home"},
		{"https://app.example.com//", "//home", "https://app.example.com/home"},
		{"https://app.example.com/", "", "https://app.example.com"},
		{"https://app.example.com", "cb?result=ok", "https://app.example.com/cb?result=ok"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, domain.EndpointJoin(c.base, c.endpoint), "join(%q, %q)", c.base, c.endpoint)
	}
}

func TestAppRedirectAndLogoURLs(t *testing.T) {
	app := domain.App{
		BaseURL:          "https://app.example.com/",
		RedirectEndpoint: "/welcome",
		LogoEndpoint:     "assets/logo.png",
	}
	require.Equal(t, "https://app.example.com/welcome", app.RedirectURL())
	require.Equal(t, "https://app.example.com/assets/logo.png", app.LogoURL())

	require.Equal(t, "/assets/images/app.png", domain.App{BaseURL: "https://x.example"}.LogoURL())
}

func TestAppDomain(t *testing.T) {
	app := domain.App{BaseURL: "https://auth.example.com:8443/base"}
	host, err := app.Domain()
	require.NoError(t, err)
	require.Equal(t, "auth.example.com", host)

	for _, base := range []string{"", "not a url at all\x7f", "/relative/path", "https://"} {
		_, err := domain.App{BaseURL: base}.Domain()
		require.ErrorIs(t, err, domain.ErrAppInvalidURI, "base %q", base)
	}
}

func TestAuthenticatorApp(t *testing.T) {
	app := domain.NewAuthenticatorApp(domain.AuthenticatorConfig{
		Name:          "Brouclean",
		BaseURL:       "https://auth.example.com",
		Secret:        "s",
		TokenLifetime: 1800,
	})
	require.True(t, app.IsAuthenticator())
	require.False(t, app.IsNew())
	require.Nil(t, app.OwnerID)
	require.False(t, app.IsOwnedBy(uuid.New()))
}

func TestAppOwnership(t *testing.T) {
	owner := uuid.New()
	app := domain.App{ID: 3, OwnerID: &owner}
	require.True(t, app.IsOwnedBy(owner))
	require.False(t, app.IsOwnedBy(uuid.New()))
}
