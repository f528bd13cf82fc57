package authorize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
)

type fakeApps map[int64]domain.App

func (f fakeApps) Get(_ context.Context, id int64) (domain.App, error) {
	app, ok := f[id]
	if !ok {
		return domain.App{}, repository.ErrNotFound
	}
	return app, nil
}

func registeredApp() domain.App {
	return domain.App{
		ID:               7,
		Name:             "notes",
		BaseURL:          "https://app.example",
		RedirectEndpoint: "/cb",
		Secret:           "notes-secret",
		TokenLifetime:    600,
	}
}

func validRequest() Request {
	return Request{
		Scope:        "openid profile",
		ResponseType: "code",
		ClientID:     "7",
		RedirectURI:  "https://app.example/cb",
	}
}

func newTestService() Service {
	return NewService(Deps{Apps: fakeApps{7: registeredApp()}})
}

func asError(t *testing.T, err error) *Error {
	t.Helper()
	oe, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T", err)
	return oe
}

func TestAuthorize_SignedInRedirects(t *testing.T) {
	res, err := newTestService().Authorize(context.Background(), validRequest(), true, "/authorize?x=1")
	require.NoError(t, err)
	require.Equal(t, ResultRedirect, res.Kind)
	require.Equal(t, int64(7), res.App.ID)
	require.Equal(t, "https://app.example/cb?result=ok", res.RedirectTarget)
}

func TestAuthorize_AnonymousPrompts(t *testing.T) {
	requestURI := "/authorize?scope=openid&response_type=code&client_id=7&redirect_uri=https%3A%2F%2Fapp.example%2Fcb"
	res, err := newTestService().Authorize(context.Background(), validRequest(), false, requestURI)
	require.NoError(t, err)
	require.Equal(t, ResultPrompt, res.Kind)
	require.Equal(t, int64(7), res.App.ID)
	require.Equal(t, requestURI, res.RequestedEndpoint)
}

func TestAuthorize_MissingRedirectURI(t *testing.T) {
	req := validRequest()
	req.RedirectURI = ""
	_, err := newTestService().Authorize(context.Background(), req, true, "/")
	oe := asError(t, err)
	require.Equal(t, CodeInvalidRequest, oe.Code)
	require.False(t, oe.Redirectable())
}

func TestAuthorize_RelativeRedirectURI(t *testing.T) {
	// A relative target would resolve against our own origin if a later
	// check tried to redirect an error to it.
	for _, raw := range []string{"cb", "/cb", "//app.example/cb", "app.example/cb"} {
		req := validRequest()
		req.RedirectURI = raw
		req.Scope = "profile"
		_, err := newTestService().Authorize(context.Background(), req, true, "/")
		oe := asError(t, err)
		require.Equal(t, CodeInvalidRequest, oe.Code, "redirect_uri %q", raw)
		require.False(t, oe.Redirectable())
	}
}

func TestAuthorize_OrderingInvalidRequestBeforeScope(t *testing.T) {
	// Both redirect_uri and scope are broken; the redirect check must
	// fail first.
	req := validRequest()
	req.RedirectURI = ""
	req.Scope = "profile"
	_, err := newTestService().Authorize(context.Background(), req, true, "/")
	require.Equal(t, CodeInvalidRequest, asError(t, err).Code)
}

func TestAuthorize_UnsupportedResponseType(t *testing.T) {
	req := validRequest()
	req.ResponseType = "token"
	_, err := newTestService().Authorize(context.Background(), req, true, "/")
	oe := asError(t, err)
	require.Equal(t, CodeUnsupportedResponseType, oe.Code)
	require.True(t, oe.Redirectable())
	require.Equal(t, "https://app.example/cb?error=unsupported_response_type", oe.RedirectTarget())
}

func TestAuthorize_InvalidScope(t *testing.T) {
	req := validRequest()
	req.Scope = "profile email"
	_, err := newTestService().Authorize(context.Background(), req, true, "/")
	oe := asError(t, err)
	require.Equal(t, CodeInvalidScope, oe.Code)
	require.True(t, oe.Redirectable())
	require.Equal(t, "https://app.example/cb?error=invalid_scope", oe.RedirectTarget())
}

func TestAuthorize_UnknownClient(t *testing.T) {
	req := validRequest()
	req.ClientID = "99"
	_, err := newTestService().Authorize(context.Background(), req, true, "/")
	oe := asError(t, err)
	require.Equal(t, CodeUnauthorizedClient, oe.Code)
	require.False(t, oe.Redirectable())
}

func TestAuthorize_UnparsableClient(t *testing.T) {
	req := validRequest()
	req.ClientID = "not-a-number"
	_, err := newTestService().Authorize(context.Background(), req, true, "/")
	require.Equal(t, CodeUnauthorizedClient, asError(t, err).Code)
}

func TestAuthorize_RedirectMismatchNeverRedirects(t *testing.T) {
	// The registered redirect is https://app.example/cb; an attacker
	// supplies its own. The failure must not use the supplied URI.
	req := validRequest()
	req.RedirectURI = "https://evil.example/cb"
	_, err := newTestService().Authorize(context.Background(), req, true, "/")
	oe := asError(t, err)
	require.Equal(t, CodeUnauthorizedClient, oe.Code)
	require.False(t, oe.Redirectable())
	require.NotContains(t, oe.RedirectTarget(), "evil.example")
}

func TestAuthorize_ResponseTypeCheckedBeforeClient(t *testing.T) {
	req := validRequest()
	req.ResponseType = "token"
	req.ClientID = "99"
	_, err := newTestService().Authorize(context.Background(), req, true, "/")
	require.Equal(t, CodeUnsupportedResponseType, asError(t, err).Code)
}
