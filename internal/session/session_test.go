package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brouclean/helloauth/internal/domain"
)

func authenticatorApp() domain.App {
	return domain.NewAuthenticatorApp(domain.AuthenticatorConfig{
		Name:             "helloauth",
		BaseURL:          "https://auth.example.com",
		RedirectEndpoint: "/home",
		Secret:           "authenticator-secret",
		TokenLifetime:    1800,
	})
}

func targetApp() domain.App {
	owner := uuid.New()
	return domain.App{
		ID:               3,
		Name:             "notes",
		BaseURL:          "https://notes.example.com/",
		RedirectEndpoint: "/welcome",
		Secret:           "notes-secret",
		TokenLifetime:    600,
		OwnerID:          &owner,
	}
}

func sampleUser() domain.User {
	return domain.User{
		ID:            uuid.New(),
		Name:          "Marcel",
		Mail:          "marcel@example.com",
		MailConfirmed: true,
	}
}

func TestIssueThenFromRequest(t *testing.T) {
	auth := authenticatorApp()
	m := NewManager(auth)
	user := sampleUser()

	rec := httptest.NewRecorder()
	redirect, err := m.Issue(rec, user, targetApp(), "")
	require.NoError(t, err)
	require.Equal(t, "https://notes.example.com/welcome", redirect)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	require.Equal(t, CookieName, ck.Name)
	require.Equal(t, "auth.example.com", ck.Domain)
	require.True(t, ck.Secure)
	require.True(t, ck.HttpOnly)
	require.Equal(t, auth.TokenLifetime, ck.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "https://auth.example.com/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: ck.Value})

	id, err := m.FromRequest(req)
	require.NoError(t, err)
	require.Equal(t, user.ID, id.UserID)
	require.Equal(t, user.Mail, id.Mail)
	require.Greater(t, id.SecondsToExpire, int64(0))
	// Session lifetime follows the authenticator, not the target app.
	require.LessOrEqual(t, id.SecondsToExpire, int64(auth.TokenLifetime))
}

func TestIssue_RequestedEndpointWins(t *testing.T) {
	m := NewManager(authenticatorApp())

	rec := httptest.NewRecorder()
	redirect, err := m.Issue(rec, sampleUser(), targetApp(), "/deep/link?x=1")
	require.NoError(t, err)
	require.Equal(t, "https://notes.example.com/deep/link?x=1", redirect)
}

func TestFromRequest_MissingCookie(t *testing.T) {
	m := NewManager(authenticatorApp())
	req := httptest.NewRequest(http.MethodGet, "https://auth.example.com/", nil)

	_, err := m.FromRequest(req)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFromRequest_GarbageCookie(t *testing.T) {
	m := NewManager(authenticatorApp())
	req := httptest.NewRequest(http.MethodGet, "https://auth.example.com/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-token"})

	_, err := m.FromRequest(req)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFromRequest_ExpiredSession(t *testing.T) {
	auth := authenticatorApp()
	past := time.Now().Add(-2 * time.Hour)
	issuer := NewManager(auth).WithClock(func() time.Time { return past })

	rec := httptest.NewRecorder()
	_, err := issuer.Issue(rec, sampleUser(), targetApp(), "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "https://auth.example.com/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: rec.Result().Cookies()[0].Value})

	_, err = NewManager(auth).FromRequest(req)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestClear(t *testing.T) {
	m := NewManager(authenticatorApp())

	rec := httptest.NewRecorder()
	redirect := m.Clear(rec)
	require.Equal(t, "/", redirect)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Equal(t, -1, cookies[0].MaxAge)
	require.Empty(t, cookies[0].Value)
}
