// Package session owns the authenticator's browser credential: a signed
// cookie on the authenticator's own domain holding the latest session
// token.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/token"
)

// CookieName is the one client-visible piece of state this service owns.
const CookieName = "session_token"

// ErrUnauthenticated is the single failure mode of extraction. Missing
// cookie, expired token and bad signature all collapse into it so the
// response never reveals whether a token existed.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the decoded session presented to handlers.
type Identity struct {
	UserID          uuid.UUID
	Name            string
	Mail            string
	Avatar          string
	Birthday        string
	MailConfirmed   bool
	SecondsToExpire int64
}

// Manager implements the cookie lifecycle.
type Manager struct {
	authenticator domain.App
	now           func() time.Time
}

// NewManager builds a Manager for the configured authenticator app.
func NewManager(authenticator domain.App) *Manager {
	return &Manager{authenticator: authenticator, now: time.Now}
}

// WithClock replaces the clock. Tests only.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// FromRequest answers "is this request authenticated, and as whom".
func (m *Manager) FromRequest(r *http.Request) (Identity, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return Identity{}, ErrUnauthenticated
	}

	claims, err := token.ForAuthenticator(m.authenticator).ExtractSession(ck.Value)
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}
	userID, err := claims.UserID()
	if err != nil {
		return Identity{}, ErrUnauthenticated
	}

	return Identity{
		UserID:          userID,
		Name:            claims.Name,
		Mail:            claims.Mail,
		Avatar:          claims.Avatar,
		Birthday:        claims.Birthday,
		MailConfirmed:   claims.MailConfirmed,
		SecondsToExpire: claims.SecondsToExpire(m.now()),
	}, nil
}

// Issue mints a session token through the factory bound to targetApp,
// attaches the cookie and returns where the browser should be sent: the
// requested endpoint when present, the app's default redirect otherwise.
func (m *Manager) Issue(w http.ResponseWriter, user domain.User, targetApp domain.App, requestedEndpoint string) (string, error) {
	domainName, err := m.authenticator.Domain()
	if err != nil {
		return "", err
	}

	tk, err := token.NewFactory(m.authenticator, targetApp).WithClock(m.now).IssueSession(user)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tk.Signed,
		Domain:   domainName,
		Path:     "/",
		MaxAge:   m.authenticator.TokenLifetime,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Named("session").Debug("session issued",
		logger.UserID(user.ID.String()), logger.AppID(targetApp.ID))

	if requestedEndpoint != "" {
		return domain.EndpointJoin(targetApp.BaseURL, requestedEndpoint), nil
	}
	return targetApp.RedirectURL(), nil
}

// Clear drops the cookie and sends the browser home.
func (m *Manager) Clear(w http.ResponseWriter) string {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return "/"
}
