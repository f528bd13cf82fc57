package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/observability/logger"
)

// Token pairs decoded claims with their compact signed form.
type Token[C jwtv5.Claims] struct {
	Claims C
	Signed string
}

// Factory issues and validates tokens for one (authenticator, audience)
// pair. Signing always uses the audience app's secret with HS256.
type Factory struct {
	authenticator domain.App
	app           domain.App
	now           func() time.Time
}

// NewFactory builds a factory bound to the given audience app.
func NewFactory(authenticator, app domain.App) *Factory {
	return &Factory{authenticator: authenticator, app: app, now: time.Now}
}

// ForAuthenticator builds a factory whose audience is the authenticator
// itself, used for session cookies and mail-confirmation tokens.
func ForAuthenticator(authenticator domain.App) *Factory {
	return NewFactory(authenticator, authenticator)
}

// WithClock replaces the clock. Tests only.
func (f *Factory) WithClock(now func() time.Time) *Factory {
	f.now = now
	return f
}

// App returns the audience app the factory is bound to.
func (f *Factory) App() domain.App {
	return f.app
}

// IssueIdentity mints an identity token for the factory's audience.
// exp is exactly iat plus the audience app's configured lifetime.
func (f *Factory) IssueIdentity(user domain.User) (Token[IdentityClaims], error) {
	claims := IdentityClaims{
		Name:             user.Name,
		Mail:             user.Mail,
		Avatar:           user.AvatarURL,
		Birthday:         user.BirthdayString(),
		MailConfirmed:    user.MailConfirmed,
		RegisteredClaims: newRegisteredClaims(f.authenticator, f.app, user, f.now().UTC()),
	}
	signed, err := f.sign(claims)
	if err != nil {
		return Token[IdentityClaims]{}, err
	}
	return Token[IdentityClaims]{Claims: claims, Signed: signed}, nil
}

// IssueSession mints a session token, always audienced to the
// authenticator regardless of which app the user is heading to.
func (f *Factory) IssueSession(user domain.User) (Token[SessionClaims], error) {
	claims := SessionClaims{
		Name:             user.Name,
		Mail:             user.Mail,
		Avatar:           user.AvatarURL,
		Birthday:         user.BirthdayString(),
		MailConfirmed:    user.MailConfirmed,
		RegisteredClaims: newRegisteredClaims(f.authenticator, f.authenticator, user, f.now().UTC()),
	}
	signed, err := f.signWith(claims, f.authenticator.Secret)
	if err != nil {
		return Token[SessionClaims]{}, err
	}
	return Token[SessionClaims]{Claims: claims, Signed: signed}, nil
}

// ExtractIdentity validates a compact token against the audience app's
// secret and returns its claims.
func (f *Factory) ExtractIdentity(signed string) (IdentityClaims, error) {
	var claims IdentityClaims
	if err := f.parseInto(signed, f.app.Secret, &claims); err != nil {
		return IdentityClaims{}, err
	}
	if err := f.checkTrust(claims.Issuer, claims.Audience); err != nil {
		return IdentityClaims{}, err
	}
	return claims, nil
}

// ExtractSession validates a session token against the authenticator's
// secret.
func (f *Factory) ExtractSession(signed string) (SessionClaims, error) {
	var claims SessionClaims
	if err := f.parseInto(signed, f.authenticator.Secret, &claims); err != nil {
		return SessionClaims{}, err
	}
	if err := f.checkTrust(claims.Issuer, claims.Audience); err != nil {
		return SessionClaims{}, err
	}
	return claims, nil
}

func (f *Factory) sign(claims jwtv5.Claims) (string, error) {
	return f.signWith(claims, f.app.Secret)
}

func (f *Factory) signWith(claims jwtv5.Claims, secret string) (string, error) {
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString([]byte(secret))
	if err != nil {
		logger.Named("token").Error("signing failed",
			logger.Audience(f.app.BaseURL), logger.Err(err))
		return "", ErrTokenCreation
	}
	return signed, nil
}

func (f *Factory) parseInto(signed, secret string, claims jwtv5.Claims) error {
	parsed, err := jwtv5.ParseWithClaims(signed, claims, func(t *jwtv5.Token) (any, error) {
		return []byte(secret), nil
	},
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuedAt(),
		jwtv5.WithTimeFunc(func() time.Time { return f.now().UTC() }),
	)
	if err != nil {
		// Plain expiry is frequent and expected, not alert-worthy.
		if !errors.Is(err, jwtv5.ErrTokenExpired) {
			logger.Named("token").Debug("token rejected",
				logger.Audience(f.app.BaseURL), logger.Err(err))
		}
		return ErrInvalidToken
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

// checkTrust enforces issuer-or-audience membership: both claims must name
// either the authenticator or the bound app. A token minted for app A and
// replayed against app B fails here even before the signature mismatch
// would have caught it.
func (f *Factory) checkTrust(issuer string, audience jwtv5.ClaimStrings) error {
	if !f.trustedURL(issuer) {
		return ErrInvalidToken
	}
	for _, aud := range audience {
		if f.trustedURL(aud) {
			return nil
		}
	}
	return ErrInvalidToken
}

func (f *Factory) trustedURL(u string) bool {
	return u == f.authenticator.BaseURL || u == f.app.BaseURL
}
