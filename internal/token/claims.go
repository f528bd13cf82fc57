// Package token binds claim encoding and decoding to a concrete
// (authenticator app, audience app) pair. Every relying party has its own
// signing secret, so a token minted for one app can never be verified with
// a sibling app's secret. Call sites never touch secrets directly.
package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brouclean/helloauth/internal/domain"
)

var (
	// ErrInvalidToken covers every decode failure: bad signature, wrong
	// issuer or audience, expiry, malformed structure. One error on
	// purpose, so callers cannot leak which check failed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenCreation indicates the signing primitive failed. Unexpected
	// and fatal for the request.
	ErrTokenCreation = errors.New("token creation failed")
)

// IdentityClaims is the signed assertion handed to a relying-party app:
// "this user, for this audience, issued by the authenticator". The profile
// snapshot avoids a storage round-trip on every request; it is a cache and
// must be re-checked against storage before security-sensitive mutations.
type IdentityClaims struct {
	Name          string `json:"name"`
	Mail          string `json:"mail"`
	Avatar        string `json:"avatar"`
	Birthday      string `json:"birthday"`
	MailConfirmed bool   `json:"mail_confirmed"`
	jwtv5.RegisteredClaims
}

// SessionClaims carries the same snapshot but lives only in the
// authenticator's own cookie. Distinct type: the trust boundary of the own
// domain is not the one of a third-party audience.
type SessionClaims struct {
	Name          string `json:"name"`
	Mail          string `json:"mail"`
	Avatar        string `json:"avatar"`
	Birthday      string `json:"birthday"`
	MailConfirmed bool   `json:"mail_confirmed"`
	jwtv5.RegisteredClaims
}

// UserID parses the subject back into a user id.
func (c IdentityClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// UserID parses the subject back into a user id.
func (c SessionClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// SecondsToExpire returns the remaining lifetime at now.
func (c SessionClaims) SecondsToExpire(now time.Time) int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix() - now.Unix()
}

func newRegisteredClaims(issuer, audience domain.App, user domain.User, now time.Time) jwtv5.RegisteredClaims {
	exp := now.Add(time.Duration(audience.TokenLifetime) * time.Second)
	return jwtv5.RegisteredClaims{
		Subject:   user.ID.String(),
		Issuer:    issuer.BaseURL,
		Audience:  jwtv5.ClaimStrings{audience.BaseURL},
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(exp),
	}
}
