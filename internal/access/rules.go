// Package access holds the ownership rules gating app registrations.
// Pure functions over App plus the caller's identity.
package access

import (
	"github.com/google/uuid"

	"github.com/brouclean/helloauth/internal/domain"
)

// CanRead reports whether the user may read the app registration.
// Always true: registrations are not secret, only mutation is gated.
func CanRead(app domain.App, userID uuid.UUID) bool {
	return true
}

// CanUpdate reports whether the user may mutate the app. The authenticator
// app is immutable for everyone, its configured owner included.
func CanUpdate(app domain.App, userID uuid.UUID) bool {
	if app.IsAuthenticator() {
		return false
	}
	return app.IsOwnedBy(userID)
}

// CanCreate reports whether the user may register a new app. Any
// authenticated user qualifies; the owner-mail check only affects whether
// the authenticator app shows up in listings.
func CanCreate(userID uuid.UUID) bool {
	return userID != uuid.Nil
}
