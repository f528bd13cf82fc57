package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brouclean/helloauth/internal/domain"
)

func TestCanUpdate_AuthenticatorNeverMutable(t *testing.T) {
	auth := domain.NewAuthenticatorApp(domain.AuthenticatorConfig{
		Name: "helloauth", BaseURL: "https://auth.example.com",
		Secret: "s", TokenLifetime: 600, OwnerMail: "owner@example.com",
	})

	for i := 0; i < 5; i++ {
		require.False(t, CanUpdate(auth, uuid.New()))
	}
}

func TestCanUpdate_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	app := domain.App{ID: 4, OwnerID: &owner}

	require.True(t, CanUpdate(app, owner))
	require.False(t, CanUpdate(app, stranger))
}

func TestCanRead_AlwaysAllowed(t *testing.T) {
	owner := uuid.New()
	app := domain.App{ID: 4, OwnerID: &owner}

	require.True(t, CanRead(app, owner))
	require.True(t, CanRead(app, uuid.New()))
}

func TestCanCreate(t *testing.T) {
	require.True(t, CanCreate(uuid.New()))
	require.False(t, CanCreate(uuid.Nil))
}
