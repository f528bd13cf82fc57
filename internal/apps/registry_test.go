package apps

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	memcache "github.com/brouclean/helloauth/internal/cache/memory"
	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/store/memory"
)

func testAuthenticator() domain.App {
	return domain.NewAuthenticatorApp(domain.AuthenticatorConfig{
		Name:          "helloauth",
		BaseURL:       "https://auth.example.com",
		Secret:        "authenticator-secret",
		TokenLifetime: 1800,
		OwnerMail:     "owner@example.com",
	})
}

func newTestRegistry(t *testing.T) (*Registry, *memory.Memory) {
	t.Helper()
	st := memory.New()
	reg := NewRegistry(Deps{
		Repo:          st.Apps(),
		Cache:         memcache.New(time.Minute),
		Authenticator: testAuthenticator(),
		OwnerMail:     "owner@example.com",
	})
	return reg, st
}

func sampleApp() domain.App {
	return domain.App{
		ID:               -1,
		Name:             "notes",
		BaseURL:          "https://notes.example.com",
		RedirectEndpoint: "/welcome",
		Secret:           "notes-secret",
		TokenLifetime:    600,
	}
}

func TestGet_AuthenticatorFromConfig(t *testing.T) {
	reg, st := newTestRegistry(t)

	app, err := reg.Get(context.Background(), domain.AuthenticatorAppID)
	require.NoError(t, err)
	require.True(t, app.IsAuthenticator())
	require.Equal(t, "https://auth.example.com", app.BaseURL)

	// App 0 never touches storage.
	_, err = st.Apps().SelectByID(context.Background(), domain.AuthenticatorAppID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateThenGet(t *testing.T) {
	reg, _ := newTestRegistry(t)
	owner := uuid.New()

	created, err := reg.Create(context.Background(), sampleApp(), owner)
	require.NoError(t, err)
	require.Positive(t, created.ID)
	require.NotNil(t, created.OwnerID)
	require.Equal(t, owner, *created.OwnerID)

	got, err := reg.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Name, got.Name)

	// Second read is served from cache.
	again, err := reg.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestCreate_AuthenticatorIsNoOp(t *testing.T) {
	reg, st := newTestRegistry(t)

	app := sampleApp()
	app.ID = domain.AuthenticatorAppID
	created, err := reg.Create(context.Background(), app, uuid.New())
	require.NoError(t, err)
	require.True(t, created.IsAuthenticator())
	require.Equal(t, "helloauth", created.Name)

	owned, err := st.Apps().SelectByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, owned)
}

func TestCreate_RejectsBadBaseURL(t *testing.T) {
	reg, _ := newTestRegistry(t)

	app := sampleApp()
	app.BaseURL = "not a url"
	_, err := reg.Create(context.Background(), app, uuid.New())
	require.ErrorIs(t, err, domain.ErrAppInvalidURI)
}

func TestGet_Unknown(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Get(context.Background(), 42)
	require.ErrorIs(t, err, repository.ErrNotFound)

	app := reg.GetOrAuthenticator(context.Background(), 42)
	require.True(t, app.IsAuthenticator())
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	reg, _ := newTestRegistry(t)

	created, err := reg.Create(context.Background(), sampleApp(), uuid.New())
	require.NoError(t, err)

	// Warm the cache.
	_, err = reg.Get(context.Background(), created.ID)
	require.NoError(t, err)

	created.Name = "notes renamed"
	_, err = reg.Update(context.Background(), created)
	require.NoError(t, err)

	got, err := reg.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "notes renamed", got.Name)
}

func TestListOwnedBy(t *testing.T) {
	reg, _ := newTestRegistry(t)
	owner := uuid.New()

	created, err := reg.Create(context.Background(), sampleApp(), owner)
	require.NoError(t, err)

	// A regular user sees only their own apps.
	owned, err := reg.ListOwnedBy(context.Background(), owner, "marcel@example.com")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, created.ID, owned[0].ID)

	// The configured owner mail also sees app 0.
	owned, err = reg.ListOwnedBy(context.Background(), owner, "Owner@Example.com")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	require.True(t, owned[1].IsAuthenticator())

	// Someone else sees nothing.
	owned, err = reg.ListOwnedBy(context.Background(), uuid.New(), "other@example.com")
	require.NoError(t, err)
	require.Empty(t, owned)
}
