package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brouclean/helloauth/internal/domain"
)

func testAuthenticator() domain.App {
	return domain.NewAuthenticatorApp(domain.AuthenticatorConfig{
		Name:          "helloauth",
		BaseURL:       "https://auth.example.com",
		Secret:        "authenticator-secret",
		TokenLifetime: 1800,
	})
}

func testApp(id int64, baseURL, secret string, lifetime int) domain.App {
	owner := uuid.New()
	return domain.App{
		ID:               id,
		Name:             "app",
		BaseURL:          baseURL,
		RedirectEndpoint: "/welcome",
		Secret:           secret,
		TokenLifetime:    lifetime,
		OwnerID:          &owner,
	}
}

func testUser() domain.User {
	bday, _ := domain.ParseBirthday("1990-04-02")
	return domain.User{
		ID:            uuid.New(),
		Name:          "Jeanne",
		Birthday:      bday,
		AvatarURL:     "https://cdn.example.com/jeanne.png",
		Mail:          "jeanne@example.com",
		MailConfirmed: true,
		PasswordHash:  "$argon2id$...",
	}
}

func TestIssueIdentity_RoundTrip(t *testing.T) {
	auth := testAuthenticator()
	app := testApp(7, "https://app.example.com", "app-secret", 600)
	user := testUser()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := NewFactory(auth, app).WithClock(func() time.Time { return now })

	tk, err := f.IssueIdentity(user)
	require.NoError(t, err)
	require.NotEmpty(t, tk.Signed)

	got, err := f.ExtractIdentity(tk.Signed)
	require.NoError(t, err)

	require.Equal(t, user.ID.String(), got.Subject)
	require.Equal(t, auth.BaseURL, got.Issuer)
	require.Equal(t, []string{app.BaseURL}, []string(got.Audience))
	require.Equal(t, user.Name, got.Name)
	require.Equal(t, user.Mail, got.Mail)
	require.Equal(t, user.AvatarURL, got.Avatar)
	require.Equal(t, "1990-04-02", got.Birthday)
	require.True(t, got.MailConfirmed)

	id, err := got.UserID()
	require.NoError(t, err)
	require.Equal(t, user.ID, id)
}

func TestIssueIdentity_ExpiryMatchesAppLifetime(t *testing.T) {
	auth := testAuthenticator()
	app := testApp(7, "https://app.example.com", "app-secret", 600)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := NewFactory(auth, app).WithClock(func() time.Time { return now })

	tk, err := f.IssueIdentity(testUser())
	require.NoError(t, err)

	delta := tk.Claims.ExpiresAt.Unix() - tk.Claims.IssuedAt.Unix()
	require.Equal(t, int64(app.TokenLifetime), delta)
}

func TestExtractIdentity_RejectsSiblingAppSecret(t *testing.T) {
	auth := testAuthenticator()
	appA := testApp(1, "https://a.example.com", "secret-a", 600)
	appB := testApp(2, "https://b.example.com", "secret-b", 600)
	user := testUser()

	minted, err := NewFactory(auth, appA).IssueIdentity(user)
	require.NoError(t, err)

	_, err = NewFactory(auth, appB).ExtractIdentity(minted.Signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractIdentity_RejectsForeignAudienceSameSecret(t *testing.T) {
	// Two apps sharing a secret is a misconfiguration; the audience check
	// must still keep their tokens apart.
	auth := testAuthenticator()
	appA := testApp(1, "https://a.example.com", "shared", 600)
	appB := testApp(2, "https://b.example.com", "shared", 600)
	user := testUser()

	minted, err := NewFactory(auth, appA).IssueIdentity(user)
	require.NoError(t, err)

	_, err = NewFactory(auth, appB).ExtractIdentity(minted.Signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractIdentity_RejectsExpired(t *testing.T) {
	auth := testAuthenticator()
	app := testApp(7, "https://app.example.com", "app-secret", 60)

	past := time.Now().Add(-10 * time.Minute)
	f := NewFactory(auth, app).WithClock(func() time.Time { return past })

	tk, err := f.IssueIdentity(testUser())
	require.NoError(t, err)

	_, err = NewFactory(auth, app).ExtractIdentity(tk.Signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractIdentity_RejectsMalformed(t *testing.T) {
	auth := testAuthenticator()
	app := testApp(7, "https://app.example.com", "app-secret", 600)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := NewFactory(auth, app).ExtractIdentity(raw)
		require.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestIssueSession_AudiencedToAuthenticator(t *testing.T) {
	auth := testAuthenticator()
	app := testApp(7, "https://app.example.com", "app-secret", 600)
	user := testUser()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := NewFactory(auth, app).WithClock(func() time.Time { return now })

	tk, err := f.IssueSession(user)
	require.NoError(t, err)

	// Session tokens are bound to the authenticator's own lifetime and
	// audience, not to the target app's.
	require.Equal(t, []string{auth.BaseURL}, []string(tk.Claims.Audience))
	delta := tk.Claims.ExpiresAt.Unix() - tk.Claims.IssuedAt.Unix()
	require.Equal(t, int64(auth.TokenLifetime), delta)

	got, err := ForAuthenticator(auth).ExtractSession(tk.Signed)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), got.Subject)
	require.Equal(t, int64(auth.TokenLifetime), got.SecondsToExpire(now))
}

func TestExtractSession_RejectsIdentityTokenOfOtherApp(t *testing.T) {
	auth := testAuthenticator()
	app := testApp(7, "https://app.example.com", "app-secret", 600)
	user := testUser()

	minted, err := NewFactory(auth, app).IssueIdentity(user)
	require.NoError(t, err)

	// An app-audienced token signed with the app secret must not pass as a
	// session cookie.
	_, err = ForAuthenticator(auth).ExtractSession(minted.Signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}
