package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/store/memory"
)

func seedUser(t *testing.T, st *memory.Memory) domain.User {
	t.Helper()
	created, err := NewSignUpService(SignUpDeps{Users: st.Users()}).
		SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	return created
}

func TestUpdateProfile_ChangesFields(t *testing.T) {
	st := memory.New()
	user := seedUser(t, st)
	svc := NewProfileService(ProfileDeps{Users: st.Users()})

	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Name:      "Marcel Renamed",
		Birthday:  "1991-01-02",
		AvatarURL: "https://cdn.example.com/a.png",
		Mail:      "marcel@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Marcel Renamed", updated.Name)
	require.Equal(t, "1991-01-02", updated.BirthdayString())
	require.Equal(t, "https://cdn.example.com/a.png", updated.AvatarURL)
}

func TestUpdateProfile_MailChangeDropsConfirmation(t *testing.T) {
	st := memory.New()
	user := seedUser(t, st)
	_, err := st.Users().ConfirmMail(context.Background(), user.ID)
	require.NoError(t, err)

	svc := NewProfileService(ProfileDeps{Users: st.Users()})

	// Same mail keeps the flag.
	kept, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Name: user.Name, Mail: user.Mail,
	})
	require.NoError(t, err)
	require.True(t, kept.MailConfirmed)

	// New mail drops it.
	changed, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Name: user.Name, Mail: "new@example.com",
	})
	require.NoError(t, err)
	require.False(t, changed.MailConfirmed)
}

func TestUpdateProfile_MissingInformation(t *testing.T) {
	st := memory.New()
	user := seedUser(t, st)
	svc := NewProfileService(ProfileDeps{Users: st.Users()})

	_, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Mail: user.Mail})
	require.ErrorIs(t, err, ErrMissingInformation)
}

func TestChangePassword(t *testing.T) {
	st := memory.New()
	user := seedUser(t, st)
	svc := NewProfileService(ProfileDeps{Users: st.Users()})

	require.ErrorIs(t,
		svc.ChangePassword(context.Background(), user.ID, "pw1", "new", "other"),
		ErrPasswordsDoNotMatch)
	require.ErrorIs(t,
		svc.ChangePassword(context.Background(), user.ID, "", "", ""),
		ErrMissingInformation)
	require.ErrorIs(t,
		svc.ChangePassword(context.Background(), user.ID, "not-current", "new-pw", "new-pw"),
		ErrWrongCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "pw1", "new-pw", "new-pw"))

	signIn := NewSignInService(SignInDeps{Users: st.Users()})
	_, err := signIn.SignIn(context.Background(), user.Mail, "new-pw")
	require.NoError(t, err)
	_, err = signIn.SignIn(context.Background(), user.Mail, "pw1")
	require.ErrorIs(t, err, ErrWrongCredentials)
}
