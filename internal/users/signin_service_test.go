package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brouclean/helloauth/internal/store/memory"
)

func TestSignIn_Succeeds(t *testing.T) {
	st := memory.New()
	_, err := NewSignUpService(SignUpDeps{Users: st.Users()}).
		SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	svc := NewSignInService(SignInDeps{Users: st.Users()})
	user, err := svc.SignIn(context.Background(), "marcel@example.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, "Marcel", user.Name)
}

func TestSignIn_MailCaseInsensitive(t *testing.T) {
	st := memory.New()
	_, err := NewSignUpService(SignUpDeps{Users: st.Users()}).
		SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	svc := NewSignInService(SignInDeps{Users: st.Users()})
	_, err = svc.SignIn(context.Background(), "Marcel@Example.com", "pw1")
	require.NoError(t, err)
}

func TestSignIn_MissingCredentials(t *testing.T) {
	svc := NewSignInService(SignInDeps{Users: memory.New().Users()})

	_, err := svc.SignIn(context.Background(), "", "pw1")
	require.ErrorIs(t, err, ErrMissingCredentials)
	_, err = svc.SignIn(context.Background(), "marcel@example.com", "")
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSignIn_UnknownMail(t *testing.T) {
	svc := NewSignInService(SignInDeps{Users: memory.New().Users()})

	_, err := svc.SignIn(context.Background(), "nobody@example.com", "pw1")
	require.ErrorIs(t, err, ErrUserNotExisting)
}

func TestSignIn_WrongPassword(t *testing.T) {
	st := memory.New()
	_, err := NewSignUpService(SignUpDeps{Users: st.Users()}).
		SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	svc := NewSignInService(SignInDeps{Users: st.Users()})
	_, err = svc.SignIn(context.Background(), "marcel@example.com", "pw2")
	require.ErrorIs(t, err, ErrWrongCredentials)
}
