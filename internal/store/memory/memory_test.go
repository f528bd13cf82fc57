package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/store/memory"
)

func insertUser(t *testing.T, st *memory.Memory, name, mail string) domain.User {
	t.Helper()
	u, err := st.Users().Insert(context.Background(), domain.User{Name: name, Mail: mail})
	require.NoError(t, err)
	return u
}

func TestUpdateProfile_MailConflict(t *testing.T) {
	st := memory.New()
	insertUser(t, st, "Marcel", "marcel@example.com")
	other := insertUser(t, st, "Odette", "odette@example.com")

	_, err := st.Users().UpdateProfile(context.Background(), other.ID, repository.UpdateProfileInput{
		Name: other.Name,
		Mail: "marcel@example.com",
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	// Case differences collide too.
	_, err = st.Users().UpdateProfile(context.Background(), other.ID, repository.UpdateProfileInput{
		Name: other.Name,
		Mail: "MARCEL@example.com",
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	stored, err := st.Users().SelectByID(context.Background(), other.ID)
	require.NoError(t, err)
	require.Equal(t, "odette@example.com", stored.Mail)
}

func TestUpdateProfile_KeepingOwnMailIsNotAConflict(t *testing.T) {
	st := memory.New()
	u := insertUser(t, st, "Marcel", "marcel@example.com")

	updated, err := st.Users().UpdateProfile(context.Background(), u.ID, repository.UpdateProfileInput{
		Name: "Marcel Renamed",
		Mail: u.Mail,
	})
	require.NoError(t, err)
	require.Equal(t, "Marcel Renamed", updated.Name)
	require.Equal(t, u.Mail, updated.Mail)
}
