package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/security/password"
)

// UpdateProfileInput carries the raw profile form fields.
type UpdateProfileInput struct {
	Name      string
	Birthday  string
	AvatarURL string
	Mail      string
}

// ProfileService maintains an existing account.
type ProfileService interface {
	Get(ctx context.Context, id uuid.UUID) (domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (domain.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword, confirmPassword string) error
}

// ProfileDeps contains dependencies for ProfileService.
type ProfileDeps struct {
	Users repository.UserRepository
}

type profileService struct {
	users repository.UserRepository
}

// NewProfileService creates a new ProfileService.
func NewProfileService(d ProfileDeps) ProfileService {
	return &profileService{users: d.Users}
}

func (s *profileService) Get(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.users.SelectByID(ctx, id)
}

// UpdateProfile rewrites the mutable account fields. Changing the mail
// drops the confirmed flag; the repository handles that atomically.
func (s *profileService) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (domain.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("users.UpdateProfile"))

	in.Name = strings.TrimSpace(in.Name)
	in.Mail = strings.TrimSpace(strings.ToLower(in.Mail))
	if in.Name == "" || in.Mail == "" {
		return domain.User{}, ErrMissingInformation
	}

	var birthday time.Time
	if in.Birthday != "" {
		parsed, err := domain.ParseBirthday(in.Birthday)
		if err != nil {
			return domain.User{}, ErrInvalidBirthday
		}
		birthday = parsed
	}

	updated, err := s.users.UpdateProfile(ctx, id, repository.UpdateProfileInput{
		Name:      in.Name,
		Birthday:  birthday,
		AvatarURL: in.AvatarURL,
		Mail:      in.Mail,
	})
	if repository.IsConflict(err) {
		return domain.User{}, ErrAlreadyExistingMail
	}
	if err != nil {
		log.Error("update failed", logger.Err(err), logger.UserID(id.String()))
		return domain.User{}, err
	}
	return updated, nil
}

// ChangePassword replaces the stored hash. The current password must
// verify first: holding a session cookie is not proof enough to rotate
// the credential itself.
func (s *profileService) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword, confirmPassword string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("users.ChangePassword"))

	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrMissingInformation
	}
	if newPassword != confirmPassword {
		return ErrPasswordsDoNotMatch
	}

	user, err := s.users.SelectByID(ctx, id)
	if err != nil {
		return err
	}
	if !password.Verify(currentPassword, user.PasswordHash) {
		return ErrWrongCredentials
	}

	hash, err := password.Hash(password.Default, newPassword)
	if err != nil {
		log.Error("hashing failed", logger.Err(err))
		return ErrCrypto
	}
	return s.users.UpdatePassword(ctx, id, hash)
}
