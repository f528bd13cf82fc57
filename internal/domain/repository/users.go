package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brouclean/helloauth/internal/domain"
)

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	Name      string
	Birthday  time.Time
	AvatarURL string
	Mail      string
}

// UserRepository persists users.
type UserRepository interface {
	// SelectByID returns the user or ErrNotFound.
	SelectByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// SelectByMail returns the user with that mail or ErrNotFound.
	SelectByMail(ctx context.Context, mail string) (domain.User, error)

	// Insert stores a new user. Returns ErrConflict when the mail is taken.
	Insert(ctx context.Context, user domain.User) (domain.User, error)

	// UpdateProfile overwrites profile fields. Changing the mail resets
	// MailConfirmed to false.
	UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (domain.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// ConfirmMail flips MailConfirmed to true and returns the mail address.
	ConfirmMail(ctx context.Context, id uuid.UUID) (string, error)
}
