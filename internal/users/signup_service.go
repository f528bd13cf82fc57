// Package users contains the account lifecycle services: sign-up,
// sign-in, profile maintenance and mail confirmation.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/security/password"
)

// Sign-up errors (sentinel)
var (
	ErrMissingInformation  = errors.New("missing required fields")
	ErrPasswordsDoNotMatch = errors.New("password confirmation does not match")
	ErrInvalidBirthday     = errors.New("birthday is not a valid date")
	ErrAlreadyExistingMail = errors.New("mail already registered")
	ErrCrypto              = errors.New("password hashing failed")
)

// SignUpInput carries the raw sign-up form fields.
type SignUpInput struct {
	Name            string
	Birthday        string
	Mail            string
	Password        string
	ConfirmPassword string
}

// SignUpService creates accounts.
type SignUpService interface {
	SignUp(ctx context.Context, in SignUpInput) (domain.User, error)
}

// SignUpDeps contains dependencies for SignUpService.
type SignUpDeps struct {
	Users repository.UserRepository
}

type signUpService struct {
	users repository.UserRepository
}

// NewSignUpService creates a new SignUpService.
func NewSignUpService(d SignUpDeps) SignUpService {
	return &signUpService{users: d.Users}
}

// SignUp validates the form, hashes the password and stores the user.
// New accounts always start with an unconfirmed mail.
func (s *signUpService) SignUp(ctx context.Context, in SignUpInput) (domain.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("users.SignUp"))

	in.Name = strings.TrimSpace(in.Name)
	in.Mail = strings.TrimSpace(strings.ToLower(in.Mail))

	if in.Name == "" || in.Mail == "" || in.Password == "" || in.ConfirmPassword == "" {
		return domain.User{}, ErrMissingInformation
	}
	if in.Password != in.ConfirmPassword {
		return domain.User{}, ErrPasswordsDoNotMatch
	}

	var birthday time.Time
	if in.Birthday != "" {
		parsed, err := domain.ParseBirthday(in.Birthday)
		if err != nil {
			return domain.User{}, ErrInvalidBirthday
		}
		birthday = parsed
	}

	hash, err := password.Hash(password.Default, in.Password)
	if err != nil {
		log.Error("hashing failed", logger.Err(err))
		return domain.User{}, ErrCrypto
	}

	created, err := s.users.Insert(ctx, domain.User{
		Name:         in.Name,
		Birthday:     birthday,
		Mail:         in.Mail,
		PasswordHash: hash,
	})
	if repository.IsConflict(err) {
		return domain.User{}, ErrAlreadyExistingMail
	}
	if err != nil {
		log.Error("insert failed", logger.Err(err))
		return domain.User{}, err
	}

	log.Info("user created", logger.UserID(created.ID.String()))
	return created, nil
}
