package users

import (
	"context"
	"errors"
	"strings"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/security/password"
)

// Sign-in errors (sentinel)
var (
	ErrMissingCredentials = errors.New("missing mail or password")
	ErrWrongCredentials   = errors.New("wrong credentials")
	ErrUserNotExisting    = errors.New("no account for this mail")
)

// SignInService checks credentials.
type SignInService interface {
	SignIn(ctx context.Context, mail, plainPassword string) (domain.User, error)
}

// SignInDeps contains dependencies for SignInService.
type SignInDeps struct {
	Users repository.UserRepository
}

type signInService struct {
	users repository.UserRepository
}

// NewSignInService creates a new SignInService.
func NewSignInService(d SignInDeps) SignInService {
	return &signInService{users: d.Users}
}

// SignIn resolves the account by mail and verifies the password.
func (s *signInService) SignIn(ctx context.Context, mail, plainPassword string) (domain.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("users.SignIn"))

	mail = strings.TrimSpace(strings.ToLower(mail))
	if mail == "" || plainPassword == "" {
		return domain.User{}, ErrMissingCredentials
	}

	user, err := s.users.SelectByMail(ctx, mail)
	if repository.IsNotFound(err) {
		return domain.User{}, ErrUserNotExisting
	}
	if err != nil {
		log.Error("lookup failed", logger.Err(err))
		return domain.User{}, err
	}

	if !password.Verify(plainPassword, user.PasswordHash) {
		log.Debug("password mismatch", logger.UserID(user.ID.String()))
		return domain.User{}, ErrWrongCredentials
	}
	return user, nil
}
