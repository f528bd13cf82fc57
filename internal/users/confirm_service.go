package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/domain/repository"
	"github.com/brouclean/helloauth/internal/email"
	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/token"
)

// Confirmation links stay valid for a week.
const confirmationLifetime = 7 * 24 * time.Hour

// Confirmation errors (sentinel)
var (
	ErrConfirmationFailed = errors.New("mail confirmation failed")
)

// ConfirmService sends and redeems mail-confirmation links.
type ConfirmService interface {
	SendConfirmation(ctx context.Context, user domain.User, app domain.App) error
	ConfirmMail(ctx context.Context, signedToken string) (string, error)
}

// ConfirmDeps contains dependencies for ConfirmService.
type ConfirmDeps struct {
	Users         repository.UserRepository
	Sender        email.Sender
	Authenticator domain.App
}

type confirmService struct {
	users         repository.UserRepository
	sender        email.Sender
	authenticator domain.App
	now           func() time.Time
}

// NewConfirmService creates a new ConfirmService.
func NewConfirmService(d ConfirmDeps) ConfirmService {
	return &confirmService{
		users:         d.Users,
		sender:        d.Sender,
		authenticator: d.Authenticator,
		now:           time.Now,
	}
}

// confirmationAudience is the authenticator with the lifetime stretched
// to a week, so confirmation links outlive the session they were
// issued from.
func (s *confirmService) confirmationAudience() domain.App {
	aud := s.authenticator
	aud.TokenLifetime = int(confirmationLifetime.Seconds())
	return aud
}

// SendConfirmation mails the user a signed confirmation link. Failures
// are logged and returned, but callers treat them as soft: the account
// exists either way.
func (s *confirmService) SendConfirmation(ctx context.Context, user domain.User, app domain.App) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("users.SendConfirmation"))

	tk, err := token.ForAuthenticator(s.confirmationAudience()).
		WithClock(s.now).
		IssueSession(user)
	if err != nil {
		log.Error("confirmation token issue failed", logger.Err(err))
		return ErrConfirmationFailed
	}

	link := domain.EndpointJoin(s.authenticator.BaseURL,
		fmt.Sprintf("/confirm?app_id=%d&token=%s", app.ID, tk.Signed))
	subject := fmt.Sprintf("Confirm your registration to %s", app.Name)
	body := fmt.Sprintf(`Hello %s,

You just signed up for %s.

To finish, please confirm your mail address by following this link:
%s

The link stays valid for one week.

The %s team`, user.Name, app.Name, link, s.authenticator.Name)

	if err := s.sender.Send(user.Mail, subject, body); err != nil {
		log.Error("confirmation mail failed", logger.Err(err), logger.UserID(user.ID.String()))
		return ErrConfirmationFailed
	}
	log.Info("confirmation mail sent", logger.UserID(user.ID.String()), logger.AppID(app.ID))
	return nil
}

// ConfirmMail redeems a confirmation link and returns the confirmed
// mail address. The account is re-read from storage first: the claims
// inside the link are a snapshot and the account may have changed or
// disappeared since it was sent.
func (s *confirmService) ConfirmMail(ctx context.Context, signedToken string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("users.ConfirmMail"))

	claims, err := token.ForAuthenticator(s.authenticator).ExtractSession(signedToken)
	if err != nil {
		return "", token.ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", token.ErrInvalidToken
	}

	user, err := s.users.SelectByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrConfirmationFailed
		}
		log.Error("lookup failed", logger.Err(err), logger.UserID(userID.String()))
		return "", err
	}
	// The link certifies the mail it was sent to, not whatever address
	// the account holds now. A profile change in between voids it.
	if !strings.EqualFold(user.Mail, claims.Mail) {
		log.Info("confirmation link outdated", logger.UserID(userID.String()))
		return "", ErrConfirmationFailed
	}

	mail, err := s.users.ConfirmMail(ctx, userID)
	if err != nil {
		log.Error("confirm failed", logger.Err(err), logger.UserID(userID.String()))
		return "", ErrConfirmationFailed
	}
	log.Info("mail confirmed", logger.UserID(userID.String()))
	return mail, nil
}
