// Package auth exposes the account endpoints: sign-up, sign-in,
// sign-out, whoami, profile and mail confirmation.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brouclean/helloauth/internal/apps"
	"github.com/brouclean/helloauth/internal/http/dto"
	httperrors "github.com/brouclean/helloauth/internal/http/errors"
	"github.com/brouclean/helloauth/internal/http/helpers"
	"github.com/brouclean/helloauth/internal/http/middlewares"
	"github.com/brouclean/helloauth/internal/metrics"
	"github.com/brouclean/helloauth/internal/observability/logger"
	"github.com/brouclean/helloauth/internal/session"
	"github.com/brouclean/helloauth/internal/token"
	"github.com/brouclean/helloauth/internal/users"
)

// Controller wires the account services to HTTP.
type Controller struct {
	signUp   users.SignUpService
	signIn   users.SignInService
	profile  users.ProfileService
	confirm  users.ConfirmService
	sessions *session.Manager
	registry *apps.Registry

	signInLimit middlewares.Middleware
	signUpLimit middlewares.Middleware
}

// Deps contains the controller dependencies.
type Deps struct {
	SignUp   users.SignUpService
	SignIn   users.SignInService
	Profile  users.ProfileService
	Confirm  users.ConfirmService
	Sessions *session.Manager
	Registry *apps.Registry

	// SignInLimit and SignUpLimit throttle the credential endpoints.
	// Nil disables throttling.
	SignInLimit middlewares.Middleware
	SignUpLimit middlewares.Middleware
}

// NewController creates the auth controller.
func NewController(d Deps) *Controller {
	c := &Controller{
		signUp:      d.SignUp,
		signIn:      d.SignIn,
		profile:     d.Profile,
		confirm:     d.Confirm,
		sessions:    d.Sessions,
		registry:    d.Registry,
		signInLimit: d.SignInLimit,
		signUpLimit: d.SignUpLimit,
	}
	if c.signInLimit == nil {
		c.signInLimit = passthrough
	}
	if c.signUpLimit == nil {
		c.signUpLimit = passthrough
	}
	return c
}

func passthrough(next http.Handler) http.Handler { return next }

// Register mounts the routes.
func (c *Controller) Register(r chi.Router) {
	r.With(c.signUpLimit).Post("/signup", c.handleSignUp)
	r.With(c.signInLimit).Post("/signin", c.handleSignIn)
	r.Post("/signout", c.handleSignOut)
	r.Get("/whoami", c.handleWhoAmI)
	r.Get("/confirm", c.handleConfirm)
	r.Post("/confirm/send", c.handleConfirmSend)
	r.Put("/profile", c.handleUpdateProfile)
	r.Put("/password", c.handleChangePassword)
}

func (c *Controller) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in dto.SignUpRequest
	if !helpers.ReadJSON(w, r, &in) {
		return
	}

	created, err := c.signUp.SignUp(r.Context(), users.SignUpInput{
		Name:            in.Name,
		Birthday:        in.Birthday,
		Mail:            in.Mail,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	})
	if err != nil {
		httperrors.WriteError(w, mapAccountError(err))
		return
	}

	targetApp := c.registry.GetOrAuthenticator(r.Context(), in.AppID)

	// The mail is best effort: a down SMTP server must not block the
	// account that was just created.
	sendCtx := logger.ToContext(context.Background(), logger.From(r.Context()))
	go func() {
		_ = c.confirm.SendConfirmation(sendCtx, created, targetApp)
	}()

	redirect, err := c.sessions.Issue(w, created, targetApp, in.RequestedEndpoint)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	metrics.TokensIssuedTotal.WithLabelValues("session").Inc()

	helpers.WriteJSON(w, http.StatusCreated, dto.SessionResponse{
		RedirectTo: redirect,
		User:       dto.NewUserResponse(created),
	})
}

func (c *Controller) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in dto.SignInRequest
	if !helpers.ReadJSON(w, r, &in) {
		return
	}

	user, err := c.signIn.SignIn(r.Context(), in.Mail, in.Password)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues(signInResult(err)).Inc()
		httperrors.WriteError(w, mapAccountError(err))
		return
	}
	metrics.SignInsTotal.WithLabelValues("ok").Inc()

	targetApp := c.registry.GetOrAuthenticator(r.Context(), in.AppID)
	redirect, err := c.sessions.Issue(w, user, targetApp, in.RequestedEndpoint)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	metrics.TokensIssuedTotal.WithLabelValues("session").Inc()

	helpers.WriteJSON(w, http.StatusOK, dto.SessionResponse{
		RedirectTo: redirect,
		User:       dto.NewUserResponse(user),
	})
}

func (c *Controller) handleSignOut(w http.ResponseWriter, r *http.Request) {
	redirect := c.sessions.Clear(w)
	helpers.WriteJSON(w, http.StatusOK, dto.RedirectResponse{RedirectTo: redirect})
}

func (c *Controller) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewIdentityResponse(id))
}

func (c *Controller) handleConfirm(w http.ResponseWriter, r *http.Request) {
	signedToken := r.URL.Query().Get("token")
	if signedToken == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing token"))
		return
	}

	mail, err := c.confirm.ConfirmMail(r.Context(), signedToken)
	if err != nil {
		httperrors.WriteError(w, mapAccountError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ConfirmResponse{Mail: mail})
}

func (c *Controller) handleConfirmSend(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}

	user, err := c.profile.Get(r.Context(), id.UserID)
	if err != nil {
		httperrors.WriteError(w, mapAccountError(err))
		return
	}

	targetApp := c.registry.GetOrAuthenticator(r.Context(), appIDQuery(r))
	if err := c.confirm.SendConfirmation(r.Context(), user, targetApp); err != nil {
		httperrors.WriteError(w, mapAccountError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusAccepted, dto.ConfirmResponse{Mail: user.Mail})
}

func (c *Controller) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}

	var in dto.UpdateProfileRequest
	if !helpers.ReadJSON(w, r, &in) {
		return
	}

	updated, err := c.profile.UpdateProfile(r.Context(), id.UserID, users.UpdateProfileInput{
		Name:      in.Name,
		Birthday:  in.Birthday,
		AvatarURL: in.AvatarURL,
		Mail:      in.Mail,
	})
	if err != nil {
		httperrors.WriteError(w, mapAccountError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewUserResponse(updated))
}

func (c *Controller) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := middlewares.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}

	var in dto.ChangePasswordRequest
	if !helpers.ReadJSON(w, r, &in) {
		return
	}

	if err := c.profile.ChangePassword(r.Context(), id.UserID, in.CurrentPassword, in.Password, in.ConfirmPassword); err != nil {
		httperrors.WriteError(w, mapAccountError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func appIDQuery(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get("app_id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// mapAccountError translates service errors into the HTTP contract.
// Credential and validation failures keep their specific code so the
// client can redisplay the right form field.
func mapAccountError(err error) error {
	switch {
	case errors.Is(err, users.ErrMissingInformation),
		errors.Is(err, users.ErrMissingCredentials):
		return httperrors.ErrBadRequest.WithDetail(err.Error())
	case errors.Is(err, users.ErrPasswordsDoNotMatch):
		return httperrors.New(http.StatusBadRequest, "passwords_do_not_match", "password confirmation does not match")
	case errors.Is(err, users.ErrInvalidBirthday):
		return httperrors.New(http.StatusBadRequest, "invalid_birthday", "birthday must be YYYY-MM-DD")
	case errors.Is(err, users.ErrAlreadyExistingMail):
		return httperrors.New(http.StatusConflict, "mail_taken", "this mail is already registered")
	case errors.Is(err, users.ErrWrongCredentials),
		errors.Is(err, users.ErrUserNotExisting):
		// One answer for both: the API must not reveal which mails exist.
		return httperrors.New(http.StatusUnauthorized, "wrong_credentials", "mail or password is incorrect")
	case errors.Is(err, token.ErrInvalidToken):
		return httperrors.ErrBadRequest.WithDetail("invalid or expired confirmation link")
	case errors.Is(err, users.ErrConfirmationFailed):
		return httperrors.ErrBadRequest.WithDetail("confirmation failed")
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

func signInResult(err error) string {
	switch {
	case errors.Is(err, users.ErrWrongCredentials):
		return "wrong_credentials"
	case errors.Is(err, users.ErrUserNotExisting):
		return "unknown_user"
	case errors.Is(err, users.ErrMissingCredentials):
		return "missing"
	default:
		return "error"
	}
}
