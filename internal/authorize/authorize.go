// Package authorize implements the OAuth2-style authorize request
// validation. Checks run in a fixed order and stop at the first
// failure; the redirect URI must be validated before any later error
// is allowed to use it as a redirect target.
package authorize

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/observability/logger"
)

// ErrorCode is the wire-level error identifier of a failed check.
type ErrorCode string

const (
	CodeInvalidRequest          ErrorCode = "invalid_request"
	CodeUnsupportedResponseType ErrorCode = "unsupported_response_type"
	CodeInvalidScope            ErrorCode = "invalid_scope"
	CodeUnauthorizedClient      ErrorCode = "unauthorized_client"
)

// Error classifies a failed check. RedirectURI is set only when the
// caller-supplied redirect target may safely receive the error; an
// unparsed or unverified URI never becomes a redirect target.
type Error struct {
	Code        ErrorCode
	RedirectURI string
}

func (e *Error) Error() string { return string(e.Code) }

// Redirectable reports whether the error can be sent back to the
// relying party instead of rendered locally.
func (e *Error) Redirectable() bool { return e.RedirectURI != "" }

// RedirectTarget returns the relying-party URL carrying the error code
// as a query parameter. Only meaningful when Redirectable.
func (e *Error) RedirectTarget() string {
	sep := "?"
	if strings.Contains(e.RedirectURI, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%serror=%s", e.RedirectURI, sep, e.Code)
}

// Request carries the raw authorize parameters, query or form encoded.
type Request struct {
	Scope        string
	ResponseType string
	ClientID     string
	RedirectURI  string
}

// ResultKind discriminates the two success outcomes.
type ResultKind int

const (
	// ResultRedirect sends an already-authenticated caller straight
	// back to the app.
	ResultRedirect ResultKind = iota
	// ResultPrompt asks the caller to sign in first.
	ResultPrompt
)

// Result is a fully validated authorize request.
type Result struct {
	Kind ResultKind
	App  domain.App

	// RedirectTarget is the app URL to send the browser to. Set for
	// ResultRedirect.
	RedirectTarget string

	// RequestedEndpoint is the original authorize URI, handed to the
	// sign-in prompt so the flow can resume afterwards. Set for
	// ResultPrompt.
	RequestedEndpoint string
}

// AppSource resolves a client id to a registered app.
type AppSource interface {
	Get(ctx context.Context, id int64) (domain.App, error)
}

// Service validates authorize requests.
type Service interface {
	Authorize(ctx context.Context, req Request, signedIn bool, requestURI string) (Result, error)
}

// Deps contains dependencies for Service.
type Deps struct {
	Apps AppSource
}

type service struct {
	apps AppSource
}

// NewService creates a new authorize Service.
func NewService(d Deps) Service {
	return &service{apps: d.Apps}
}

// Authorize runs the ordered checks and decides between an immediate
// redirect and a sign-in prompt.
func (s *service) Authorize(ctx context.Context, req Request, signedIn bool, requestURI string) (Result, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("authorize.Authorize"))

	redirectURI, err := validateRedirectURI(req.RedirectURI)
	if err != nil {
		log.Debug("redirect_uri rejected")
		return Result{}, err
	}
	if err := validateResponseType(req.ResponseType, req.RedirectURI); err != nil {
		log.Debug("response_type rejected", logger.String("response_type", req.ResponseType))
		return Result{}, err
	}
	if err := validateScope(req.Scope, req.RedirectURI); err != nil {
		log.Debug("scope rejected", logger.String("scope", req.Scope))
		return Result{}, err
	}
	app, err := s.validateClient(ctx, req.ClientID, req.RedirectURI)
	if err != nil {
		log.Debug("client rejected", logger.String("client_id", req.ClientID))
		return Result{}, err
	}

	if signedIn {
		target := domain.EndpointJoin(app.BaseURL, redirectURI.Path+"?result=ok")
		log.Debug("already authenticated", logger.AppID(app.ID), logger.RedirectURI(target))
		return Result{Kind: ResultRedirect, App: app, RedirectTarget: target}, nil
	}
	return Result{Kind: ResultPrompt, App: app, RequestedEndpoint: requestURI}, nil
}

func validateRedirectURI(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, &Error{Code: CodeInvalidRequest}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &Error{Code: CodeInvalidRequest}
	}
	// A relative URI would make a later error redirect resolve against
	// our own origin.
	if !u.IsAbs() || u.Host == "" {
		return nil, &Error{Code: CodeInvalidRequest}
	}
	return u, nil
}

func validateResponseType(responseType, redirectURI string) error {
	if !strings.Contains(responseType, "code") {
		return &Error{Code: CodeUnsupportedResponseType, RedirectURI: redirectURI}
	}
	return nil
}

func validateScope(scope, redirectURI string) error {
	if !strings.Contains(scope, "openid") {
		return &Error{Code: CodeInvalidScope, RedirectURI: redirectURI}
	}
	return nil
}

// validateClient resolves the client id and asserts the registered
// redirect URL matches the request byte for byte. A mismatched or
// unknown client leaves the redirect URI unverified, so the error is
// never redirected to it.
func (s *service) validateClient(ctx context.Context, clientID, redirectURI string) (domain.App, error) {
	id, err := strconv.ParseInt(clientID, 10, 64)
	if err != nil {
		return domain.App{}, &Error{Code: CodeUnauthorizedClient}
	}
	app, err := s.apps.Get(ctx, id)
	if err != nil {
		return domain.App{}, &Error{Code: CodeUnauthorizedClient}
	}
	if app.RedirectURL() != redirectURI {
		return domain.App{}, &Error{Code: CodeUnauthorizedClient}
	}
	return app, nil
}
