// Package errors defines the HTTP error contract: every failure leaving
// the API is an AppError with a stable code, a user-facing message and
// a status.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard application error shape.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// WithDetail returns a copy carrying extra detail, leaving the base
// error untouched.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause returns a copy wrapping the original error for logs. The
// cause never reaches the client.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// Base errors. Controllers derive from these with WithDetail/WithCause.
var (
	ErrBadRequest          = New(http.StatusBadRequest, "bad_request", "invalid request")
	ErrUnauthenticated     = New(http.StatusUnauthorized, "unauthenticated", "sign in first")
	ErrForbidden           = New(http.StatusForbidden, "forbidden", "not allowed")
	ErrNotFound            = New(http.StatusNotFound, "not_found", "resource not found")
	ErrConflict            = New(http.StatusConflict, "conflict", "resource already exists")
	ErrTooManyRequests     = New(http.StatusTooManyRequests, "rate_limited", "too many attempts, slow down")
	ErrInternalServerError = New(http.StatusInternalServerError, "internal_error", "something went wrong, try again later")
)
