// Package dto defines the request/response shapes of the API.
package dto

import (
	"time"

	"github.com/brouclean/helloauth/internal/domain"
	"github.com/brouclean/helloauth/internal/session"
)

// SignUpRequest is the sign-up form.
type SignUpRequest struct {
	Name              string `json:"name"`
	Birthday          string `json:"birthday,omitempty"`
	Mail              string `json:"mail"`
	Password          string `json:"password"`
	ConfirmPassword   string `json:"confirm_password"`
	AppID             int64  `json:"app_id,omitempty"`
	RequestedEndpoint string `json:"requested_endpoint,omitempty"`
}

// SignInRequest is the sign-in form.
type SignInRequest struct {
	Mail              string `json:"mail"`
	Password          string `json:"password"`
	AppID             int64  `json:"app_id,omitempty"`
	RequestedEndpoint string `json:"requested_endpoint,omitempty"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Birthday      string    `json:"birthday,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	Mail          string    `json:"mail"`
	MailConfirmed bool      `json:"mail_confirmed"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user, dropping the hash.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		Name:          u.Name,
		Birthday:      u.BirthdayString(),
		AvatarURL:     u.AvatarURL,
		Mail:          u.Mail,
		MailConfirmed: u.MailConfirmed,
		CreatedAt:     u.CreatedAt,
	}
}

// SessionResponse is returned after a successful sign-in or sign-up:
// the cookie is on the response, RedirectTo is where the browser should
// go next.
type SessionResponse struct {
	RedirectTo string       `json:"redirect_to"`
	User       UserResponse `json:"user"`
}

// IdentityResponse mirrors the decoded session of the caller.
type IdentityResponse struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Mail            string `json:"mail"`
	Avatar          string `json:"avatar,omitempty"`
	Birthday        string `json:"birthday,omitempty"`
	MailConfirmed   bool   `json:"mail_confirmed"`
	SecondsToExpire int64  `json:"seconds_to_expire"`
}

// NewIdentityResponse maps a session identity.
func NewIdentityResponse(id session.Identity) IdentityResponse {
	return IdentityResponse{
		UserID:          id.UserID.String(),
		Name:            id.Name,
		Mail:            id.Mail,
		Avatar:          id.Avatar,
		Birthday:        id.Birthday,
		MailConfirmed:   id.MailConfirmed,
		SecondsToExpire: id.SecondsToExpire,
	}
}

// UpdateProfileRequest is the profile form.
type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Birthday  string `json:"birthday,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Mail      string `json:"mail"`
}

// ChangePasswordRequest is the password form.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ConfirmResponse reports which mail address was confirmed.
type ConfirmResponse struct {
	Mail string `json:"mail"`
}

// RedirectResponse carries a single browser destination.
type RedirectResponse struct {
	RedirectTo string `json:"redirect_to"`
}
