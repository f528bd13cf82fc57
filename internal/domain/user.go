package domain

import (
	"time"

	"github.com/google/uuid"
)

// BirthdayLayout is the wire format for birth dates.
const BirthdayLayout = "2006-01-02"

// User is an authenticated principal. PasswordHash is an opaque PHC string
// produced and checked by the password package; it is never serialized
// into tokens or responses.
type User struct {
	ID            uuid.UUID
	Name          string
	Birthday      time.Time
	AvatarURL     string
	Mail          string
	MailConfirmed bool
	PasswordHash  string
	CreatedAt     time.Time
}

// BirthdayString renders the birthday in wire format, empty when unset.
func (u User) BirthdayString() string {
	if u.Birthday.IsZero() {
		return ""
	}
	return u.Birthday.Format(BirthdayLayout)
}

// ParseBirthday parses a wire-format birth date.
func ParseBirthday(s string) (time.Time, error) {
	return time.Parse(BirthdayLayout, s)
}
