// Package email sends outbound mail. The rest of the system only sees
// the Sender interface; delivery failures never break a request.
package email

// Sender delivers a single message.
type Sender interface {
	Send(to, subject, textBody string) error
}

// Noop discards every message. Used in tests and when SMTP is not
// configured.
type Noop struct{}

func (Noop) Send(string, string, string) error { return nil }
