// Package sessions issues, validates and revokes the server-side login sessions that
// back the "session" cookie.
package sessions

import "time"

// Identity is what a session asserts about its holder.
type Identity struct {
	Email        string
	UserName     string
	TenantSchema string
}

// Session is a validated or freshly issued login session. Token is the opaque value
// handed to the browser; the other fields are decoded from it.
type Session struct {
	Token     string
	ID        string // unique token id, used as the revocation key
	Identity  Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining returns how long the session stays valid after now, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
