// Package session holds the authenticated-principal state returned by the
// engine after a successful login.
//
// A Session is an explicit value the caller threads through subsequent
// requests; there is no ambient per-process session and no server-side idle
// timeout (lifetime policy belongs to the hosting transport).
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is the per-client authenticated state. The zero value is the
// logged-out state.
type Session struct {
	ID            string    `json:"id,omitempty"`
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username,omitempty"`
	Role          string    `json:"role,omitempty"`
	Email         string    `json:"email,omitempty"`
	LoginTime     time.Time `json:"login_time,omitzero"`
}

// New returns an authenticated session for the given principal, stamped with
// the login time and a fresh random ID.
func New(username, role, email string, loginTime time.Time) *Session {
	return &Session{
		ID:            uuid.NewString(),
		Authenticated: true,
		Username:      username,
		Role:          role,
		Email:         email,
		LoginTime:     loginTime,
	}
}

// Clear resets the session to its unauthenticated zero value.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	*s = Session{}
}
