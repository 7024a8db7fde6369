package model

import "time"

// Session is the identity record behind a signed-in browser. It replaces the
// client-side auth flag: created on sign in, loaded on every request, removed
// on sign out.
// swagger:model
type Session struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name,omitempty"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	IsAdmin         bool      `json:"isAdmin"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// UserID is the key of the session's enrolled set. Enrollments belong to the
// session that made them; signing in again with the same e-mail starts empty.
func (s *Session) UserID() string {
	return s.ID
}
