package models

import "time"

// VerificationTokenTTL is how long a signup code stays valid.
const VerificationTokenTTL = 10 * time.Minute

// VerificationToken binds a user identity to a one-time 6-digit signup code.
// At most one live token exists per identity; issuing a new one replaces any
// older token for the same RedboxID. A token is consumed exactly once on
// successful registration.
type VerificationToken struct {
	UserID    string    `json:"user_id"`
	RedboxID  string    `json:"redbox_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
