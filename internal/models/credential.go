package models

import "time"

// Credential represents the token pair issued by the server.
// The vault owns the stored copy; callers always receive a value copy
// and must not hold on to it past the current request.
type Credential struct {
	AccessToken  string    `json:"access_token"`  // JWT access token
	RefreshToken string    `json:"refresh_token"` // refresh token, exchanged for a new pair
	ExpiresAt    time.Time `json:"expires_at"`    // access token expiry
}

// Expired reports whether the access token is past its expiry at now
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// RemainingAt returns how long the access token stays valid from now.
// Negative when already expired.
func (c Credential) RemainingAt(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// Profile represents the cached account profile stored alongside the
// credential. It is cleared together with the tokens on logout.
type Profile struct {
	UserID string `json:"user_id"` // UUID of the account
	Name   string `json:"name"`    // display name
	Phone  string `json:"phone"`   // contact phone number
	Role   string `json:"role"`    // "customer" or "provider"
}
