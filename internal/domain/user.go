package domain

import "time"

// User represents a registered account. Accounts are created on the first
// successful Google sign-in and updated in place on later sign-ins.
type User struct {
	ID string `json:"id"`

	// GoogleSub is the stable subject identifier from Google's id_token.
	// Assigned once, never reused.
	GoogleSub string `json:"-"`

	Email string `json:"email"`
	Name  string `json:"name"`

	// Username is the unique public handle shown on leaderboards.
	// Empty until the system assigns one; never chosen by the user.
	Username string `json:"username"`

	// MaxZoneInScore is the highest zone_in_score ever accepted for this
	// account. Nil until the first report is submitted, and monotonically
	// non-decreasing afterwards.
	MaxZoneInScore *float64 `json:"max_zone_in_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasUsername reports whether a public handle has been assigned.
func (u *User) HasUsername() bool {
	return u.Username != ""
}
