package domain

import "time"

type User struct {
	ID            string
	Email         string // lower-cased, globally unique across tenants
	Name          string
	Role          Role
	ClientID      *string // nil only for flowency_admin accounts
	PasswordHash  string  // argon2 encoded
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserSummary is the public projection returned after invitation acceptance.
// It never carries the password hash.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Summary returns the minimal public projection of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}
