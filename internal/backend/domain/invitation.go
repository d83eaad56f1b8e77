package domain

import "time"

// Invitation is a single-use onboarding token granting a specific
// email/role/tenant triple the right to create an account.
type Invitation struct {
	ID         string
	Token      string // unguessable, unique
	Email      string // target address, lower-cased; not yet a user
	Role       Role   // role granted on acceptance
	ClientID   string
	ExpiresAt  time.Time
	AcceptedAt *time.Time // nil while pending; once set it never reverts
	CreatedBy  string     // user id of the inviter
	CreatedAt  time.Time
}

// IsExpired reports whether the invitation has passed its expiry at the
// given instant.
func (i Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsAccepted reports whether the invitation has already been consumed.
func (i Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}
