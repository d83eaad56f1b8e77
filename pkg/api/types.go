// Package api holds the wire types shared between the kavostack HTTP
// handlers and Go clients of the service, plus a thin SDK client.
package api

import "time"

// ErrorResponse is the JSON error envelope returned by every API endpoint.
type ErrorResponse struct {
	// Error is a human-readable message describing what went wrong.
	Error string `json:"error"`
}

// User is the public projection of an account. It never carries the
// password hash or tenant internals.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AcceptInvitationRequest is the body of POST /api/invitations/{token}/accept.
type AcceptInvitationRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AcceptInvitationResponse is returned when an invitation is converted into
// an account.
type AcceptInvitationResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// InvitationPreview is the public projection shown on the invite landing
// page. The token itself is never echoed back.
type InvitationPreview struct {
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	ClientName string    `json:"clientName"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Expired    bool      `json:"expired"`
	Accepted   bool      `json:"accepted"`
}

// MintInvitationRequest is the body of POST /api/clients/{id}/invitations.
type MintInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`

	// ExpiresInHours overrides the default invitation lifetime when positive.
	ExpiresInHours int `json:"expiresInHours,omitempty"`
}

// MintInvitationResponse is returned when an invitation is created. The
// token appears exactly once, here.
type MintInvitationResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ClientID  string    `json:"clientId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login. The session token also
// travels as an HttpOnly cookie; it is included here for non-browser
// clients.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// LogoutResponse is returned when a session is cleared.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// HealthChecks reports the status of each critical dependency.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned by the health probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
