package domain

import "time"

// Client is a tenant: an isolated organization owning its own users,
// invitations, and activity log.
type Client struct {
	ID          string
	Name        string
	Slug        string // unique, URL-safe
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
