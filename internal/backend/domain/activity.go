package domain

import "time"

// Activity log actions.
const (
	ActionUserJoined = "user_joined"
)

// ActivityLog is an append-only audit record. Entries are immutable once
// written and always attributable to a tenant. The details payload carries a
// denormalized snapshot of the actor so later user mutation or deletion never
// breaks the trail.
type ActivityLog struct {
	ID         string
	ClientID   string
	UserID     string // acting user; weak reference by design
	Action     string
	EntityType string
	EntityID   string
	Details    ActivityDetails
	CreatedAt  time.Time
}

// ActivityDetails is the structured payload stored alongside an activity
// entry. Snapshot fields, not foreign keys.
type ActivityDetails struct {
	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	Role      Role   `json:"role,omitempty"`
}
