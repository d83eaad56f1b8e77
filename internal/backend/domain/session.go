package domain

// Session is the ephemeral authenticated-identity projection resolved per
// request. The access gate and handlers only ever read it; nil means
// anonymous.
type Session struct {
	UserID   string
	Role     Role
	ClientID *string // nil for flowency_admin accounts
}

// BelongsTo reports whether the session is scoped to the given tenant.
func (s *Session) BelongsTo(clientID string) bool {
	return s != nil && s.ClientID != nil && *s.ClientID == clientID
}
