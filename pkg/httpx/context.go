package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserID holds the authenticated user id, when a session resolved.
	CtxKeyUserID ctxKey = "user_id"
)

// ContextWithUserID attaches the authenticated user id to the context so
// downstream middleware (e.g. per-user rate limiting) can read it.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// UserIDFromContext returns the authenticated user id, or "" when anonymous.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
