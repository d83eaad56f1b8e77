package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/flowency/kavostack/internal/backend/access"
	"github.com/flowency/kavostack/internal/backend/domain"
	"github.com/flowency/kavostack/internal/backend/service"
	"github.com/flowency/kavostack/pkg/httpx"
)

// SessionCookieName is the cookie carrying the signed session token for
// browser clients. API clients may send the same token as a bearer token.
const SessionCookieName = "kavostack_session"

type ctxKey string

const ctxKeySession ctxKey = "session"

// SessionFromContext returns the resolved session, or nil when anonymous.
func SessionFromContext(ctx context.Context) *domain.Session {
	if sess, ok := ctx.Value(ctxKeySession).(*domain.Session); ok {
		return sess
	}
	return nil
}

// sessionToken extracts the raw session token from the request, preferring
// the cookie over the Authorization header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// SessionMiddleware resolves the request's session token and attaches the
// identity projection to the context. Anonymous requests pass through with
// no session; rejection is the gate's job, not this middleware's.
func SessionMiddleware(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessions.Resolve(r.Context(), sessionToken(r))
			if sess != nil {
				ctx := context.WithValue(r.Context(), ctxKeySession, sess)
				ctx = httpx.ContextWithUserID(ctx, sess.UserID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GateMiddleware runs the access gate on page navigation before routing.
// Static assets bypass it entirely, and API and probe endpoints are excluded
// because they enforce their own session and role guards; a JSON endpoint
// answering with a login redirect would be useless to its callers.
func GateMiddleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if access.Skip(path) ||
				strings.HasPrefix(path, "/api/") ||
				path == "/livez" || path == "/readyz" {
				next.ServeHTTP(w, r)
				return
			}

			decision := access.Evaluate(path, SessionFromContext(r.Context()))
			if decision.Redirect {
				http.Redirect(w, r, decision.Target, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// deny surfaces a guard denial. API routes get a 403 envelope; browser
// routes soft-deny by bouncing to the dashboard instead of showing an error
// page.
func deny(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		httpx.WriteError(w, http.StatusForbidden, "Forbidden")
		return
	}
	http.Redirect(w, r, access.PathDashboard, http.StatusTemporaryRedirect)
}
