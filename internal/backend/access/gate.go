// Package access holds the per-request authorization core: the gate that
// classifies inbound paths and the role/tenant guards used by handlers.
//
// Everything here is pure. The session is passed in explicitly and the
// functions do no I/O, so the gate can run on every request and be tested
// exhaustively without a server.
package access

import (
	"net/url"
	"strings"

	"github.com/flowency/kavostack/internal/backend/domain"
)

// Well-known paths the gate routes around.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathInvite    = "/invite"
	PathDashboard = "/dashboard"

	invitePrefix  = "/invite/"
	authAPIPrefix = "/api/auth"
)

// Decision is the gate's outcome for one request: either let it through or
// redirect it. The zero value continues.
type Decision struct {
	Redirect bool
	Target   string
}

// Continue lets the request through to its handler.
func Continue() Decision { return Decision{} }

// RedirectTo sends the request to another path.
func RedirectTo(target string) Decision {
	return Decision{Redirect: true, Target: target}
}

// Skip reports whether the gate applies to a path at all. Static assets and
// framework internals bypass the gate entirely.
func Skip(path string) bool {
	if strings.HasPrefix(path, "/_next/static") ||
		strings.HasPrefix(path, "/_next/image") ||
		path == "/favicon.ico" {
		return true
	}
	// Any dotted path is treated as a static asset.
	return strings.Contains(path, ".")
}

// Evaluate classifies a request path against the session and decides whether
// it may continue. First match wins:
//
//  1. Auth-infrastructure paths always continue, before any session check.
//  2. Public paths continue, except an authenticated user on the login page
//     is bounced to the dashboard.
//  3. Anonymous requests to protected paths redirect to login, carrying the
//     original path as a callbackUrl so the client can resume afterwards.
//  4. Everything else continues.
func Evaluate(path string, sess *domain.Session) Decision {
	if strings.HasPrefix(path, authAPIPrefix) {
		return Continue()
	}

	authenticated := sess != nil

	if authenticated && path == PathLogin {
		return RedirectTo(PathDashboard)
	}

	if !authenticated && !isPublic(path) {
		return RedirectTo(PathLogin + "?callbackUrl=" + url.QueryEscape(path))
	}

	return Continue()
}

// isPublic reports whether a path requires no session: the landing page,
// login, and the invitation pages (both the index and token-parameterized
// pages).
func isPublic(path string) bool {
	switch path {
	case PathRoot, PathLogin, PathInvite:
		return true
	}
	return strings.HasPrefix(path, invitePrefix)
}

// Result is the outcome of a role or tenant guard. Transport decides how a
// denial surfaces: browser routes soft-deny by redirecting to the dashboard,
// API routes return 403.
type Result struct {
	Allowed bool
	Reason  string
}

func allowed() Result             { return Result{Allowed: true} }
func denied(reason string) Result { return Result{Reason: reason} }

// RequireRole checks that the session's role is in the allowed set.
// Membership is explicit: flowency_admin is not implicitly granted entry to
// allow-lists that don't name it.
func RequireRole(sess *domain.Session, roles ...domain.Role) Result {
	if sess == nil {
		return denied("no session")
	}
	for _, r := range roles {
		if sess.Role == r {
			return allowed()
		}
	}
	return denied("role not permitted")
}

// RequireClientAccess checks that the session may act on the given tenant.
// flowency_admin passes unconditionally ("any tenant"); everyone else needs
// exact tenant equality.
func RequireClientAccess(sess *domain.Session, clientID string) Result {
	if sess == nil {
		return denied("no session")
	}
	if sess.Role.IsFlowencyAdmin() {
		return allowed()
	}
	if !sess.BelongsTo(clientID) {
		return denied("wrong tenant")
	}
	return allowed()
}
