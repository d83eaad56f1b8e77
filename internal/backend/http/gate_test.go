package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/flowency/kavostack/internal/backend/domain"
	backendhttp "github.com/flowency/kavostack/internal/backend/http"
	"github.com/flowency/kavostack/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestGateRedirectsAnonymousToLogin(t *testing.T) {
	env := newTestEnv(t)
	client := noRedirect()

	resp, err := client.Get(env.Server.URL + "/dashboard")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	require.Equal(t, "/login?callbackUrl=%2Fdashboard", resp.Header.Get("Location"))
}

func TestGateBouncesAuthenticatedOffLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "user@example.com", "password1", domain.RoleClientMember, nil)

	sdk := api.NewClient(env.Server.URL)
	login, err := sdk.Login(ctx, "user@example.com", "password1")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, env.Server.URL+"/login", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: backendhttp.SessionCookieName, Value: login.Token})

	resp, err := noRedirect().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestGateLeavesPublicAndExemptPathsAlone(t *testing.T) {
	env := newTestEnv(t)
	client := noRedirect()

	// None of these carry a session; none may redirect to login.
	for _, path := range []string{
		"/",
		"/login",
		"/invite",
		"/invite/some-token",
		"/api/auth/session",
		"/favicon.ico",
		"/_next/static/chunk.js",
		"/livez",
	} {
		resp, err := client.Get(env.Server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.NotEqual(t, http.StatusTemporaryRedirect, resp.StatusCode, "path %s", path)
	}
}

func TestGateRejectsForgedSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, env.Server.URL+"/dashboard", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: backendhttp.SessionCookieName, Value: "forged.token.value"})

	resp, err := noRedirect().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	// A forged token resolves to anonymous, so the gate redirects to login.
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	require.Equal(t, "/login?callbackUrl=%2Fdashboard", resp.Header.Get("Location"))
}
