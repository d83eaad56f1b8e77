package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/flowency/kavostack/internal/backend/domain"
	backendhttp "github.com/flowency/kavostack/internal/backend/http"
	"github.com/flowency/kavostack/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	env.seedUser(t, "user@example.com", "password1", domain.RoleClientMember, nil)

	body, err := json.Marshal(api.LoginRequest{Email: "user@example.com", Password: "password1"})
	require.NoError(t, err)

	resp, err := http.Post(env.Server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success)
	require.NotEmpty(t, out.Token)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == backendhttp.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, out.Token, cookie.Value)
	require.True(t, cookie.HttpOnly)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedUser(t, "user@example.com", "password1", domain.RoleClientMember, nil)

	sdk := api.NewClient(env.Server.URL)
	_, err := sdk.Login(ctx, "user@example.com", "wrong-password")

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid email or password", apiErr.Message)

	// Unknown accounts produce the same error, not a distinguishable one.
	_, err = sdk.Login(ctx, "nobody@example.com", "password1")
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestLogoutClearsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.Server.URL+"/api/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == backendhttp.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
	require.Negative(t, cookie.MaxAge)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sdk := api.NewClient(env.Server.URL)
	health, err := sdk.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "ok", health.Checks.Database)

	resp, err := http.Get(env.Server.URL + "/livez")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
