package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/flowency/kavostack/internal/backend/domain"
	"github.com/flowency/kavostack/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestInvitationAcceptanceFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.seedClient(t, "acme")
	admin := env.seedUser(t, "admin@flowency.co.uk", "admin-password-1", domain.RoleFlowencyAdmin, nil)

	sdk := api.NewClient(env.Server.URL)

	// Admin logs in and mints an invitation for the tenant.
	login, err := sdk.Login(ctx, admin.Email, "admin-password-1")
	require.NoError(t, err)
	require.True(t, login.Success)
	require.Equal(t, admin.ID, login.User.ID)

	minted, err := sdk.MintInvitation(ctx, client.ID, api.MintInvitationRequest{
		Email: "Alice@Example.com",
		Role:  string(domain.RoleClientMember),
	})
	require.NoError(t, err)
	require.NotEmpty(t, minted.Token)
	require.Equal(t, "alice@example.com", minted.Email)
	require.Equal(t, client.ID, minted.ClientID)

	// The invitee previews the invitation anonymously.
	anon := api.NewClient(env.Server.URL)
	preview, err := anon.LookupInvitation(ctx, minted.Token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", preview.Email)
	require.Equal(t, client.Name, preview.ClientName)
	require.False(t, preview.Expired)
	require.False(t, preview.Accepted)

	// Acceptance creates the account.
	accepted, err := anon.AcceptInvitation(ctx, minted.Token, "Alice", "password1")
	require.NoError(t, err)
	require.True(t, accepted.Success)
	require.Equal(t, "alice@example.com", accepted.User.Email)
	require.Equal(t, "Alice", accepted.User.Name)

	// A second acceptance of the same token fails.
	_, err = anon.AcceptInvitation(ctx, minted.Token, "Bob", "password2")
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Invitation has already been accepted", apiErr.Message)

	// The new account can log in.
	aliceLogin, err := anon.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, accepted.User.ID, aliceLogin.User.ID)

	// The audit trail recorded the join with a point-in-time snapshot.
	entries, err := env.Store.ActivityLogs().ListByClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.ActionUserJoined, entries[0].Action)
	require.Equal(t, accepted.User.ID, entries[0].UserID)
	require.Equal(t, "Alice", entries[0].Details.UserName)
}

func TestInvitationAcceptErrorResponses(t *testing.T) {
	env := newTestEnv(t)

	client := env.seedClient(t, "acme")
	valid := env.seedInvitation(t, client.ID, "carol@example.com",
		domain.RoleClientMember, time.Now().Add(time.Hour))
	expired := env.seedInvitation(t, client.ID, "dave@example.com",
		domain.RoleClientMember, time.Now().Add(-time.Hour))

	post := func(t *testing.T, token string, body any) (*http.Response, api.ErrorResponse) {
		t.Helper()
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		resp, err := http.Post(
			fmt.Sprintf("%s/api/invitations/%s/accept", env.Server.URL, token),
			"application/json", bytes.NewReader(raw))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })

		var envelope api.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		return resp, envelope
	}

	t.Run("missing fields", func(t *testing.T) {
		resp, envelope := post(t, valid.Token, api.AcceptInvitationRequest{Name: "", Password: ""})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Name and password are required", envelope.Error)
	})

	t.Run("short password", func(t *testing.T) {
		resp, envelope := post(t, valid.Token, api.AcceptInvitationRequest{Name: "Carol", Password: "short"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Password must be at least 8 characters", envelope.Error)
	})

	t.Run("unknown token", func(t *testing.T) {
		resp, envelope := post(t, "does-not-exist", api.AcceptInvitationRequest{Name: "Carol", Password: "password1"})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "Invitation not found", envelope.Error)
	})

	t.Run("expired", func(t *testing.T) {
		resp, envelope := post(t, expired.Token, api.AcceptInvitationRequest{Name: "Dave", Password: "password1"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Invitation has expired", envelope.Error)
	})

	t.Run("email already registered", func(t *testing.T) {
		env.seedUser(t, "carol@example.com", "password1", domain.RoleClientMember, &client.ID)
		resp, envelope := post(t, valid.Token, api.AcceptInvitationRequest{Name: "Carol", Password: "password1"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "An account with this email already exists", envelope.Error)
	})
}

func TestInvitationMintGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := env.seedClient(t, "acme")
	other := env.seedClient(t, "other")
	env.seedUser(t, "member@acme.com", "member-password", domain.RoleClientMember, &acme.ID)
	env.seedUser(t, "admin@acme.com", "admin-password-1", domain.RoleClientAdmin, &acme.ID)

	req := api.MintInvitationRequest{Email: "new@acme.com", Role: string(domain.RoleClientMember)}

	t.Run("anonymous is rejected", func(t *testing.T) {
		sdk := api.NewClient(env.Server.URL)
		_, err := sdk.MintInvitation(ctx, acme.ID, req)
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("member role is forbidden", func(t *testing.T) {
		sdk := api.NewClient(env.Server.URL)
		_, err := sdk.Login(ctx, "member@acme.com", "member-password")
		require.NoError(t, err)

		_, err = sdk.MintInvitation(ctx, acme.ID, req)
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("tenant admin cannot mint for another tenant", func(t *testing.T) {
		sdk := api.NewClient(env.Server.URL)
		_, err := sdk.Login(ctx, "admin@acme.com", "admin-password-1")
		require.NoError(t, err)

		_, err = sdk.MintInvitation(ctx, other.ID, req)
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("tenant admin cannot mint a super-admin invitation", func(t *testing.T) {
		sdk := api.NewClient(env.Server.URL)
		_, err := sdk.Login(ctx, "admin@acme.com", "admin-password-1")
		require.NoError(t, err)

		_, err = sdk.MintInvitation(ctx, acme.ID, api.MintInvitationRequest{
			Email: "boss@acme.com",
			Role:  string(domain.RoleFlowencyAdmin),
		})
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		require.Equal(t, "Cannot create an invitation for that role", apiErr.Message)
	})

	t.Run("tenant admin mints for own tenant", func(t *testing.T) {
		sdk := api.NewClient(env.Server.URL)
		_, err := sdk.Login(ctx, "admin@acme.com", "admin-password-1")
		require.NoError(t, err)

		minted, err := sdk.MintInvitation(ctx, acme.ID, req)
		require.NoError(t, err)
		require.Equal(t, acme.ID, minted.ClientID)
	})
}
