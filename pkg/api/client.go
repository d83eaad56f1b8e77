package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client is a minimal Go client for the kavostack API. The zero value is not
// usable; construct one with NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token, when set, is sent as a bearer token on every request. Browser
	// clients use the session cookie instead.
	Token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
	}
}

// APIError is returned when the server responds with an error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	reqBody, respBody any,
) error {
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates and stores the returned session token on the client
// for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		LoginRequest{Email: email, Password: password}, &out)
	if err == nil {
		c.Token = out.Token
	}
	return out, err
}

// Logout clears the session on the server and forgets the stored token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if err == nil {
		c.Token = ""
	}
	return err
}

// LookupInvitation fetches the landing-page projection for a token.
func (c *Client) LookupInvitation(ctx context.Context, token string) (InvitationPreview, error) {
	var out InvitationPreview
	err := c.do(ctx, http.MethodGet, "/api/invitations/"+token, nil, &out)
	return out, err
}

// AcceptInvitation converts a pending invitation into an account.
func (c *Client) AcceptInvitation(
	ctx context.Context,
	token, name, password string,
) (AcceptInvitationResponse, error) {
	var out AcceptInvitationResponse
	err := c.do(ctx, http.MethodPost, "/api/invitations/"+token+"/accept",
		AcceptInvitationRequest{Name: name, Password: password}, &out)
	return out, err
}

// MintInvitation creates an invitation for a tenant. Requires an
// authenticated client with an admin role.
func (c *Client) MintInvitation(
	ctx context.Context,
	clientID string,
	req MintInvitationRequest,
) (MintInvitationResponse, error) {
	var out MintInvitationResponse
	err := c.do(ctx, http.MethodPost, "/api/clients/"+clientID+"/invitations", req, &out)
	return out, err
}

// Readyz reports whether the service and its dependencies are healthy.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/readyz", nil, &out)
	return out, err
}
