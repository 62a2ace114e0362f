package gateclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StepUpHeader carries the step-up token on destructive admin requests.
const StepUpHeader = "X-Admin-Step-Up"

// Client is a typed client for the gatehouse authentication service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs a request with an optional JSON body and optional bearer
// token, decoding the response into target when it is non-nil.
func (c *Client) doJSON(
	ctx context.Context,
	method, path, token string,
	body any,
	headers map[string]string,
	target any,
	expectedStatus int,
) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return decodeJSON(resp, target, expectedStatus)
}

// Verify exchanges a role credential for a signed session token.
// Role is one of "staff", "admin", "upload" or "cron".
func (c *Client) Verify(ctx context.Context, role string, req VerifyRequest) (*TokenResponse, error) {
	var out TokenResponse
	path := fmt.Sprintf("/v1/auth/%s/verify", role)
	if err := c.doJSON(ctx, http.MethodPost, path, "", req, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// StepUp re-verifies the admin password against an existing admin session
// and returns a short-lived step-up token bound to that session.
func (c *Client) StepUp(ctx context.Context, adminToken string, req StepUpRequest) (*StepUpResponse, error) {
	var out StepUpResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/step-up", adminToken, req, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the presented token's session server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/logout", token, nil, nil, nil, http.StatusOK)
}

// Revoke invalidates every outstanding session for the given role by bumping
// its epoch. Requires an admin session token and a step-up token.
func (c *Client) Revoke(ctx context.Context, adminToken, stepUpToken, role string) error {
	headers := map[string]string{StepUpHeader: stepUpToken}
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/revoke", adminToken,
		RevokeRequest{Role: role}, headers, nil, http.StatusOK)
}

// Session describes the session behind the presented token.
func (c *Client) Session(ctx context.Context, token string) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/auth/session", token, nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CronPing records a heartbeat for the scheduled-job role.
func (c *Client) CronPing(ctx context.Context, cronToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/cron/ping", cronToken, nil, nil, nil, http.StatusOK)
}

// Live reports whether the service process is up.
func (c *Client) Live(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/livez", "", nil, nil, nil, http.StatusOK)
}

// Ready reports whether the service can reach its backing store.
func (c *Client) Ready(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/readyz", "", nil, nil, nil, http.StatusOK)
}
