package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/roadassist/roadassist-client/internal/models"
	"github.com/roadassist/roadassist-client/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI defines the HTTP surface the sync layer consumes
type ClientAPI interface {
	// Login authenticates with phone and password
	Login(ctx context.Context, req api.LoginRequest) (*models.Credential, error)

	// Refresh exchanges a refresh token for a new credential pair
	Refresh(ctx context.Context, refreshToken string) (*models.Credential, error)

	// Logout invalidates the session on the server (best effort)
	Logout(ctx context.Context, accessToken string) error

	// Me returns the account profile for the token's owner
	Me(ctx context.Context, accessToken string) (*models.Profile, error)

	// SendAction posts a single mutation. The server deduplicates on the
	// action's client-generated id, so resending after a timeout is safe.
	SendAction(ctx context.Context, accessToken string, action api.ActionRequest) error
}

// Client is the HTTP client for the backend REST surface
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Compile-time check that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Carry the Authorization header across redirects
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Login authenticates with phone and password
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*models.Credential, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return credentialFromTokens(&resp), nil
}

// Refresh exchanges a refresh token for a new credential pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.Credential, error) {
	req := api.RefreshRequest{RefreshToken: refreshToken}
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", "", req, &resp); err != nil {
		return nil, err
	}
	return credentialFromTokens(&resp), nil
}

// Logout invalidates the session on the server
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil)
}

// Me returns the account profile for the token's owner
func (c *Client) Me(ctx context.Context, accessToken string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/me", accessToken, nil, &profile); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	return &profile, nil
}

// SendAction posts a single mutation with its idempotency id
func (c *Client) SendAction(ctx context.Context, accessToken string, action api.ActionRequest) error {
	var ack api.ActionAck
	return c.doRequest(ctx, http.MethodPost, "/api/v1/actions", accessToken, action, &ack)
}

// credentialFromTokens converts a token response into a credential,
// computing the expiry from expires_in when present
func credentialFromTokens(resp *api.TokenResponse) *models.Credential {
	cred := &models.Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		cred.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return cred
}

// doRequest performs an HTTP request against the backend
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			statusErr.Message = errResp.Error
		} else {
			statusErr.Message = string(respBody)
		}
		return statusErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
