// Package client is a Go SDK for the interview backend API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client calls the interview backend with bearer auth and refresh-on-401
type Client struct {
	baseURL       string
	httpClient    *http.Client
	creds         CredentialStore
	onAuthExpired func()
	refreshMu     sync.Mutex
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithCredentialStore sets where tokens are read from and persisted to
func WithCredentialStore(store CredentialStore) Option {
	return func(c *Client) {
		c.creds = store
	}
}

// WithAuthExpiredHandler sets the callback invoked when a refresh fails
func WithAuthExpiredHandler(fn func()) Option {
	return func(c *Client) {
		c.onAuthExpired = fn
	}
}

// NewClient creates a new backend client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		creds: NewMemoryStore(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Credentials returns the store backing this client
func (c *Client) Credentials() CredentialStore {
	return c.creds
}

// request describes one call; body is kept as bytes so it can be replayed after a refresh
type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	anonymous   bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path, contentType: "application/json"}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("failed to marshal request: %w", err)
		}
		req.body = body
	}
	return req, nil
}

// call performs a JSON request and decodes the response into out (when non-nil)
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	respBody, err := c.doRequest(ctx, r, false)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request, refreshing the access token once on 401
func (c *Client) doRequest(ctx context.Context, r request, retried bool) ([]byte, error) {
	creds, err := c.creds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bytes.NewReader(r.body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if creds.AccessToken != "" && !r.anonymous {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !retried && !r.anonymous && creds.RefreshToken != "" {
		if err := c.refresh(ctx, creds); err != nil {
			slog.Warn("token refresh failed", "path", r.path, "error", err)
			c.expire(ctx)
			return nil, ErrAuthExpired
		}
		return c.doRequest(ctx, r, true)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// refresh exchanges the refresh token and persists the new pair.
// Concurrent callers that lose the race reuse the token the winner stored.
func (c *Client) refresh(ctx context.Context, stale Credentials) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current, err := c.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if current.AccessToken != "" && current.AccessToken != stale.AccessToken {
		return nil
	}

	tokens, err := c.Refresh(ctx, stale.RefreshToken)
	if err != nil {
		return err
	}
	if tokens.Token == "" {
		return errors.New("refresh response carried no token")
	}

	current.AccessToken = tokens.Token
	if tokens.RefreshToken != "" {
		current.RefreshToken = tokens.RefreshToken
	}
	if err := c.creds.Save(ctx, current); err != nil {
		return fmt.Errorf("failed to persist refreshed credentials: %w", err)
	}

	slog.Debug("access token refreshed")
	return nil
}

// expire clears the session and notifies the caller that a new login is needed
func (c *Client) expire(ctx context.Context) {
	if err := c.creds.Clear(ctx); err != nil {
		slog.Error("failed to clear credentials", "error", err)
	}
	if c.onAuthExpired != nil {
		c.onAuthExpired()
	}
}
