// Package authclient is a Go client for the store-admin HTTP API. It keeps the
// caller's token pair and transparently refreshes an expired access token,
// coalescing concurrent refreshes into a single call.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired is returned when the refresh token was rejected. Stored
// tokens are cleared and the caller must log in again.
var ErrSessionExpired = errors.New("authclient: session expired, login required")

// ErrNotAuthenticated is returned by calls that need tokens before Login.
var ErrNotAuthenticated = errors.New("authclient: not authenticated")

const codeTokenExpired = "TOKEN_EXPIRED"

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authclient: %d %s: %s", e.Status, e.Code, e.Message)
}

// Tokens is the pair held by the client.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Account is the summary returned by login.
type Account struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	ImageRef *string `json:"imageRef"`
	Role     string  `json:"role"`
	Active   bool    `json:"active"`
}

// Client talks to the API on behalf of one logged-in account. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.RWMutex
	tokens Tokens

	refreshes singleflight.Group
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokens seeds the client with a previously issued pair.
func WithTokens(tokens Tokens) Option {
	return func(c *Client) { c.tokens = tokens }
}

// New returns a client for the API rooted at baseURL (e.g. http://localhost:7001).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the pair currently held.
func (c *Client) Tokens() Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *Client) setTokens(tokens Tokens) {
	c.mu.Lock()
	c.tokens = tokens
	c.mu.Unlock()
}

// Login authenticates and stores the issued pair.
func (c *Client) Login(ctx context.Context, email, password string) (*Account, error) {
	var out struct {
		Account Account `json:"account"`
		Tokens
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", body, "", &out); err != nil {
		return nil, err
	}
	c.setTokens(out.Tokens)
	return &out.Account, nil
}

// Refresh rotates the stored pair. Concurrent calls share one request.
func (c *Client) Refresh(ctx context.Context) error {
	refreshToken := c.Tokens().RefreshToken
	if refreshToken == "" {
		return ErrNotAuthenticated
	}
	return c.refreshShared(ctx, refreshToken)
}

// refreshShared runs at most one refresh per refresh token at a time. Every
// caller waiting on the same token observes the same outcome. The flight
// outlives the caller that started it, so one cancelled caller does not fail
// the others; each caller still stops waiting when its own ctx is done.
func (c *Client) refreshShared(ctx context.Context, refreshToken string) error {
	flightCtx := context.WithoutCancel(ctx)
	results := c.refreshes.DoChan(refreshToken, func() (interface{}, error) {
		// A flight for this token already finished and stored its successor.
		if c.Tokens().RefreshToken != refreshToken {
			return nil, nil
		}
		var out Tokens
		body := map[string]string{"refreshToken": refreshToken}
		if err := c.send(flightCtx, http.MethodPost, "/api/auth/refresh-token", body, "", &out); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized ||
				apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusNotFound) {
				c.setTokens(Tokens{})
				return nil, ErrSessionExpired
			}
			return nil, err
		}
		c.setTokens(out)
		return nil, nil
	})
	select {
	case res := <-results:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Logout ends the session server-side and forgets the stored pair.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.setTokens(Tokens{})
	return nil
}

// Do performs an authenticated request, decoding the envelope's data into out
// when non-nil. An expired access token is refreshed once and the request
// retried.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	access := c.Tokens().AccessToken
	if access == "" {
		return ErrNotAuthenticated
	}

	err := c.send(ctx, method, path, body, access, out)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Code != codeTokenExpired {
		return err
	}

	current := c.Tokens()
	if current.AccessToken == access {
		if current.RefreshToken == "" {
			return ErrSessionExpired
		}
		if err := c.refreshShared(ctx, current.RefreshToken); err != nil {
			return err
		}
	}

	access = c.Tokens().AccessToken
	if access == "" {
		return ErrSessionExpired
	}
	return c.send(ctx, method, path, body, access, out)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, access string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authclient: encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("authclient: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("authclient: decode data: %w", err)
		}
	}
	return nil
}
