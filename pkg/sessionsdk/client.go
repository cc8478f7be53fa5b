// Package sessionsdk is the Go client for the platform. It keeps a session's
// token pair in a TokenStore and transparently refreshes the access token
// when the server reports it expired, so callers never see a mid-session 401.
package sessionsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the platform API on behalf of one session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Tokens persists the session pair. Defaults to an in-memory store.
	Tokens TokenStore

	// refreshMu single-flights refresh: when several requests hit an
	// expired token at once, one performs the refresh and the rest reuse
	// its result.
	refreshMu sync.Mutex
}

// New creates a client. A nil store gets an in-memory one.
func New(baseURL string, store TokenStore) *Client {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Tokens:     store,
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// Profile is the public view of the signed-in user.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Register creates an account and stores the issued token pair. Role may be
// "employee" or "employer"; empty defaults to employee server-side.
func (c *Client) Register(ctx context.Context, name, email, password, role string) error {
	in := map[string]string{"name": name, "email": email, "password": password, "role": role}
	var pair TokenPair
	if err := c.postJSON(ctx, "/api/auth/register", in, &pair, http.StatusCreated); err != nil {
		return err
	}
	return c.Tokens.Save(pair)
}

// Login authenticates with email and password and stores the token pair.
func (c *Client) Login(ctx context.Context, email, password string) error {
	in := map[string]string{"email": email, "password": password}
	var pair TokenPair
	if err := c.postJSON(ctx, "/api/auth/login", in, &pair, http.StatusOK); err != nil {
		return err
	}
	return c.Tokens.Save(pair)
}

// Logout forgets the stored session.
func (c *Client) Logout() error {
	return c.Tokens.Clear()
}

// Me fetches the signed-in user's profile, refreshing the session if needed.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	var out struct {
		User Profile `json:"user"`
	}
	err := c.getJSON(ctx, "/api/auth/profile", &out)
	return out.User, err
}

// Refresh forces a token refresh regardless of the access token's state.
func (c *Client) Refresh(ctx context.Context) error {
	pair, err := c.Tokens.Load()
	if err != nil {
		return err
	}
	_, err = c.refresh(ctx, pair.AccessToken)
	return err
}

// Do sends the request with the session's access token attached. On a 401
// carrying the expired_token code it refreshes once and retries once; in
// every other case, including a failed refresh, the original response is
// returned unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	pair, err := c.Tokens.Load()
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req, pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || pair.RefreshToken == "" {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var errBody APIError
	if json.Unmarshal(body, &errBody) != nil || errBody.Code != CodeExpiredToken {
		// 401 for some other reason; hand the caller the original response.
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, nil
	}

	token, err := c.refresh(req.Context(), pair.AccessToken)
	if err != nil {
		// The refresh failing does not invent a new failure mode for the
		// caller; they get the 401 the server actually sent.
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, nil
	}

	retry, err := cloneRequest(req)
	if err != nil {
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, nil
	}
	return c.send(retry, token)
}

func (c *Client) send(req *http.Request, token string) (*http.Response, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// cloneRequest rebuilds a request for the retry after refresh. Requests with
// a one-shot body cannot be replayed.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("replay request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}

// refresh exchanges the refresh token for a new pair. stale is the access
// token the caller observed failing; if the stored token already differs,
// another goroutine refreshed first and its result is reused.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	pair, err := c.Tokens.Load()
	if err != nil {
		return "", err
	}
	if pair.AccessToken != "" && pair.AccessToken != stale {
		return pair.AccessToken, nil
	}
	if pair.RefreshToken == "" {
		return "", ErrNotAuthenticated
	}

	in := map[string]string{"refreshToken": pair.RefreshToken}
	var fresh TokenPair
	if err := c.postJSON(ctx, "/api/auth/refresh", in, &fresh, http.StatusOK); err != nil {
		return "", fmt.Errorf("refresh session: %w", err)
	}
	if err := c.Tokens.Save(fresh); err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}

// postJSON performs an unauthenticated JSON round trip.
func (c *Client) postJSON(ctx context.Context, path string, in, out any, expectStatus int) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	return decodeJSON(resp, out, expectStatus)
}

// getJSON performs an authenticated GET through Do, so silent refresh applies.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, http.StatusOK)
}

func decodeJSON(resp *http.Response, target any, expectStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != expectStatus {
		return parseErrorResponse(resp, body)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
