// Package api implements the HTTP transport to the RAG backend.
//
// All requests share one configured path: fixed base endpoint, JSON
// headers, a cookie jar for session credentials, a bounded timeout and a
// response check that reports session expiry to a registered handler no
// matter which caller issued the request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

// RequestHook mutates an outgoing request before it is sent.
// Hooks run in registration order and must not swallow failures.
type RequestHook func(*http.Request)

// Client handles communication with the RAG backend
type Client struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	clientSession  string
	hooks          []RequestHook
	onUnauthorized func()
}

// NewClient creates a new backend client with a cookie jar so the
// backend's session cookies are carried on every call
func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		timeout:       timeout,
		clientSession: uuid.New().String(),
	}

	// Every request identifies this client instance
	c.AddRequestHook(func(req *http.Request) {
		req.Header.Set("X-Client-Session", c.clientSession)
	})

	return c
}

// BaseURL returns the configured backend endpoint
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the total request timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// AddRequestHook registers an extension point for outgoing requests,
// e.g. to attach auth headers
func (c *Client) AddRequestHook(hook RequestHook) {
	c.hooks = append(c.hooks, hook)
}

// SetUnauthorizedHandler registers the single callback invoked whenever
// any response reports an expired session. Registered once by the
// session owner; the transport itself performs no navigation.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// Login authenticates with username and password.
// The resulting session cookie lands in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the backend session. Best-effort: callers drop local
// state even when this fails.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "auth/logout", nil, nil)
}

// Verify asks the backend whether the current session is still valid
// and returns the bound identity
func (c *Client) Verify(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "auth/verify", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Query submits one question and returns the generated answer with the
// retrieved passages in rank order
func (c *Client) Query(ctx context.Context, question string, topK int) (*QueryResponse, error) {
	var resp QueryResponse
	req := QueryRequest{Question: question, TopK: topK}
	if err := c.do(ctx, http.MethodPost, "query", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health fetches the backend subsystem checks. Bounded separately from
// the query timeout: a health probe should answer quickly.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do runs one request against the backend: marshal, hooks, execute,
// classify the failure, decode the result
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, path)

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, hook := range c.hooks {
		hook(req)
	}

	log.Debug().Str("method", method).Str("path", path).Msg("backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Session expiry is reported globally regardless of which
		// component issued the request, and still propagates to the
		// caller.
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode}
	}

	if resp.StatusCode >= 400 {
		return c.serverError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// classifyTransport distinguishes a timed-out request from an
// unreachable endpoint
func (c *Client) classifyTransport(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindConnectivity, Err: err}
}

// serverError extracts the FastAPI detail text from an error response
func (c *Client) serverError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	// Non-JSON error bodies leave Detail empty; callers fall back to a
	// generic message.
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	log.Debug().Int("status", resp.StatusCode).Str("detail", body.Detail).Msg("backend error response")

	return &Error{Kind: KindServer, Status: resp.StatusCode, Detail: body.Detail}
}
