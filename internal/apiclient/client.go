// Package apiclient is the HTTP client for the /api/v1 REST API used by the
// admin CLI and the public site. It owns the token session and performs a
// single silent refresh when a request comes back 401.
package apiclient

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
	"time"

	"github.com/aTrapDeer/utworld/internal/model"
)

const (
	DefaultBaseURL = "http://localhost:8000/api/v1"
	DefaultTimeout = 30 * time.Second
)

// Error is returned for any non-2xx response. Error() is the message alone
// so callers matching on text keep working.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string { return e.Message }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// detail returns the server's {"detail": "..."} message, if any.
func (r *Response) detail() string {
	var body struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(r.Body, &body) != nil {
		return ""
	}
	if s, ok := body.Detail.(string); ok {
		return s
	}
	return ""
}

// Client talks to the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	session    *Session
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithTimeout bounds every request, including the refresh and the retry.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithSession(s *Session) Option { return func(c *Client) { c.session = s } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New builds a client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = NewSession(nil)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Client) Session() *Session { return c.session }
func (c *Client) BaseURL() string   { return c.baseURL }

// payload is a replayable request body.
type payload struct {
	data        []byte
	contentType string
}

func jsonPayload(body any) (*payload, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return &payload{data: data, contentType: "application/json"}, nil
}

// send performs one HTTP round trip and reads the whole body.
func (c *Client) send(ctx context.Context, method, endpoint string, body *payload, token string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body.data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, rdr)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil && body.contentType != "" {
		req.Header.Set("Content-Type", body.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Do sends an authenticated JSON request. On 401 with a refresh token held it
// refreshes once and resends once, returning whatever that attempt yields.
// When the refresh fails the session is cleared and the original 401 is
// returned.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	p, err := jsonPayload(body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, endpoint, p)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body *payload) (*Response, error) {
	resp, err := c.send(ctx, method, endpoint, body, c.session.AccessToken())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || c.session.RefreshToken() == "" {
		return resp, nil
	}
	if !c.refresh(ctx) {
		return resp, nil
	}
	return c.send(ctx, method, endpoint, body, c.session.AccessToken())
}

// refresh exchanges the refresh token for a new pair. Any failure clears
// the session.
func (c *Client) refresh(ctx context.Context) bool {
	p, err := jsonPayload(model.RefreshRequest{RefreshToken: c.session.RefreshToken()})
	if err == nil {
		var resp *Response
		resp, err = c.send(ctx, http.MethodPost, "/auth/refresh", p, "")
		if err == nil && resp.OK() {
			var pair model.TokenPair
			if err = resp.Decode(&pair); err == nil {
				if err := c.session.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
					c.logger.Warn("persisting refreshed tokens", "error", err)
				}
				return true
			}
		}
	}
	if err != nil {
		c.logger.Warn("token refresh failed", "error", err)
	}
	if err := c.session.Clear(); err != nil {
		c.logger.Warn("clearing session", "error", err)
	}
	return false
}

// call runs an authenticated request and decodes a 2xx body into out (when
// non-nil). Non-2xx becomes *Error with msg, or with the server detail when
// useDetail is set and the body carries one.
func (c *Client) call(ctx context.Context, method, endpoint string, body *payload, out any, msg string, useDetail bool) error {
	resp, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return finish(resp, out, msg, useDetail)
}

func finish(resp *Response, out any, msg string, useDetail bool) error {
	if !resp.OK() {
		if useDetail {
			if d := resp.detail(); d != "" {
				msg = d
			}
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) callJSON(ctx context.Context, method, endpoint string, in, out any, msg string, useDetail bool) error {
	p, err := jsonPayload(in)
	if err != nil {
		return err
	}
	return c.call(ctx, method, endpoint, p, out, msg, useDetail)
}

// Login exchanges credentials for a token pair and stores it. Any non-2xx
// is reported as "Login failed".
func (c *Client) Login(ctx context.Context, email, password string) (*model.TokenPair, error) {
	p, err := jsonPayload(model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, http.MethodPost, "/auth/login", p, "")
	if err != nil {
		return nil, err
	}
	var pair model.TokenPair
	if err := finish(resp, &pair, "Login failed", false); err != nil {
		return nil, err
	}
	if err := c.session.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout clears the session.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &u, "Not authenticated", false); err != nil {
		return nil, err
	}
	return &u, nil
}
