// Package client calls the blog server's JSON auth actions on behalf of a browser-like
// session. The cookie jar carries the session cookie between calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Action endpoints served by the blog server.
const (
	LoginPath    = "/api/auth/login"
	SessionPath  = "/api/auth/session"
	LogoutPath   = "/api/auth/logout"
	SignupPath   = "/api/auth/signup"
	SettingsPath = "/api/settings"
)

// UnreachableMessage is reported when the server cannot be reached.
const UnreachableMessage = "Unable to reach the server, please try again"

const defaultTimeout = 10 * time.Second

type UserData struct {
	TenantSchema string         `json:"tenantSchemaName"`
	UserName     string         `json:"userName"`
	UserEmail    string         `json:"userEmail"`
	UserSettings map[string]any `json:"userSettings,omitempty"`
}

// ActionResult is the {success|error, data?} envelope of the form actions.
type ActionResult struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Errors  []string  `json:"errors,omitempty"`
	Data    *UserData `json:"data,omitempty"`
}

// SessionResult is the {valid, data?} envelope of the session check.
type SessionResult struct {
	Valid bool      `json:"valid"`
	Data  *UserData `json:"data,omitempty"`
}

type SignupForm struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client. A cookie jar is added if it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[client New] parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[client New] base url %q must be absolute", baseURL)
	}

	c := &Client{baseURL: u, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range options {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "[client New] cookie jar")
		}
		c.http.Jar = jar
	}
	return c, nil
}

// LoginUser posts the login form. On failure the result carries exactly one message.
func (c *Client) LoginUser(ctx context.Context, email, password string) ActionResult {
	var res ActionResult
	if _, err := c.do(ctx, http.MethodPost, LoginPath, map[string]string{"email": email, "password": password}, &res); err != nil {
		log.Warn().Err(err).Msg("login request failed")
		return ActionResult{Error: UnreachableMessage}
	}
	if !res.Success && res.Error == "" {
		res.Error = "Login failed"
	}
	res.Errors = nil
	return res
}

// ValidateSession asks the server whether the cookie session is still valid.
// Any transport or decoding failure is reported as invalid.
func (c *Client) ValidateSession(ctx context.Context) SessionResult {
	var res SessionResult
	status, err := c.do(ctx, http.MethodGet, SessionPath, nil, &res)
	if err != nil || status != http.StatusOK {
		if err != nil {
			log.Warn().Err(err).Msg("session check failed, treating as invalid")
		}
		return SessionResult{Valid: false}
	}
	if !res.Valid {
		res.Data = nil
	}
	return res
}

// Logout ends the server session. The cookie is dropped locally even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, LogoutPath, nil, nil)
	c.forgetSession()
	if err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

func (c *Client) Signup(ctx context.Context, form SignupForm) ActionResult {
	var res ActionResult
	if _, err := c.do(ctx, http.MethodPost, SignupPath, form, &res); err != nil {
		log.Warn().Err(err).Msg("signup request failed")
		return ActionResult{Error: UnreachableMessage}
	}
	return res
}

// UpdateSettings merges partial into the server-side settings and returns the result.
func (c *Client) UpdateSettings(ctx context.Context, partial map[string]any) (map[string]any, error) {
	var res struct {
		Success  bool           `json:"success"`
		Error    string         `json:"error"`
		Settings map[string]any `json:"settings"`
	}
	status, err := c.do(ctx, http.MethodPatch, SettingsPath, map[string]any{"settings": partial}, &res)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateSettings]")
	}
	if !res.Success {
		return nil, errors.Errorf("[Client.UpdateSettings] status %d: %s", status, res.Error)
	}
	return res.Settings, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

// forgetSession expires the session cookie in the jar.
func (c *Client) forgetSession() {
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: "session", Value: "", Path: "/", MaxAge: -1}})
}
