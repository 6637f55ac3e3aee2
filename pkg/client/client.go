// Package client talks to the shift relay state service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/presence"
)

// ErrServerUnreachable is returned when the service cannot be reached or
// answers with something that is not JSON. Callers degrade to defaults.
var ErrServerUnreachable = errors.New("server unreachable")

// DefaultTimeout bounds every request
const DefaultTimeout = 3 * time.Second

// APIError is a well-formed error answer from the service
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	User       models.Public
	State      presence.Snapshot
	ResumeInfo *models.PauseRecord
}

// Client is safe for concurrent use
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. The http.Client is copied so
// one passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithToken sends a master bearer token with every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API rooted at baseURL, e.g.
// http://localhost:8000/api
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State fetches the presence registry. When the service is unreachable
// the empty snapshot is returned together with ErrServerUnreachable.
func (c *Client) State(ctx context.Context) (presence.Snapshot, error) {
	var snap presence.Snapshot
	if err := c.do(ctx, http.MethodGet, "/state", nil, &snap); err != nil {
		return presence.EmptySnapshot(), err
	}
	return normalize(snap), nil
}

// Login authenticates an employee and registers them as present
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var resp struct {
		Success           bool                          `json:"success"`
		User              models.Public                 `json:"user"`
		LoggedInEmployees []string                      `json:"loggedInEmployees"`
		PauseState        map[string]models.PauseRecord `json:"pauseState"`
		ResumeInfo        *models.PauseRecord           `json:"resumeInfo"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return nil, err
	}
	return &LoginResult{
		User:       resp.User,
		State:      normalize(presence.Snapshot{LoggedInEmployees: resp.LoggedInEmployees, PauseState: resp.PauseState}),
		ResumeInfo: resp.ResumeInfo,
	}, nil
}

// Logout deregisters an employee. Progress is frozen server-side only when
// isActiveShift is set and progress is non-nil.
func (c *Client) Logout(ctx context.Context, username string, progress *float64, isActiveShift bool) (presence.Snapshot, error) {
	body := struct {
		Username      string   `json:"username"`
		Progress      *float64 `json:"progress,omitempty"`
		IsActiveShift bool     `json:"isActiveShift"`
	}{username, progress, isActiveShift}

	var snap presence.Snapshot
	if err := c.do(ctx, http.MethodPost, "/logout", body, &snap); err != nil {
		return presence.EmptySnapshot(), err
	}
	return normalize(snap), nil
}

// Schedule fetches the definitions effective today. An empty result is
// not an error; callers decide on the fallback.
func (c *Client) Schedule(ctx context.Context) ([]models.ShiftDefinition, error) {
	var resp struct {
		Schedule []models.ShiftDefinition `json:"schedule"`
	}
	if err := c.do(ctx, http.MethodGet, "/schedule", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Schedule, nil
}

// Employees lists every employee without credentials
func (c *Client) Employees(ctx context.Context) ([]models.Public, error) {
	var resp struct {
		Employees []models.Public `json:"employees"`
	}
	if err := c.do(ctx, http.MethodGet, "/employees", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Employees, nil
}

// AdminLogin exchanges master credentials for a bearer token
func (c *Client) AdminLogin(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/admin/login", body, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// DeleteEmployee removes an employee; requires a master token
func (c *Client) DeleteEmployee(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/employees/"+url.PathEscape(name), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerUnreachable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrServerUnreachable, err)
	}
	return nil
}

func normalize(s presence.Snapshot) presence.Snapshot {
	if s.LoggedInEmployees == nil {
		s.LoggedInEmployees = []string{}
	}
	if s.PauseState == nil {
		s.PauseState = map[string]models.PauseRecord{}
	}
	return s
}
