package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"roadside-rescue/internal/client/session"
	"roadside-rescue/internal/models"
	"roadside-rescue/pkg/logger"
)

// Client is the gateway to the backend. It attaches the session token to
// every call and turns responses into typed errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Store
	logger     *logger.Logger
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.logger = log }
}

func New(baseURL string, store *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		session:    store,
		logger:     logger.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Session exposes the store the client authenticates with.
func (c *Client) Session() *session.Store { return c.session }

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type CreateRequest struct {
	VehicleType string  `json:"vehicle_type"`
	ProblemDesc string  `json:"problem_desc"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	form := url.Values{"username": {email}, "password": {password}}
	req, err := c.newRequest(ctx, http.MethodPost, "/login", strings.NewReader(form.Encode()), false)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out LoginResponse
	if err := c.do(req, false, &out); err != nil {
		return nil, err
	}
	if err := c.session.Login(out.AccessToken); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*models.UserResponse, error) {
	var out models.UserResponse
	if err := c.send(ctx, http.MethodPost, "/register", in, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRequest(ctx context.Context, in CreateRequest) (*models.HelpRequest, error) {
	var out models.HelpRequest
	if err := c.send(ctx, http.MethodPost, "/requests", in, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyRequests(ctx context.Context) ([]models.HelpRequest, error) {
	var out []models.HelpRequest
	if err := c.send(ctx, http.MethodGet, "/my-requests", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRequest(ctx context.Context, id int64) (*models.HelpRequest, error) {
	var out models.HelpRequest
	if err := c.send(ctx, http.MethodGet, requestPath(id, ""), nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Cancel(ctx context.Context, id int64) (*models.ActionResult, error) {
	return c.action(ctx, id, "cancel")
}

func (c *Client) Accept(ctx context.Context, id int64) (*models.ActionResult, error) {
	return c.action(ctx, id, "accept")
}

func (c *Client) Reject(ctx context.Context, id int64) (*models.ActionResult, error) {
	return c.action(ctx, id, "reject")
}

func (c *Client) Start(ctx context.Context, id int64) (*models.ActionResult, error) {
	return c.action(ctx, id, "start")
}

func (c *Client) Complete(ctx context.Context, id int64) (*models.ActionResult, error) {
	return c.action(ctx, id, "complete")
}

func (c *Client) action(ctx context.Context, id int64, verb string) (*models.ActionResult, error) {
	var out models.ActionResult
	if err := c.send(ctx, http.MethodPost, requestPath(id, verb), nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleAvailability returns the availability the server settled on.
func (c *Client) ToggleAvailability(ctx context.Context, lat, lng float64) (bool, error) {
	var out models.Availability
	if err := c.send(ctx, http.MethodPost, "/mechanic/availability?"+coordQuery(lat, lng), nil, true, &out); err != nil {
		return false, err
	}
	return out.IsAvailable, nil
}

func (c *Client) UpdateLocation(ctx context.Context, lat, lng float64) error {
	return c.send(ctx, http.MethodPost, "/mechanic/update-location?"+coordQuery(lat, lng), nil, true, nil)
}

func (c *Client) NearbyRequests(ctx context.Context) ([]models.HelpRequest, error) {
	var out []models.HelpRequest
	if err := c.send(ctx, http.MethodGet, "/mechanic/requests", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveJob returns nil when the server reports no job.
func (c *Client) ActiveJob(ctx context.Context) (*models.HelpRequest, error) {
	var out *models.HelpRequest
	if err := c.send(ctx, http.MethodGet, "/mechanic/active-job", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func requestPath(id int64, verb string) string {
	p := "/requests/" + strconv.FormatInt(id, 10)
	if verb != "" {
		p += "/" + verb
	}
	return p
}

func coordQuery(lat, lng float64) string {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng": {strconv.FormatFloat(lng, 'f', -1, 64)},
	}.Encode()
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, authed bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, reader, authed)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, authed, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if authed {
		token := c.session.Token()
		if token == "" {
			return nil, ErrSessionExpired
		}
		if claims := c.session.Claims(); claims != nil && !claims.ExpiresAt.IsZero() && !claims.ExpiresAt.After(c.now()) {
			c.session.Logout()
			return nil, ErrSessionExpired
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, authed bool, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Method: req.Method, Path: req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: req.Method, Path: req.URL.Path, Err: err}
	}

	c.logger.WithField("method", req.Method).
		WithField("path", req.URL.Path).
		WithField("status", resp.StatusCode).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Debug("API call")

	if resp.StatusCode == http.StatusUnauthorized && authed {
		c.session.Logout()
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
