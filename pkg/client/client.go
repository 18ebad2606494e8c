// Package client talks to the livingtrust HTTP API. Client implements
// ports.SubmissionGateway so the terminal wizard can submit to a remote server.
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

	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// Client is a thin JSON client for the API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New returns a client for the API rooted at baseURL (e.g. http://localhost:3001).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.SubmissionGateway = (*Client)(nil)

// Submit creates a trust through POST /api/trusts. The idempotency key is
// sent as a header so a retried submission yields the same trust.
func (c *Client) Submit(ctx context.Context, req ports.GatewayRequest) (*domain.Trust, error) {
	var out struct {
		Trust domain.Trust `json:"trust"`
	}
	headers := http.Header{}
	if req.IdempotencyKey != "" {
		headers.Set(domain.HeaderIdempotencyKey, req.IdempotencyKey)
	}
	if err := c.do(ctx, http.MethodPost, "/api/trusts", headers, req.Draft, &out); err != nil {
		return nil, err
	}
	return &out.Trust, nil
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user of the configured token.
func (c *Client) Me(ctx context.Context) (*domain.PublicUser, error) {
	var out struct {
		User domain.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListTrusts returns the caller's trusts, optionally filtered by status.
func (c *Client) ListTrusts(ctx context.Context, status domain.TrustStatus) ([]*domain.Trust, error) {
	path := "/api/trusts"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out struct {
		Trusts []*domain.Trust `json:"trusts"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Trusts, nil
}

var _ ports.Advisor = (*Client)(nil)

// Chat asks the server-side advisor.
func (c *Client) Chat(ctx context.Context, req ports.ChatRequest) (*domain.ChatReply, error) {
	var out domain.ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/ai/chat", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze sends documentText to the server-side advisor.
func (c *Client) Analyze(ctx context.Context, documentText string) (*domain.Analysis, error) {
	var out domain.Analysis
	body := map[string]string{"documentText": documentText}
	if err := c.do(ctx, http.MethodPost, "/api/ai/analyze", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartSession opens a server-side wizard session.
func (c *Client) StartSession(ctx context.Context) (*wizard.View, error) {
	return c.view(ctx, http.MethodPost, "/api/wizard/sessions", nil)
}

func (c *Client) Session(ctx context.Context, id string) (*wizard.View, error) {
	return c.view(ctx, http.MethodGet, sessionPath(id, ""), nil)
}

// UpdateDraft sets one field of the session draft.
func (c *Client) UpdateDraft(ctx context.Context, id string, field domain.Field, value string) (*wizard.View, error) {
	return c.view(ctx, http.MethodPatch, sessionPath(id, "/draft"), map[string]string{
		"field": string(field),
		"value": value,
	})
}

// Next, Back, Cancel and Confirm return the view alongside the error when
// the server rejected the step (422) or the submission (502).
func (c *Client) Next(ctx context.Context, id string) (*wizard.View, error) {
	return c.view(ctx, http.MethodPost, sessionPath(id, "/next"), nil)
}

func (c *Client) Back(ctx context.Context, id string) (*wizard.View, error) {
	return c.view(ctx, http.MethodPost, sessionPath(id, "/back"), nil)
}

func (c *Client) Cancel(ctx context.Context, id string) (*wizard.View, error) {
	return c.view(ctx, http.MethodPost, sessionPath(id, "/cancel"), nil)
}

func (c *Client) Confirm(ctx context.Context, id string) (*wizard.View, error) {
	return c.view(ctx, http.MethodPost, sessionPath(id, "/confirm"), nil)
}

func (c *Client) DiscardSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id, ""), nil, nil, nil)
}

func sessionPath(id, suffix string) string {
	return "/api/wizard/sessions/" + url.PathEscape(id) + suffix
}

func (c *Client) view(ctx context.Context, method, path string, body any) (*wizard.View, error) {
	var v wizard.View
	err := c.do(ctx, method, path, nil, body, &v)
	var apiErr *APIError
	if err != nil && !(errors.As(err, &apiErr) && v.State != nil) {
		return nil, err
	}
	return &v, err
}

// do sends body as JSON and decodes the response into out. Error responses
// are decoded into out as well, so callers can read the state attached to
// 422 and 502 wizard responses.
func (c *Client) do(ctx context.Context, method, path string, headers http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	for k, vs := range headers {
		req.Header[k] = vs
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if out != nil && len(raw) > 0 && gjson.ValidBytes(raw) {
		if err := json.Unmarshal(raw, out); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		return responseError(resp.StatusCode, raw)
	}
	return nil
}

// responseError maps an error body to an error that still matches the
// domain sentinels where the status carries that meaning.
func responseError(status int, raw []byte) error {
	msg := gjson.GetBytes(raw, "error").String()
	if msg == "" {
		msg = http.StatusText(status)
	}
	apiErr := &APIError{Status: status, Message: msg}
	switch status {
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", domain.ErrValidationBlocked, apiErr)
	case http.StatusBadGateway:
		return &domain.SubmissionError{Cause: apiErr}
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, apiErr)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w", domain.ErrInvalidTransition, apiErr)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, apiErr)
	}
	return apiErr
}
