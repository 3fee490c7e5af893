package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourusername/vornify-cli/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:3010"
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "vornify-cli/0.1"
	maxErrorBody     = 64 << 10
)

// Paths holds the endpoint paths of the Vornify services
type Paths struct {
	DB      string
	Storage string
	Payment string
	Email   string
}

// DefaultPaths returns the paths served by the Vornify API
func DefaultPaths() Paths {
	return Paths{
		DB:      "/api/vornifydb",
		Storage: "/api/storage",
		Payment: "/api/vornifypay",
		Email:   "/api/email",
	}
}

// Client sends command envelopes to a Vornify-style HTTP API
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	apiKey    string
	bearer    string
	paths     Paths
	log       zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout (zero disables it)
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithAPIKey sends the key in the X-API-Key header
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBearerToken sends an Authorization: Bearer header
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.bearer = token
	}
}

// WithPaths overrides endpoint paths; empty fields keep their defaults
func WithPaths(p Paths) Option {
	return func(c *Client) {
		if p.DB != "" {
			c.paths.DB = p.DB
		}
		if p.Storage != "" {
			c.paths.Storage = p.Storage
		}
		if p.Payment != "" {
			c.paths.Payment = p.Payment
		}
		if p.Email != "" {
			c.paths.Email = p.Email
		}
	}
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
		paths:     DefaultPaths(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Paths returns the endpoint paths in use
func (c *Client) Paths() Paths {
	return c.paths
}

// Send posts a command envelope to path and parses the response envelope.
// A response whose outcome is failure is returned without an error; the
// transport error kinds are reserved for failures to get a valid envelope.
func (c *Client) Send(ctx context.Context, path string, env *models.CommandEnvelope) (*models.ResponseEnvelope, error) {
	if env == nil {
		return nil, fmt.Errorf("envelope is nil")
	}
	return c.PostJSON(ctx, path, env)
}

// PostJSON posts an arbitrary JSON body and parses the response envelope
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}) (*models.ResponseEnvelope, error) {
	raw, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	return parseEnvelope("POST "+path, raw)
}

// GetEnvelope issues a GET and parses the response envelope
func (c *Client) GetEnvelope(ctx context.Context, path string) (*models.ResponseEnvelope, error) {
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return parseEnvelope("GET "+path, raw)
}

// GetJSON issues a GET and decodes the body into dest without envelope handling
func (c *Client) GetJSON(ctx context.Context, path string, dest interface{}) error {
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return models.NewError(models.KindMalformedResponse, "GET "+path, err)
	}
	return nil
}

func parseEnvelope(op string, raw []byte) (*models.ResponseEnvelope, error) {
	var resp models.ResponseEnvelope
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, models.NewError(models.KindMalformedResponse, op, err)
	}
	return &resp, nil
}

// do performs the request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	op := method + " " + path
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + "/" + strings.TrimLeft(rel.Path, "/")
	reqURL.RawQuery = rel.RawQuery

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	ev := c.log.Debug().Str("request_id", requestID).Str("method", method).Str("path", path)
	if env, ok := body.(*models.CommandEnvelope); ok {
		ev = ev.Str("command", env.Command)
	}
	ev.Msg("sending request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("request_id", requestID).Err(err).Msg("request failed")
		return nil, models.NewError(models.KindUnreachable, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, models.NewHTTPError(op, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewError(models.KindUnreachable, op, fmt.Errorf("read response: %w", err))
	}
	return raw, nil
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
