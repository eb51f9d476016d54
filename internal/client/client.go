// Package client provides a typed client for the feedback analytics REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
)

const (
	DefaultBaseURL   = "http://localhost:8000/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultLoginPath = "/login"
)

// maxRejectedTokens bounds the remembered 401 tokens; the oldest is forgotten first.
const maxRejectedTokens = 256

// ErrUnauthorized is returned (wrapped in *HTTPError) for every 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Message, e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// ObserveFunc receives one call per completed request. Status is 0 on transport errors.
type ObserveFunc func(method, path string, status int, elapsed time.Duration)

// UnauthorizedFunc is invoked once per rejected token, with the login path to navigate to.
type UnauthorizedFunc func(ctx context.Context, loginPath string)

// Client is the single configured API client. It attaches the bearer token to
// every request and, on the first 401 for a token, clears it and fires the
// unauthorized hook.
type Client struct {
	baseURL        string
	loginPath      string
	httpClient     *http.Client
	logger         *common.Logger
	limiter        *rate.Limiter
	tokens         interfaces.TokenProvider
	onUnauthorized UnauthorizedFunc
	observe        ObserveFunc

	mu            sync.Mutex
	rejected      map[string]struct{}
	rejectedOrder []string
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTokenProvider sets where bearer tokens are read from and cleared.
func WithTokenProvider(tp interfaces.TokenProvider) ClientOption {
	return func(c *Client) {
		c.tokens = tp
	}
}

// WithUnauthorizedHandler sets the hook fired after a token is rejected.
func WithUnauthorizedHandler(fn UnauthorizedFunc) ClientOption {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithObserver registers a per-request callback, used for metrics.
func WithObserver(fn ObserveFunc) ClientOption {
	return func(c *Client) {
		c.observe = fn
	}
}

// WithLoginPath sets the path handed to the unauthorized hook.
func WithLoginPath(path string) ClientOption {
	return func(c *Client) {
		c.loginPath = path
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		loginPath: DefaultLoginPath,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:   common.NewSilentLogger(),
		tokens:   ContextTokens{},
		rejected: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig builds a client from the [api] config section.
func NewClientFromConfig(cfg common.APIConfig, logger *common.Logger, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithBaseURL(cfg.BaseURL),
		WithTimeout(cfg.GetTimeout()),
		WithRateLimit(cfg.RateLimit),
		WithLogger(logger),
	}
	if cfg.LoginPath != "" {
		base = append(base, WithLoginPath(cfg.LoginPath))
	}
	return NewClient(append(base, opts...)...)
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ContextTokens reads the bearer token from the request's SessionContext.
// Clearing is a no-op: the browser owns the token.
type ContextTokens struct{}

func (ContextTokens) Token(ctx context.Context) string     { return common.ResolveToken(ctx) }
func (ContextTokens) ClearToken(ctx context.Context) error { return nil }

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) send(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reader, contentType, out)
}

// upload posts a single file as multipart field "file".
func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	token := c.tokens.Token(ctx)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if sc := common.SessionFromContext(ctx); sc != nil && sc.RequestID != "" {
		req.Header.Set("X-Correlation-ID", sc.RequestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.observe != nil {
			c.observe(method, routeOf(path), 0, time.Since(start))
		}
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if c.observe != nil {
		c.observe(method, routeOf(path), resp.StatusCode, time.Since(start))
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data, resp.StatusCode),
			Method:     method,
			Path:       path,
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(ctx, token)
		}
		return herr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// handleUnauthorized clears a rejected token once, however many in-flight
// requests observe the 401. Tokenless requests that follow the clear belong to
// the same ended session and stay quiet until ResetUnauthorized.
func (c *Client) handleUnauthorized(ctx context.Context, token string) {
	c.mu.Lock()
	if _, seen := c.rejected[token]; seen {
		c.mu.Unlock()
		return
	}
	if token != "" {
		if len(c.rejectedOrder) >= maxRejectedTokens {
			delete(c.rejected, c.rejectedOrder[0])
			c.rejectedOrder = c.rejectedOrder[1:]
		}
		c.rejectedOrder = append(c.rejectedOrder, token)
	}
	c.rejected[token] = struct{}{}
	c.rejected[""] = struct{}{}
	c.mu.Unlock()

	if err := c.tokens.ClearToken(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear rejected token")
	}
	c.logger.Info().Str("redirect", c.loginPath).Msg("Session rejected by API")

	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx, c.loginPath)
	}
}

// ResetUnauthorized re-arms the 401 hook, e.g. after a fresh login.
func (c *Client) ResetUnauthorized() {
	c.mu.Lock()
	c.rejected = make(map[string]struct{})
	c.rejectedOrder = nil
	c.mu.Unlock()
}

// errorMessage extracts a readable message from an error body. The API uses
// {"detail": "..."}; detail may also be a list of validation errors.
func errorMessage(body []byte, status int) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		if env.Error != "" {
			return env.Error
		}
		if len(env.Detail) > 0 {
			var s string
			if json.Unmarshal(env.Detail, &s) == nil && s != "" {
				return s
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(env.Detail, &items) == nil && len(items) > 0 {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					if it.Msg != "" {
						msgs = append(msgs, it.Msg)
					}
				}
				if len(msgs) > 0 {
					return strings.Join(msgs, "; ")
				}
			}
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// routeOf reduces a request path to a low-cardinality label: the query is
// dropped and only the first two segments are kept.
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "/" + strings.Join(parts, "/")
}
