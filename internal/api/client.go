// Package api is the transport and resource layer of the Bridge SDK: an HTTP
// client that injects the Bridge-Session header, the Session value it
// carries, typed errors, and one service per server resource.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sagebionetworks/bridge-sdk-go/internal/cache"
	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/debug"
	"github.com/sagebionetworks/bridge-sdk-go/internal/metrics"
)

const (
	DefaultTimeout = 30 * time.Second

	// SessionHeader carries the session token on requests and on the
	// sign-in response.
	SessionHeader = "Bridge-Session"

	maxRedirects = 10
)

// RawResponse is a fully read HTTP response.
type RawResponse struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	URL        string
}

// Client is the Bridge API client. It is safe for concurrent use; the
// session is passed per call and never stored.
type Client struct {
	Host          string
	HTTP          *http.Client
	UserAgent     string
	RetryConfig   RetryConfig
	RequestIDFunc func() string

	paths           map[config.Key]string
	timeout         time.Duration
	followRedirects bool
	limiter         *rate.Limiter
	metrics         metrics.Recorder
	cache           cache.Store
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ HTTPExecutor = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its CheckRedirect is
// left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

// WithTimeout bounds every exchange, retries included. Each attempt is
// also limited to d on its own.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
			c.HTTP.Timeout = d
		}
	}
}

// WithMaxRetries sets how often idempotent requests are re-sent after an
// I/O failure.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.RetryConfig.MaxRetries = n }
}

// WithFollowRedirects chooses between following redirects for every method
// (true, the default) and only for GET and HEAD.
func WithFollowRedirects(all bool) Option {
	return func(c *Client) { c.followRedirects = all }
}

// WithRateLimit caps outgoing requests per second. Zero disables the cap.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMetrics reports every request to r.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithCache stores immutable GET results in s.
func WithCache(s cache.Store) Option {
	return func(c *Client) {
		if s != nil {
			c.cache = s
		}
	}
}

// WithPaths sets the path template of each resource.
func WithPaths(paths map[config.Key]string) Option {
	return func(c *Client) {
		for k, v := range paths {
			c.paths[k] = v
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = ua }
}

// New creates a client for host, which must end with "/".
func New(host string, opts ...Option) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	c := &Client{
		Host:            host,
		UserAgent:       UserAgent(""),
		RetryConfig:     DefaultRetryConfig(),
		RequestIDFunc:   uuid.NewString,
		paths:           make(map[config.Key]string),
		timeout:         DefaultTimeout,
		followRedirects: true,
		metrics:         metrics.Nop{},
		cache:           cache.Nop{},
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.HTTP.CheckRedirect == nil {
		c.HTTP.CheckRedirect = c.checkRedirect
	}
	return c
}

// NewFromConfig creates a client for the host and paths in cfg, tuned by
// settings. Extra options are applied last.
func NewFromConfig(cfg *config.Config, settings config.Settings, opts ...Option) *Client {
	base := []Option{
		WithPaths(cfg.Paths()),
		WithTimeout(settings.Timeout),
		WithMaxRetries(settings.MaxRetries),
		WithFollowRedirects(settings.FollowRedirects),
		WithRateLimit(settings.RateLimit),
	}
	return New(cfg.Host(), append(base, opts...)...)
}

// checkRedirect follows redirects for every method unless restricted, and
// never forwards the session token to another host.
func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !c.followRedirects {
		switch via[0].Method {
		case http.MethodGet, http.MethodHead:
		default:
			return http.ErrUseLastResponse
		}
	}
	if req.URL.Host != via[0].URL.Host {
		req.Header.Del(SessionHeader)
	}
	return nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.HTTP.CloseIdleConnections()
}

// FullURL joins the host and a relative path. Paths must not start with
// "/", since the host already ends with one.
func (c *Client) FullURL(path string) (string, error) {
	if strings.HasPrefix(path, "/") {
		return "", argumentError("path", fmt.Sprintf("%q must not start with \"/\"", path))
	}
	return c.Host + path, nil
}

// Get performs an unauthenticated GET.
func (c *Client) Get(ctx context.Context, path string) (*RawResponse, error) {
	return c.send(ctx, http.MethodGet, path, nil, nil)
}

// Post performs an unauthenticated POST. A nil body sends no content.
func (c *Client) Post(ctx context.Context, path string, body any) (*RawResponse, error) {
	return c.send(ctx, http.MethodPost, path, nil, body)
}

// AuthenticatedGet performs a GET carrying the session token.
func (c *Client) AuthenticatedGet(ctx context.Context, path string, session Session) (*RawResponse, error) {
	return c.send(ctx, http.MethodGet, path, &session, nil)
}

// AuthenticatedPost performs a POST carrying the session token.
func (c *Client) AuthenticatedPost(ctx context.Context, path string, session Session, body any) (*RawResponse, error) {
	return c.send(ctx, http.MethodPost, path, &session, body)
}

// AuthenticatedDelete performs a DELETE carrying the session token.
func (c *Client) AuthenticatedDelete(ctx context.Context, path string, session Session) (*RawResponse, error) {
	return c.send(ctx, http.MethodDelete, path, &session, nil)
}

// ExtractSessionToken returns the Bridge-Session header of resp.
func (c *Client) ExtractSessionToken(resp *RawResponse) (string, error) {
	if resp == nil {
		return "", argumentError("response", "must not be nil")
	}
	token := strings.TrimSpace(resp.Header.Get(SessionHeader))
	if token == "" {
		return "", ErrMissingSessionHeader
	}
	return token, nil
}

// do sends a request and decodes a JSON response into result.
func (c *Client) do(ctx context.Context, method, path string, session *Session, body any, result any) error {
	resp, err := c.send(ctx, method, path, session, body)
	if err != nil {
		return err
	}
	return decodeBody(resp, result)
}

func decodeBody(resp *RawResponse, result any) error {
	if result == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return fmt.Errorf("unexpected API response format from %s (JSON decode failed): %w", resp.URL, err)
	}
	return nil
}

// send checks the session, encodes the body and executes the request.
func (c *Client) send(ctx context.Context, method, path string, session *Session, body any) (*RawResponse, error) {
	if session != nil && !session.SignedIn() {
		return nil, ErrNotSignedIn(method + " " + path)
	}
	url, err := c.FullURL(path)
	if err != nil {
		return nil, err
	}

	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	token := ""
	if session != nil {
		token = session.Token()
	}
	var header http.Header
	if jsonBody != nil {
		header = http.Header{"Content-Type": {"application/json"}}
	}
	return c.execute(ctx, method, url, token, jsonBody, header)
}

// execute performs one logical request: the first attempt plus any retries
// of an idempotent method after an I/O failure. Responses are never retried.
func (c *Client) execute(ctx context.Context, method, url, token string, body []byte, header http.Header) (*RawResponse, error) {
	requestID := ""
	if c.RequestIDFunc != nil {
		requestID = c.RequestIDFunc()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	maxAttempts := 1 + c.RetryConfig.retriesFor(method)
	start := time.Now()

	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, &TransportError{Method: method, URL: url, Attempts: attempt - 1, Err: err}
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if token != "" {
			req.Header.Set(SessionHeader, token)
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range header {
			req.Header[k] = v
		}
		if c.UserAgent != "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}
		if requestID != "" {
			req.Header.Set("X-Request-Id", requestID)
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if debug.IsEnabled(ctx) {
				slog.Debug("request failed", "method", method, "url", url, "attempt", attempt, "error", err)
			}
			if attempt < maxAttempts && retryableError(err) {
				c.metrics.RecordRetry(method)
				continue
			}
			c.metrics.RecordRequest(method, 0, time.Since(start))
			return nil, &TransportError{Method: method, URL: url, Attempts: attempt, Err: err}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		c.metrics.RecordRequest(method, resp.StatusCode, time.Since(start))
		if debug.IsEnabled(ctx) {
			slog.Debug("request complete", "method", method, "url", url, "status", resp.StatusCode,
				"attempt", attempt, "request_id", requestID, "duration", time.Since(start))
		}

		finalURL := url
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL.String()
		}
		if readErr != nil {
			return nil, &ServerError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Message:    "failed to read response",
				URL:        finalURL,
				RequestID:  requestID,
				Err:        readErr,
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err := newServerError(resp.StatusCode, resp.Status, url, respBody, resp.Header)
			var se *ServerError
			if errors.As(err, &se) && se.RequestID == "" {
				se.RequestID = requestID
			}
			return nil, err
		}

		return &RawResponse{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Header:     resp.Header,
			Body:       respBody,
			URL:        finalURL,
		}, nil
	}
}
