// Package http is deskflow's own fluent request client: the vision package
// builds every outbound call to the vision model on top of it rather than
// reaching for net/http directly.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a reusable, chainable HTTP client: a base URL and defaults
// (headers, query params, retry policy) shared by every Request it builds.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	headers     map[string]string
	queryParams map[string]string
	timeout     time.Duration
	retryConfig *RetryConfig
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxAttempts int
	Backoff     BackoffStrategy
	RetryIf     func(*http.Response, error) bool
}

// BackoffStrategy defines how to calculate retry delays
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// Request represents an HTTP request with fluent API
type Request struct {
	client      *Client
	method      string
	url         string
	headers     map[string]string
	queryParams map[string]string
	body        io.Reader
	bodyData    interface{}
	contentType string
	timeout     time.Duration
	retries     *RetryConfig
	ctx         context.Context
}

// Response represents an HTTP response with helper methods
type Response struct {
	*http.Response
	body       []byte
	retryCount int
	duration   time.Duration
}

// NewClient creates a new HTTP client with default configuration
func NewClient() *Client {
	return NewClientWithVersion("dev")
}

// NewClientWithVersion creates a new HTTP client, stamping the given
// version into the User-Agent header sent with every request.
func NewClientWithVersion(version string) *Client {
	headers := make(map[string]string)
	headers["Accept"] = "application/json"
	headers["User-Agent"] = fmt.Sprintf("deskflow/%s", version)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers:     headers,
		queryParams: make(map[string]string),
		timeout:     30 * time.Second,
		retryConfig: &RetryConfig{
			MaxAttempts: 3,
			Backoff:     &ExponentialBackoff{BaseDelay: time.Second},
			RetryIf:     DefaultRetryCondition,
		},
	}
}

// BaseURL sets the base URL for all requests
func (c *Client) BaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// Timeout sets the default timeout for requests
func (c *Client) Timeout(timeout time.Duration) *Client {
	c.timeout = timeout
	c.httpClient.Timeout = timeout
	return c
}

// Header sets a default header for all requests
func (c *Client) Header(key, value string) *Client {
	c.headers[key] = value
	return c
}

// Headers sets multiple default headers
func (c *Client) Headers(headers map[string]string) *Client {
	for k, v := range headers {
		c.headers[k] = v
	}
	return c
}

// Query sets a default query parameter for all requests
func (c *Client) Query(key, value string) *Client {
	c.queryParams[key] = value
	return c
}

// Auth sets authentication headers
func (c *Client) Auth(auth Auth) *Client {
	return auth.Apply(c)
}

// Retry configures retry behavior
func (c *Client) Retry(config *RetryConfig) *Client {
	c.retryConfig = config
	return c
}

// GET creates a GET request
func (c *Client) GET(url string) *Request {
	return c.newRequest(http.MethodGet, url)
}

// POST creates a POST request
func (c *Client) POST(url string) *Request {
	return c.newRequest(http.MethodPost, url)
}

// PUT creates a PUT request
func (c *Client) PUT(url string) *Request {
	return c.newRequest(http.MethodPut, url)
}

// PATCH creates a PATCH request
func (c *Client) PATCH(url string) *Request {
	return c.newRequest(http.MethodPatch, url)
}

// DELETE creates a DELETE request
func (c *Client) DELETE(url string) *Request {
	return c.newRequest(http.MethodDelete, url)
}

// newRequest creates a new request with client defaults
func (c *Client) newRequest(method, url string) *Request {
	fullURL := url
	if c.baseURL != "" && !strings.HasPrefix(url, "http") {
		fullURL = c.baseURL + "/" + strings.TrimPrefix(url, "/")
	}

	req := &Request{
		client:      c,
		method:      method,
		url:         fullURL,
		headers:     make(map[string]string),
		queryParams: make(map[string]string),
		timeout:     c.timeout,
		retries:     c.retryConfig,
		ctx:         context.Background(),
	}

	for k, v := range c.headers {
		req.headers[k] = v
	}
	for k, v := range c.queryParams {
		req.queryParams[k] = v
	}

	return req
}

// Header sets a header for this request
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Headers sets multiple headers for this request
func (r *Request) Headers(headers map[string]string) *Request {
	for k, v := range headers {
		r.headers[k] = v
	}
	return r
}

// Query sets a query parameter for this request
func (r *Request) Query(key, value string) *Request {
	r.queryParams[key] = value
	return r
}

// Body sets the request body from a reader. The vision client uses this to
// attach a pre-built multipart/form-data buffer carrying the screenshot.
func (r *Request) Body(body io.Reader) *Request {
	r.body = body
	return r
}

// JSON sets the request body as JSON
func (r *Request) JSON(data interface{}) *Request {
	r.bodyData = data
	r.contentType = "application/json"
	return r
}

// XML sets the request body as XML
func (r *Request) XML(data interface{}) *Request {
	r.bodyData = data
	r.contentType = "application/xml"
	return r
}

// Timeout sets the timeout for this request
func (r *Request) Timeout(timeout time.Duration) *Request {
	r.timeout = timeout
	return r
}

// Context sets the context for this request
func (r *Request) Context(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Retry configures retry behavior for this request
func (r *Request) Retry(config *RetryConfig) *Request {
	r.retries = config
	return r
}

// Send executes the request and returns the response
func (r *Request) Send() (*Response, error) {
	if err := r.prepareBody(); err != nil {
		return nil, fmt.Errorf("failed to prepare request body: %w", err)
	}

	httpReq, err := r.buildHTTPRequest()
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}

	return r.executeWithRetries(httpReq)
}

// prepareBody prepares the request body based on bodyData and contentType
func (r *Request) prepareBody() error {
	if r.bodyData == nil {
		return nil
	}

	var data []byte
	var err error

	switch r.contentType {
	case "application/json":
		data, err = json.Marshal(r.bodyData)
	case "application/xml":
		data, err = xml.Marshal(r.bodyData)
	default:
		return fmt.Errorf("unsupported content type: %s", r.contentType)
	}

	if err != nil {
		return err
	}

	r.body = bytes.NewReader(data)
	return nil
}

// buildHTTPRequest builds the standard HTTP request
func (r *Request) buildHTTPRequest() (*http.Request, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, err
	}

	if len(r.queryParams) > 0 {
		q := u.Query()
		for k, v := range r.queryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(r.ctx, r.method, u.String(), r.body)
	if err != nil {
		return nil, err
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	return req, nil
}

// executeWithRetries executes the request with retry logic
func (r *Request) executeWithRetries(req *http.Request) (*Response, error) {
	var lastErr error
	var resp *Response

	maxAttempts := 1
	if r.retries != nil {
		maxAttempts = r.retries.MaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		start := time.Now()

		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		reqWithTimeout := req.WithContext(ctx)

		httpResp, err := r.client.httpClient.Do(reqWithTimeout)
		cancel()

		duration := time.Since(start)

		if err != nil {
			lastErr = err
			if attempt < maxAttempts-1 && r.shouldRetry(nil, err) {
				time.Sleep(r.retries.Backoff.NextDelay(attempt))
				continue
			}
			return nil, err
		}

		body, err := io.ReadAll(httpResp.Body)
		_ = httpResp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < maxAttempts-1 && r.shouldRetry(httpResp, err) {
				time.Sleep(r.retries.Backoff.NextDelay(attempt))
				continue
			}
			return nil, err
		}

		resp = &Response{
			Response:   httpResp,
			body:       body,
			retryCount: attempt,
			duration:   duration,
		}

		if attempt < maxAttempts-1 && r.shouldRetry(httpResp, nil) {
			time.Sleep(r.retries.Backoff.NextDelay(attempt))
			continue
		}

		return resp, nil
	}

	return resp, lastErr
}

// shouldRetry determines if a request should be retried
func (r *Request) shouldRetry(resp *http.Response, err error) bool {
	if r.retries == nil || r.retries.RetryIf == nil {
		return false
	}
	return r.retries.RetryIf(resp, err)
}

// Body returns the response body as bytes
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as string
func (r *Response) String() string {
	return string(r.body)
}

// JSON unmarshals the response body as JSON
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.body, v)
}

// IsSuccess returns true if the response status code indicates success (2xx)
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RetryCount returns the number of retries that were performed
func (r *Response) RetryCount() int {
	return r.retryCount
}

// Duration returns the duration of the final attempt (earlier retried
// attempts and backoff sleeps are not included)
func (r *Response) Duration() time.Duration {
	return r.duration
}

// ExponentialBackoff doubles the delay on every attempt, starting at
// BaseDelay, with no cap of its own (callers needing a ceiling, like the
// vision client, supply their own BackoffStrategy instead).
type ExponentialBackoff struct {
	BaseDelay time.Duration
}

// NextDelay implements BackoffStrategy.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := b.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// DefaultRetryCondition retries on transport errors, server errors, and
// rate limiting.
func DefaultRetryCondition(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode >= 500 || resp.StatusCode == 429
}
