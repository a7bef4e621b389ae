package vision

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"time"

	fluenthttp "github.com/phillarmonic/deskflow/internal/http"
)

// HTTPClient adapts the project's fluent request client to the vision
// model's REST endpoint: a multipart POST carrying the PNG screenshot plus
// the system/user prompts, a single JSON text reply out.
type HTTPClient struct {
	client  *fluenthttp.Client
	model   string
	apiKey  string
	timeout time.Duration
}

// HTTPClientConfig configures an HTTPClient.
type HTTPClientConfig struct {
	Endpoint   string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// NewHTTPClient builds an HTTPClient wired with bounded exponential backoff
// retrying on rate limits (429) and server errors (5xx), same condition the
// fluent client applies by default.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	c := fluenthttp.NewClientWithVersion("deskflow").
		BaseURL(cfg.Endpoint).
		Timeout(cfg.Timeout).
		Header("Content-Type", "application/json").
		Retry(&fluenthttp.RetryConfig{
			MaxAttempts: maxRetries,
			Backoff:     &exponentialBackoff{base: 500 * time.Millisecond, max: 20 * time.Second},
			RetryIf:     fluenthttp.DefaultRetryCondition,
		})
	if cfg.APIKey != "" {
		c = c.Auth(fluenthttp.Bearer(cfg.APIKey))
	}

	return &HTTPClient{client: c, model: cfg.Model, apiKey: cfg.APIKey, timeout: cfg.Timeout}
}

type visionResponse struct {
	Text         string `json:"text"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Model        string `json:"model"`
}

// Send implements Client.
func (c *HTTPClient) Send(ctx context.Context, png []byte, systemPrompt, userPrompt string) (*Reply, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image", "screenshot.png")
	if err != nil {
		return nil, fmt.Errorf("building vision request: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return nil, fmt.Errorf("building vision request: %w", err)
	}
	_ = w.WriteField("model", c.model)
	_ = w.WriteField("system", systemPrompt)
	_ = w.WriteField("prompt", userPrompt)
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("building vision request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.POST("/v1/vision").
		Context(ctx).
		Header("Content-Type", w.FormDataContentType()).
		Body(&buf).
		Send()
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &ModelError{StatusCode: resp.StatusCode, Body: resp.String()}
	}

	var parsed visionResponse
	if err := resp.JSON(&parsed); err != nil {
		return nil, fmt.Errorf("decoding vision response: %w", err)
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}
	return &Reply{
		Text:         parsed.Text,
		InputTokens:  parsed.InputTokens,
		OutputTokens: parsed.OutputTokens,
		Model:        model,
		Duration:     time.Since(start),
	}, nil
}

var _ Client = (*HTTPClient)(nil)

// exponentialBackoff is a minimal doubling-with-jitter-free backoff, a
// trimmed form of the fluent client's own ExponentialBackoff strategy.
type exponentialBackoff struct {
	base time.Duration
	max  time.Duration
}

func (b *exponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := b.base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= b.max {
			return b.max
		}
	}
	return delay
}

var _ fluenthttp.BackoffStrategy = (*exponentialBackoff)(nil)
