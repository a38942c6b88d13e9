package agent

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

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
)

var (
	ErrEmptyResponse = errors.New("no choices in response")
)

// StatusError is returned for a non-200 reply from the completions endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		transport := c.httpClient.Transport
		c.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}
}

func WithRateLimit(requestsPerMinute int, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

func WithAPIConfig(baseURL, model string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "ai_client")
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		logger:  slog.Default().With("component", "ai_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("AI client initialized",
		"base_url", c.baseURL,
		"model", c.model,
		"timeout", c.httpClient.Timeout,
		"rate_limit", fmt.Sprintf("%v req/s", c.limiter.Limit()))

	return c
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Generate performs exactly one completion request. Failures are returned as-is;
// there is no retry.
func (c *Client) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	requestID := uuid.NewString()
	startTime := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Error("rate limit wait failed",
			"request_id", requestID,
			"error", err)
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	c.logger.Debug("rate limit passed",
		"request_id", requestID,
		"wait_duration_ms", time.Since(startTime).Milliseconds())

	return c.doRequest(ctx, requestID, req)
}

func (c *Client) doRequest(ctx context.Context, requestID string, gen GenerationRequest) (string, error) {
	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": gen.Prompt,
			},
		},
		"max_tokens":  gen.MaxTokens,
		"temperature": gen.Temperature,
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending completion request",
		"request_id", requestID,
		"model", c.model,
		"prompt_length", len(gen.Prompt),
		"max_tokens", gen.MaxTokens,
		"temperature", gen.Temperature)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpStart := time.Now()
	resp, err := c.httpClient.Do(req)
	httpDuration := time.Since(httpStart)
	if err != nil {
		c.logger.Error("HTTP request failed",
			"request_id", requestID,
			"duration_ms", httpDuration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("completion API error",
			"request_id", requestID,
			"status_code", resp.StatusCode,
			"response_body", string(respBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := response.Choices[0].Message.Content

	c.logger.Info("completion request finished",
		"request_id", requestID,
		"duration_ms", httpDuration.Milliseconds(),
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens,
		"response_length", len(content))

	return content, nil
}
