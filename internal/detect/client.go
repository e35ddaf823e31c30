package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the configuration for the detection service client
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxImageBytes int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:3001",
		Timeout:       30 * time.Second,
		MaxImageBytes: 10 * 1024 * 1024,
	}
}

// Client is the HTTP client for the face detection service.
//
// Each Detect is exactly one request: failed calls are not retried here, the
// user decides whether to analyze again.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new detection service client
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Detect submits a captured still image for face-attribute analysis and
// returns the structured result. A response with zero faces is a valid
// outcome, not an error.
func (c *Client) Detect(ctx context.Context, image []byte) (*Response, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if c.config.MaxImageBytes > 0 && len(image) > c.config.MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes, maximum %d", ErrImageTooLarge, len(image), c.config.MaxImageBytes)
	}

	req := Request{
		Image: base64.StdEncoding.EncodeToString(image),
	}

	var resp Response
	if err := c.doRequest(ctx, http.MethodPost, "/api/detect", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseServiceError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}

// parseServiceError extracts the server-supplied error message when the
// error payload has one; clients prefer that message over transport detail.
func parseServiceError(status int, body []byte) error {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &ServiceError{StatusCode: status, Message: payload.Error}
	}
	return &ServiceError{
		StatusCode: status,
		Message:    fmt.Sprintf("detection service returned status %d", status),
	}
}
