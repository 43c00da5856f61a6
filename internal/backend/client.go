// Package backend talks to the model-serving API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoint builders for the model-serving API.
func PredictPath(task string) string { return "predict/" + task }
func AttackPath(task string) string  { return "attack/" + task }
func HotFlipPath(task string) string { return "hotflip/" + task }
func InterpretPath(task, interpreter string) string {
	return "interpret/" + task + "/" + interpreter
}

// Client posts JSON payloads to the model-serving API.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRateLimit caps outgoing requests per minute. Zero disables limiting.
func WithRateLimit(rpm int) Option {
	return func(c *Client) {
		if rpm > 0 {
			c.limiter = newRateLimiter(rpm)
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict posts inputs to a predict endpoint and returns the raw JSON
// object. Decoding into a task schema is left to the caller.
func (c *Client) Predict(ctx context.Context, endpoint string, inputs map[string]any) (json.RawMessage, error) {
	body, err := c.post(ctx, endpoint, inputs)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, &ResponseShapeError{Endpoint: endpoint, Reason: "expected a JSON object", Err: err}
	}
	return json.RawMessage(body), nil
}

// Attack posts inputs to an attack or hotflip endpoint.
func (c *Client) Attack(ctx context.Context, endpoint string, inputs map[string]any) (*AttackResult, error) {
	var result AttackResult
	if err := c.call(ctx, endpoint, inputs, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Interpret posts inputs to an interpret endpoint.
func (c *Client) Interpret(ctx context.Context, endpoint string, inputs map[string]any) (InterpretResult, error) {
	var result InterpretResult
	if err := c.call(ctx, endpoint, inputs, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// call posts inputs and decodes the response into out, validating it when
// out implements Validator.
func (c *Client) call(ctx context.Context, endpoint string, inputs map[string]any, out any) error {
	body, err := c.post(ctx, endpoint, inputs)
	if err != nil {
		return err
	}
	return Decode(endpoint, body, out)
}

// Decode unmarshals a response body into out and validates it.
func Decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &ResponseShapeError{Endpoint: endpoint, Reason: "decoding JSON", Err: err}
	}
	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &ResponseShapeError{Endpoint: endpoint, Reason: err.Error()}
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, inputs map[string]any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.wait(ctx); err != nil {
			return nil, &NetworkError{Endpoint: endpoint, Err: err}
		}
	}

	payload, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("marshalling %s request: %w", endpoint, err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(endpoint, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: truncate(string(body), 512)}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
