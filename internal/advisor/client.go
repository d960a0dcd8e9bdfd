// Package advisor talks to the upstream language-model provider, either
// directly or through the expense proxy.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"expenseminimizer/internal/core"
	"expenseminimizer/internal/prompt"
)

const (
	DefaultEndpoint    = "https://api.openai.com/v1/chat/completions"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	defaultTimeout     = 60 * time.Second
	maxReplyBytes      = 4 << 20
)

// Config configures the upstream Client.
type Config struct {
	APIKey      string
	Endpoint    string
	Model       string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client sends one prompt per call to a chat-completions endpoint. It never
// retries; callers serialize calls.
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:      cfg.APIKey,
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  cfg.HTTPClient,
	}
	if strings.TrimSpace(c.endpoint) == "" {
		c.endpoint = DefaultEndpoint
	}
	if strings.TrimSpace(c.model) == "" {
		c.model = DefaultModel
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete sends promptText as the sole system message and returns the raw
// reply together with its text.
func (c *Client) Complete(ctx context.Context, promptText string) (*Reply, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "system", Content: promptText}},
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, &Error{Op: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Op: "create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Op:         "completion",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUpstreamStatus, strings.TrimSpace(string(body))),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, &Error{Op: "read reply", Err: err}
	}
	text, err := ExtractText(raw)
	if err != nil {
		return nil, &Error{Op: "decode reply", StatusCode: resp.StatusCode, Err: err}
	}
	return &Reply{Raw: json.RawMessage(raw), Text: text}, nil
}

// Direct builds the prompt locally and calls the provider without a proxy.
type Direct struct {
	Builder prompt.Builder
	Client  *Client
}

func (d Direct) Advise(ctx context.Context, message string, snap core.Snapshot) (string, error) {
	reply, err := d.Client.Complete(ctx, d.Builder.Build(message, snap.Month(), snap))
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}
