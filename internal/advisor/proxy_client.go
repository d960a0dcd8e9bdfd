package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"expenseminimizer/internal/core"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message  string          `json:"message"`
	Expenses ExpensesPayload `json:"expenses"`
}

// ExpensesPayload carries one month of ledger data.
type ExpensesPayload struct {
	Month string       `json:"month"`
	Data  core.Buckets `json:"data"`
}

// ErrorBody is the JSON error shape returned by the proxy.
type ErrorBody struct {
	Error string `json:"error"`
}

// NewChatRequest packs a message and snapshot into the proxy wire format.
func NewChatRequest(message string, snap core.Snapshot) ChatRequest {
	data := snap.Buckets()
	if data == nil {
		data = core.Buckets{}
	}
	return ChatRequest{
		Message:  message,
		Expenses: ExpensesPayload{Month: snap.Month().String(), Data: data},
	}
}

// ProxyClient sends chat requests to the expense proxy, which builds the
// prompt and forwards it upstream.
type ProxyClient struct {
	url        string
	httpClient *http.Client
}

// NewProxyClient takes the proxy base URL, e.g. http://localhost:5000.
func NewProxyClient(baseURL string, httpClient *http.Client) (*ProxyClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("advisor: proxy url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout + 10*time.Second}
	}
	return &ProxyClient{url: baseURL + "/api/chat", httpClient: httpClient}, nil
}

func (p *ProxyClient) Advise(ctx context.Context, message string, snap core.Snapshot) (string, error) {
	body, err := json.Marshal(NewChatRequest(message, snap))
	if err != nil {
		return "", &Error{Op: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &Error{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", &Error{Op: "read reply", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		var eb ErrorBody
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		return "", &Error{Op: "proxy", StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %s", ErrUpstreamStatus, msg)}
	}
	text, err := ExtractText(raw)
	if err != nil {
		return "", &Error{Op: "decode reply", StatusCode: resp.StatusCode, Err: err}
	}
	return text, nil
}
