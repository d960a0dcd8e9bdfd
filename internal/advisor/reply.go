package advisor

import (
	"encoding/json"
	"fmt"
)

// Reply is a successful provider answer. Raw is passed through untouched by
// the proxy; Text is the assistant message extracted from it.
type Reply struct {
	Raw  json.RawMessage
	Text string
}

type completionResponse struct {
	Choices []struct {
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractText returns choices[0].message.content of a chat-completions reply.
func ExtractText(raw []byte) (string, error) {
	var resp completionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedReply)
	}
	msg := resp.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", fmt.Errorf("%w: missing message content", ErrMalformedReply)
	}
	return *msg.Content, nil
}
