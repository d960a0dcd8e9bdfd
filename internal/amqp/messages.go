package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Advisory event outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// AdvisoryEvent records one POST /api/chat handled by the proxy. It carries
// sizes and status only, never the message text or expense names.
type AdvisoryEvent struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Month      string    `json:"month,omitempty"`
	Entries    int       `json:"entries"`
	PromptLen  int       `json:"prompt_chars"`
	Outcome    string    `json:"outcome"`
	StatusCode int       `json:"status_code"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewAdvisoryEvent(requestID, outcome string, statusCode int) *AdvisoryEvent {
	return &AdvisoryEvent{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		Outcome:    outcome,
		StatusCode: statusCode,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *AdvisoryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AdvisoryEventFromJSON(data []byte) (*AdvisoryEvent, error) {
	var msg AdvisoryEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
