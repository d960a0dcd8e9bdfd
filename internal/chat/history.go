// Package chat keeps the advisory conversation: an ordered list of turns in
// which at most one turn is waiting for the advisor at any time.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Status is the lifecycle state of a turn.
type Status string

const (
	Pending  Status = "pending"
	Resolved Status = "resolved"
	Failed   Status = "failed"
)

// FailureMessage is shown in place of a reply when the advisor could not answer.
const FailureMessage = "Sorry, the advisor is unavailable right now. Please try again."

// InterruptedMessage replaces a turn left pending by an earlier session.
const InterruptedMessage = "This request was interrupted before the advisor replied."

var (
	ErrState         = errors.New("chat state error")
	ErrTurnPending   = fmt.Errorf("%w: a turn is already pending", ErrState)
	ErrNoPendingTurn = fmt.Errorf("%w: no pending turn", ErrState)
)

// Turn is one user/assistant exchange. UserText is empty for an
// introductory turn.
type Turn struct {
	UserText string `json:"user"`
	BotText  string `json:"bot"`
	Status   Status `json:"status"`
}

// History is not safe for concurrent use.
type History struct {
	turns []Turn
}

func NewHistory() *History {
	return &History{}
}

// Restore builds a history from persisted turns. Turns without a status
// were resolved; a turn still pending belongs to an interrupted session and
// is marked failed so it cannot block new messages.
func Restore(turns []Turn) *History {
	h := &History{turns: make([]Turn, 0, len(turns))}
	for _, t := range turns {
		switch t.Status {
		case Resolved, Failed:
		case Pending:
			t.Status = Failed
			t.BotText = InterruptedMessage
		default:
			t.Status = Resolved
		}
		h.turns = append(h.turns, t)
	}
	return h
}

// AppendPending starts a new turn. It fails without mutating when another
// turn is still pending.
func (h *History) AppendPending(userText string) error {
	if h.pendingIndex() >= 0 {
		return ErrTurnPending
	}
	h.turns = append(h.turns, Turn{UserText: userText, Status: Pending})
	return nil
}

// Resolve completes the pending turn with the advisor's reply.
func (h *History) Resolve(botText string) (Turn, error) {
	i := h.pendingIndex()
	if i < 0 {
		return Turn{}, ErrNoPendingTurn
	}
	h.turns[i].BotText = botText
	h.turns[i].Status = Resolved
	return h.turns[i], nil
}

// Fail completes the pending turn with a user-facing failure message.
// An empty reason uses FailureMessage.
func (h *History) Fail(reason string) (Turn, error) {
	i := h.pendingIndex()
	if i < 0 {
		return Turn{}, ErrNoPendingTurn
	}
	if strings.TrimSpace(reason) == "" {
		reason = FailureMessage
	}
	h.turns[i].BotText = reason
	h.turns[i].Status = Failed
	return h.turns[i], nil
}

// DropPending removes the pending turn, e.g. when it could not be recorded.
func (h *History) DropPending() error {
	i := h.pendingIndex()
	if i < 0 {
		return ErrNoPendingTurn
	}
	h.turns = append(h.turns[:i], h.turns[i+1:]...)
	return nil
}

func (h *History) Clear() {
	h.turns = nil
}

// HasPending reports whether a turn is waiting for the advisor.
func (h *History) HasPending() bool {
	return h.pendingIndex() >= 0
}

// Turns returns a copy of the turns in order.
func (h *History) Turns() []Turn {
	return append([]Turn(nil), h.turns...)
}

func (h *History) Len() int {
	return len(h.turns)
}

// MarshalJSON encodes the turn sequence as a JSON array; an empty history
// encodes as [].
func (h *History) MarshalJSON() ([]byte, error) {
	if h.turns == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.turns)
}

// pendingIndex returns the index of the pending turn or -1. Only the most
// recent turn can be pending.
func (h *History) pendingIndex() int {
	for i := len(h.turns) - 1; i >= 0; i-- {
		if h.turns[i].Status == Pending {
			return i
		}
	}
	return -1
}
