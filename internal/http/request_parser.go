// Package http serves the advisory proxy: it validates chat requests, builds
// the prompt and relays the provider's reply.
//
// This file decodes and validates the POST /api/chat body.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"expenseminimizer/internal/core"
)

// Client-facing validation messages.
const (
	msgInvalidMessage  = "Invalid or missing message"
	msgInvalidExpenses = "Invalid or missing expenses"
	msgAIServiceError  = "AI service error"
)

var (
	errInvalidMessage  = errors.New(msgInvalidMessage)
	errInvalidExpenses = errors.New(msgInvalidExpenses)
)

// ChatInput is a validated chat request.
type ChatInput struct {
	Message  string
	Snapshot core.Snapshot
}

type rawChatRequest struct {
	Message  json.RawMessage `json:"message"`
	Expenses json.RawMessage `json:"expenses"`
}

type rawExpenses struct {
	Month json.RawMessage         `json:"month"`
	Data  map[string][]core.Entry `json:"data"`
}

// ParseChatRequest validates the message first, then the expenses. A body
// that is not a JSON object fails on the message. Blank or whitespace-only
// messages are rejected.
//
// expenses must be an object. A missing or unreadable month falls back to the
// current month and missing data means no entries. Category keys must be the
// canonical names.
func ParseChatRequest(body []byte) (ChatInput, error) {
	return parseChatRequest(body, core.CurrentMonth)
}

func parseChatRequest(body []byte, now func() core.Month) (ChatInput, error) {
	var raw rawChatRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return ChatInput{}, errInvalidMessage
	}

	var message string
	if !isKind(raw.Message, '"') || json.Unmarshal(raw.Message, &message) != nil || strings.TrimSpace(message) == "" {
		return ChatInput{}, errInvalidMessage
	}

	if !isKind(raw.Expenses, '{') {
		return ChatInput{}, errInvalidExpenses
	}
	var exp rawExpenses
	if err := json.Unmarshal(raw.Expenses, &exp); err != nil {
		return ChatInput{}, errInvalidExpenses
	}
	month, ok := wireMonth(exp.Month)
	if !ok {
		month = now()
	}

	buckets := make(core.Buckets, len(exp.Data))
	for name, entries := range exp.Data {
		c := core.Category(name)
		if !c.Valid() {
			return ChatInput{}, errInvalidExpenses
		}
		buckets[c] = entries
	}
	snap, err := core.NewSnapshot(month, buckets)
	if err != nil {
		return ChatInput{}, errInvalidExpenses
	}
	return ChatInput{Message: message, Snapshot: snap}, nil
}

// wireMonth reads the month field when it is a string parseMonth accepts.
func wireMonth(raw json.RawMessage) (core.Month, bool) {
	var s string
	if !isKind(raw, '"') || json.Unmarshal(raw, &s) != nil {
		return core.Month{}, false
	}
	m, err := parseMonth(s)
	return m, err == nil
}

// parseMonth accepts the canonical 2025-03 form and the "March 2025" label.
func parseMonth(s string) (core.Month, error) {
	s = strings.TrimSpace(s)
	if m, err := core.ParseMonth(s); err == nil {
		return m, nil
	}
	return core.ParseMonthLabel(s)
}

// isKind reports whether raw is present and its first token starts with b.
func isKind(raw json.RawMessage, b byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == b
}
