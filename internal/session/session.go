// Package session ties the ledger and chat history to a persistent store and
// an advisor. Every mutation is written back before the call returns.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"expenseminimizer/internal/chat"
	"expenseminimizer/internal/core"
	"expenseminimizer/internal/log"
	"expenseminimizer/internal/storage"
)

// ErrEmptyMessage rejects chat input that is empty or only whitespace.
var ErrEmptyMessage = fmt.Errorf("%w: empty message", core.ErrValidation)

// Advisor answers a chat message given the month's expenses.
type Advisor interface {
	Advise(ctx context.Context, message string, snap core.Snapshot) (string, error)
}

// Session is one user's view of the ledger and chat. It is not safe for
// concurrent use; the pending-turn rule serializes advisor calls.
type Session struct {
	store   storage.Store
	advisor Advisor
	logger  *log.Logger

	ledger  *core.Ledger
	loaded  map[core.Month]bool
	history *chat.History
}

// New loads the chat history from store. Ledger months are read lazily on
// first use. advisor may be nil when chat is not needed.
func New(ctx context.Context, store storage.Store, advisor Advisor, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Session{
		store:   store,
		advisor: advisor,
		logger:  logger.WithComponent(log.ComponentSession),
		ledger:  core.NewLedger(),
		loaded:  make(map[core.Month]bool),
	}
	h, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	s.history = h
	return s, nil
}

func (s *Session) loadHistory(ctx context.Context) (*chat.History, error) {
	raw, err := s.store.Get(ctx, ChatKey)
	if errors.Is(err, storage.ErrNotFound) {
		return chat.NewHistory(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	var turns []chat.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	h := chat.Restore(turns)
	s.logger.DebugContext(ctx, "Loaded chat history", log.FieldTurns, h.Len())
	return h, nil
}

func (s *Session) ensureMonth(ctx context.Context, m core.Month) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if s.loaded[m] {
		return nil
	}
	raw, err := s.store.Get(ctx, ExpensesKey(m))
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load %s: %w", m, err)
	default:
		var b core.Buckets
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return fmt.Errorf("decode %s: %w", m, err)
		}
		if err := s.ledger.Load(m, b); err != nil {
			return fmt.Errorf("load %s: %w", m, err)
		}
		s.logger.DebugContext(ctx, "Loaded month", log.FieldMonth, m.String())
	}
	s.loaded[m] = true
	return nil
}

func (s *Session) persistMonth(ctx context.Context, m core.Month) error {
	data, err := json.Marshal(s.ledger.Buckets(m))
	if err != nil {
		return fmt.Errorf("encode %s: %w", m, err)
	}
	if err := s.store.Set(ctx, ExpensesKey(m), string(data)); err != nil {
		return fmt.Errorf("persist %s: %w", m, err)
	}
	return nil
}

func (s *Session) persistHistory(ctx context.Context) error {
	data, err := json.Marshal(s.history)
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	if err := s.store.Set(ctx, ChatKey, string(data)); err != nil {
		return fmt.Errorf("persist chat history: %w", err)
	}
	return nil
}

// AddEntry appends e to the month's category bucket and persists the month.
// The entry is dropped again when it cannot be persisted.
func (s *Session) AddEntry(ctx context.Context, m core.Month, c core.Category, e core.Entry) error {
	if err := s.ensureMonth(ctx, m); err != nil {
		return err
	}
	prev := s.ledger.Buckets(m)
	if err := s.ledger.Add(m, c, e); err != nil {
		return err
	}
	if err := s.persistMonth(ctx, m); err != nil {
		s.rollbackMonth(ctx, m, prev)
		return err
	}
	s.logger.InfoContext(ctx, "Expense added",
		log.NewFields().WithEntry(m.String(), string(c), e.Name, e.Amount).WithOperation(log.OpAddEntry).ToSlice()...)
	return nil
}

// RemoveEntry deletes the entry at index and persists the month.
func (s *Session) RemoveEntry(ctx context.Context, m core.Month, c core.Category, index int) error {
	if err := s.ensureMonth(ctx, m); err != nil {
		return err
	}
	prev := s.ledger.Buckets(m)
	if err := s.ledger.Remove(m, c, index); err != nil {
		return err
	}
	if err := s.persistMonth(ctx, m); err != nil {
		s.rollbackMonth(ctx, m, prev)
		return err
	}
	s.logger.InfoContext(ctx, "Expense removed",
		log.FieldMonth, m.String(), log.FieldCategory, string(c), log.FieldIndex, index)
	return nil
}

// rollbackMonth puts back the buckets m had before an unpersisted mutation.
func (s *Session) rollbackMonth(ctx context.Context, m core.Month, prev core.Buckets) {
	if err := s.ledger.Load(m, prev); err != nil {
		s.logger.ErrorContext(ctx, "Rollback failed", log.FieldMonth, m.String(), log.FieldError, err)
	}
}

func (s *Session) Total(ctx context.Context, m core.Month, c core.Category) (float64, error) {
	if err := s.ensureMonth(ctx, m); err != nil {
		return 0, err
	}
	return s.ledger.Total(m, c), nil
}

func (s *Session) Snapshot(ctx context.Context, m core.Month) (core.Snapshot, error) {
	if err := s.ensureMonth(ctx, m); err != nil {
		return core.Snapshot{}, err
	}
	return s.ledger.Snapshot(m), nil
}

// Overview returns every category's total for m, empty ones included.
func (s *Session) Overview(ctx context.Context, m core.Month) (core.MonthOverview, error) {
	if err := s.ensureMonth(ctx, m); err != nil {
		return core.MonthOverview{}, err
	}
	return s.ledger.Overview(m), nil
}

// History returns a copy of the chat turns.
func (s *Session) History() []chat.Turn {
	return s.history.Turns()
}

// Send runs one chat turn: the message is recorded as pending and
// persisted, the advisor is asked with the month's snapshot, and the turn is
// resolved or failed and persisted again. An advisor failure is not an
// error; it shows up as a failed turn.
func (s *Session) Send(ctx context.Context, m core.Month, text string) (chat.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Turn{}, ErrEmptyMessage
	}
	if s.advisor == nil {
		return chat.Turn{}, errors.New("session: no advisor configured")
	}
	snap, err := s.Snapshot(ctx, m)
	if err != nil {
		return chat.Turn{}, err
	}
	if err := s.history.AppendPending(text); err != nil {
		return chat.Turn{}, err
	}
	if err := s.persistHistory(ctx); err != nil {
		_ = s.history.DropPending()
		return chat.Turn{}, err
	}

	logger := s.logger.WithContext(ctx).With(log.FieldMonth, m.String(), log.FieldOperation, log.OpChat)
	reply, adviseErr := s.advisor.Advise(ctx, text, snap)

	var turn chat.Turn
	if adviseErr != nil {
		logger.WarnContext(ctx, "Advisor request failed", log.FieldError, adviseErr)
		turn, err = s.history.Fail("")
	} else {
		turn, err = s.history.Resolve(reply)
	}
	if err != nil {
		return chat.Turn{}, err
	}
	logger.InfoContext(ctx, "Chat turn completed", log.FieldTurnStatus, string(turn.Status))

	if err := s.persistHistory(ctx); err != nil {
		return turn, err
	}
	return turn, nil
}

// ClearChat empties the history and removes it from the store.
func (s *Session) ClearChat(ctx context.Context) error {
	s.history.Clear()
	if err := s.store.Remove(ctx, ChatKey); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	s.logger.InfoContext(ctx, "Chat history cleared")
	return nil
}
