// Package worker holds background consumers of advisory events.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"expenseminimizer/internal/amqp"
	"expenseminimizer/internal/log"
	"expenseminimizer/internal/storage"
)

// AuditKeyPrefix prefixes the per-month tallies kept in the store.
const AuditKeyPrefix = "advisory_audit_"

// Tally counts advisory requests by outcome.
type Tally struct {
	Resolved        int    `json:"resolved"`
	Rejected        int    `json:"rejected"`
	Failed          int    `json:"failed"`
	TotalDurationMs int64  `json:"total_duration_ms"`
	LastEventID     string `json:"last_event_id,omitempty"`
}

func (t Tally) Total() int {
	return t.Resolved + t.Rejected + t.Failed
}

func (t *Tally) add(ev *amqp.AdvisoryEvent) {
	switch ev.Outcome {
	case amqp.OutcomeResolved:
		t.Resolved++
	case amqp.OutcomeRejected:
		t.Rejected++
	default:
		t.Failed++
	}
	t.TotalDurationMs += ev.DurationMs
	t.LastEventID = ev.ID
}

// AuditWorker logs every advisory event and keeps per-month tallies in a
// store. Events without a month (rejected before parsing) are only counted
// in memory.
type AuditWorker struct {
	store  storage.Store
	logger *log.Logger

	mu     sync.Mutex
	totals Tally
}

func NewAuditWorker(store storage.Store, logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuditWorker{store: store, logger: logger.WithComponent(log.ComponentAuditor)}
}

// HandleAdvisoryEvent is an amqp.Handler. A store error requeues the event.
func (w *AuditWorker) HandleAdvisoryEvent(ctx context.Context, ev *amqp.AdvisoryEvent) error {
	attrs := []any{
		"event_id", ev.ID,
		log.FieldRequestID, ev.RequestID,
		"outcome", ev.Outcome,
		log.FieldStatusCode, ev.StatusCode,
		log.FieldDuration, ev.DurationMs,
		log.FieldPromptLen, ev.PromptLen,
		"entries", ev.Entries,
	}
	if ev.Month != "" {
		attrs = append(attrs, log.FieldMonth, ev.Month)
	}
	switch ev.Outcome {
	case amqp.OutcomeResolved:
		w.logger.InfoContext(ctx, "Advisory request resolved", attrs...)
	case amqp.OutcomeRejected:
		w.logger.WarnContext(ctx, "Advisory request rejected", append(attrs, log.FieldError, ev.Error)...)
	default:
		w.logger.ErrorContext(ctx, "Advisory request failed", append(attrs, log.FieldError, ev.Error)...)
	}

	if ev.Month != "" && w.store != nil {
		if err := w.recordMonth(ctx, ev); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.totals.add(ev)
	w.mu.Unlock()
	return nil
}

func (w *AuditWorker) recordMonth(ctx context.Context, ev *amqp.AdvisoryEvent) error {
	key := AuditKeyPrefix + ev.Month
	t, err := w.MonthTally(ctx, ev.Month)
	if err != nil {
		return err
	}
	if t.LastEventID == ev.ID {
		// Redelivery of an event already counted.
		return nil
	}
	t.add(ev)
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tally: %w", err)
	}
	if err := w.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("persist tally %s: %w", ev.Month, err)
	}
	return nil
}

// MonthTally returns the stored tally of a month, zero when none exists.
func (w *AuditWorker) MonthTally(ctx context.Context, month string) (Tally, error) {
	var t Tally
	raw, err := w.store.Get(ctx, AuditKeyPrefix+month)
	if errors.Is(err, storage.ErrNotFound) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("load tally %s: %w", month, err)
	}
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return t, fmt.Errorf("decode tally %s: %w", month, err)
	}
	return t, nil
}

// Totals returns the in-memory tally since start.
func (w *AuditWorker) Totals() Tally {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totals
}

// RunSummary logs the running totals every interval until ctx is cancelled.
func (w *AuditWorker) RunSummary(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t := w.Totals()
			if t.Total() == 0 {
				continue
			}
			w.logger.InfoContext(ctx, "Advisory summary",
				"resolved", t.Resolved,
				"rejected", t.Rejected,
				"failed", t.Failed,
				"avg_duration_ms", t.TotalDurationMs/int64(t.Total()))
		}
	}
}
