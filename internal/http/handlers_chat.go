package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"expenseminimizer/internal/advisor"
	"expenseminimizer/internal/amqp"
	"expenseminimizer/internal/log"
)

// handleChat validates the request, builds the prompt and relays the raw
// provider reply. Validation failures never reach the provider.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	logger := log.FromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, msgInvalidMessage)
		return
	}

	input, err := ParseChatRequest(body)
	if err != nil {
		logger.WarnContext(ctx, "Rejected chat request", log.FieldError, err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		ev := amqp.NewAdvisoryEvent(log.RequestID(ctx), amqp.OutcomeRejected, http.StatusBadRequest)
		ev.Error = err.Error()
		s.publish(ctx, ev, start)
		return
	}

	promptText := s.builder.Build(input.Message, input.Snapshot.Month(), input.Snapshot)
	entries := 0
	for _, c := range input.Snapshot.Categories() {
		entries += len(input.Snapshot.Entries(c))
	}

	ev := amqp.NewAdvisoryEvent(log.RequestID(ctx), amqp.OutcomeResolved, http.StatusOK)
	ev.Month = input.Snapshot.Month().String()
	ev.Entries = entries
	ev.PromptLen = len(promptText)

	reply, err := s.completer.Complete(ctx, promptText)
	if err != nil {
		var ae *advisor.Error
		status := 0
		if errors.As(err, &ae) {
			status = ae.StatusCode
		}
		logger.ErrorContext(ctx, "Error calling OpenAI API",
			log.FieldError, err,
			"upstream_status", status,
			log.FieldMonth, ev.Month)
		writeJSONError(w, http.StatusInternalServerError, msgAIServiceError)

		ev.Outcome = amqp.OutcomeFailed
		ev.StatusCode = http.StatusInternalServerError
		ev.Error = err.Error()
		s.publish(ctx, ev, start)
		return
	}

	writeRaw(w, http.StatusOK, reply.Raw)
	logger.InfoContext(ctx, "Chat request answered",
		log.FieldMonth, ev.Month,
		log.FieldPromptLen, ev.PromptLen)
	s.publish(ctx, ev, start)
}

// publish hands ev to the publisher in the background; failures are only
// logged since events are best effort.
func (s *Server) publish(ctx context.Context, ev *amqp.AdvisoryEvent, start time.Time) {
	if s.publisher == nil {
		return
	}
	ev.DurationMs = time.Since(start).Milliseconds()
	logger := log.FromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	s.events.Add(1)
	go func() {
		defer s.events.Done()
		if err := s.publisher.PublishAdvisoryEvent(ctx, ev); err != nil {
			logger.WarnContext(ctx, "Failed to publish advisory event",
				log.FieldOperation, log.OpPublish,
				log.FieldError, err)
		}
	}()
}
