package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// Middleware stores logger in every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		})
	}
}

func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithRequestID records the request ID so loggers taken from ctx carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		ctx = context.WithValue(ctx, loggerKey, l.With(FieldRequestID, id))
	}
	return ctx
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the request logger, or one wrapping slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
		return logger
	}
	return (&Logger{Logger: slog.Default(), component: ComponentApp}).WithContext(ctx)
}

// HTTPLogger logs request start and completion.
type HTTPLogger struct {
	logger *Logger
}

func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{logger: logger.WithComponent(ComponentHTTP)}
}

func (hl *HTTPLogger) LogStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithClientIP(clientIP)
	hl.logger.WithContext(ctx).DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogEnd picks the level from the status: warn for 4xx, error for 5xx.
func (hl *HTTPLogger) LogEnd(ctx context.Context, r *http.Request, statusCode int, duration time.Duration, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
		WithHTTPResponse(statusCode, duration).
		WithClientIP(clientIP)
	hl.logger.WithContext(ctx).Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}
