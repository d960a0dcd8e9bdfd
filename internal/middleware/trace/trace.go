// Package trace assigns a request ID to every HTTP request and logs its
// start and completion.
package trace

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"expenseminimizer/internal/log"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.HTTPLogger
	total     int64
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{extractIP: extractIP, logger: log.NewHTTPLogger(logger)}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := RequestIDFrom(r)
		w.Header().Set(HeaderRequestID, requestID)
		ctx := log.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		m.logger.LogStart(ctx, r, clientIP)
		atomic.AddInt64(&m.total, 1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.logger.LogEnd(ctx, r, rw.statusCode, time.Since(start), clientIP)
	})
}

// TotalRequests returns how many requests went through the middleware.
func (m *Middleware) TotalRequests() int64 {
	return atomic.LoadInt64(&m.total)
}

// RequestIDFrom reuses a well-formed incoming X-Request-ID and otherwise
// generates a new one.
func RequestIDFrom(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
