package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"expenseminimizer/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var seen string
	m := NewMiddleware(log.Discard(), nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = log.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	got := rr.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("response request id %q is not a uuid", got)
	}
	if seen != got {
		t.Errorf("context id %q != header id %q", seen, got)
	}
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
	if m.TotalRequests() != 1 {
		t.Errorf("TotalRequests() = %d", m.TotalRequests())
	}
}

func TestRequestIDFrom(t *testing.T) {
	incoming := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, incoming)
	if got := RequestIDFrom(r); got != incoming {
		t.Errorf("RequestIDFrom() = %q, want incoming %q", got, incoming)
	}

	r.Header.Set(HeaderRequestID, "<script>")
	if got := RequestIDFrom(r); got == "<script>" {
		t.Error("malformed request id must be replaced")
	}
}
