package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func TestClientIPExtract(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct public peer ignores headers", "203.0.113.7:5555", "1.1.1.1", "", "203.0.113.7"},
		{"trusted proxy forwards xff", "10.0.0.2:5555", "198.51.100.4, 10.0.0.2", "", "198.51.100.4"},
		{"trusted proxy falls back to x-real-ip", "127.0.0.1:5555", "garbage", "198.51.100.9", "198.51.100.9"},
		{"trusted proxy without headers", "192.168.1.10:80", "", "", "192.168.1.10"},
		{"unparsable remote addr", "pipe", "", "", "pipe"},
	}
	c := NewClientIP()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := c.Extract(r); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(okHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff")
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	rr = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	r.TLS = &tls.ConnectionState{}
	h.ServeHTTP(rr, r)
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Error("missing HSTS over TLS")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := NewCORS([]string{"http://localhost:3000"}).Middleware(okHandler)

	r := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("missing Allow-Methods")
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	h := NewCORS([]string{"http://localhost:3000"}).Middleware(okHandler)

	r := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	r.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestCORSWildcard(t *testing.T) {
	h := NewCORS([]string{"*"}).Middleware(okHandler)
	r := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	r.Header.Set("Origin", "https://anything.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Allow-Origin = %q, want *", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}
