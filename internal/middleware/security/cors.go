package security

import (
	"net/http"
	"strings"
)

// CORS answers preflight requests and sets Access-Control headers for
// allowed origins. An origin list containing "*" allows any origin.
type CORS struct {
	allowAll bool
	origins  map[string]bool
	methods  string
	headers  string
}

func NewCORS(origins []string) *CORS {
	c := &CORS{
		origins: make(map[string]bool, len(origins)),
		methods: "GET, POST, OPTIONS",
		headers: "Content-Type, Authorization, X-Request-ID",
	}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			c.allowAll = true
		}
		if o != "" {
			c.origins[o] = true
		}
	}
	return c
}

func (c *CORS) allowed(origin string) bool {
	return c.allowAll || c.origins[origin]
}

func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && c.allowed(origin) {
			h := w.Header()
			if c.allowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Expose-Headers", "X-Request-ID")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if origin != "" && c.allowed(origin) {
				w.Header().Set("Access-Control-Allow-Methods", c.methods)
				w.Header().Set("Access-Control-Allow-Headers", c.headers)
				w.Header().Set("Access-Control-Max-Age", "600")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
