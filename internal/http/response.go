package http

import (
	"encoding/json"
	"net/http"

	"expenseminimizer/internal/advisor"
)

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	body, _ := json.Marshal(advisor.ErrorBody{Error: msg})
	writeRaw(w, status, body)
}

// writeRaw relays an upstream JSON document unchanged.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
