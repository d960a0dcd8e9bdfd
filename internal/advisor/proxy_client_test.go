package advisor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenseminimizer/internal/core"
)

func TestProxyClientAdvise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What should I cut?", req.Message)
		assert.Equal(t, "2025-03", req.Expenses.Month)
		assert.Equal(t, []core.Entry{{Name: "Rent", Amount: 1200}, {Name: "Coffee", Amount: 15}}, req.Expenses.Data[core.Monetary])
		_, _ = io.WriteString(w, okReply)
	}))
	defer server.Close()

	l := core.NewLedger()
	m := core.NewMonth(2025, time.March)
	require.NoError(t, l.Add(m, core.Monetary, core.Entry{Name: "Rent", Amount: 1200}))
	require.NoError(t, l.Add(m, core.Monetary, core.Entry{Name: "Coffee", Amount: 15}))

	p, err := NewProxyClient(server.URL+"/", server.Client())
	require.NoError(t, err)
	text, err := p.Advise(context.Background(), "What should I cut?", l.Snapshot(m))
	require.NoError(t, err)
	assert.Equal(t, "Cut the coffee.", text)
}

func TestProxyClientErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"AI service error"}`)
	}))
	defer server.Close()

	p, err := NewProxyClient(server.URL, server.Client())
	require.NoError(t, err)
	_, err = p.Advise(context.Background(), "hi", core.NewLedger().Snapshot(core.NewMonth(2025, time.March)))
	require.Error(t, err)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusInternalServerError, ae.StatusCode)
	assert.Contains(t, err.Error(), "AI service error")
}

func TestNewChatRequestEmptySnapshot(t *testing.T) {
	req := NewChatRequest("hi", core.NewLedger().Snapshot(core.NewMonth(2025, time.March)))
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hi","expenses":{"month":"2025-03","data":{}}}`, string(data))
}

func TestNewProxyClientRequiresURL(t *testing.T) {
	_, err := NewProxyClient("  ", nil)
	assert.Error(t, err)
}
