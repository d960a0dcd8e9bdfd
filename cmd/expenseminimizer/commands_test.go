package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenseminimizer/internal/config"
	"expenseminimizer/internal/core"
	"expenseminimizer/internal/log"
	"expenseminimizer/internal/session"
	"expenseminimizer/internal/sheets"
	"expenseminimizer/internal/sheets/memory"
	"expenseminimizer/internal/storage"
)

type stubAdvisor struct {
	reply string
	err   error
	got   []core.Snapshot
}

func (s *stubAdvisor) Advise(_ context.Context, _ string, snap core.Snapshot) (string, error) {
	s.got = append(s.got, snap)
	return s.reply, s.err
}

type testApp struct {
	*app
	store    *storage.MemoryStore
	advisor  *stubAdvisor
	exporter *memory.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		store:    storage.NewMemoryStore(),
		advisor:  &stubAdvisor{reply: "Cut the coffee."},
		exporter: memory.New(),
	}
	ta.app = &app{
		cfg:    &config.Config{},
		logger: log.Discard(),
		now:    func() time.Time { return time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC) },
		openStore: func(context.Context) (storage.Store, error) {
			return ta.store, nil
		},
		newAdvisor: func() (session.Advisor, error) { return ta.advisor, nil },
		newExporter: func(context.Context) (sheets.Exporter, error) {
			return ta.exporter, nil
		},
	}
	return ta
}

func (ta *testApp) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	ta.out = &out
	ta.in = strings.NewReader(stdin)
	cmd := newRootCmd(ta.app)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddListTotals(t *testing.T) {
	ta := newTestApp(t)

	out, err := ta.run(t, "", "add", "monetary", "Rent", "1200")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Rent ($1200) to Monetary for March 2025. Total: $1200")

	_, err = ta.run(t, "", "add", "money", "Coffee", "15")
	require.NoError(t, err)
	_, err = ta.run(t, "", "add", "time", "Commute", "3,5")
	require.NoError(t, err)

	out, err = ta.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Monetary (total $1215)")
	assert.Contains(t, out, "  1. Rent: $1200")
	assert.Contains(t, out, "  2. Coffee: $15")
	assert.Contains(t, out, "  1. Commute: 3.5 hours")

	out, err = ta.run(t, "", "totals")
	require.NoError(t, err)
	assert.Contains(t, out, "Monetary: $1215 (2 entries)")
	assert.Contains(t, out, "Emotional/Mental: 0 units (0 entries)")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ta := newTestApp(t)

	_, err := ta.run(t, "", "add", "--", "monetary", "Rent", "-5")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = ta.run(t, "", "add", "vibes", "Rent", "5")
	assert.ErrorIs(t, err, core.ErrUnknownCategory)

	_, err = ta.run(t, "", "add", "monetary", "   ", "5")
	assert.ErrorIs(t, err, core.ErrEmptyName)

	assert.Equal(t, 0, ta.store.Len())
}

func TestMonthFlag(t *testing.T) {
	ta := newTestApp(t)

	_, err := ta.run(t, "", "add", "monetary", "Rent", "900", "--month", "2025-01")
	require.NoError(t, err)
	_, err = ta.run(t, "", "add", "monetary", "Gym", "40", "-m", "January 2025")
	require.NoError(t, err)

	out, err := ta.run(t, "", "totals", "-m", "2025-01")
	require.NoError(t, err)
	assert.Contains(t, out, "January 2025")
	assert.Contains(t, out, "Monetary: $940 (2 entries)")

	out, err = ta.run(t, "", "totals")
	require.NoError(t, err)
	assert.Contains(t, out, "Monetary: $0 (0 entries)")

	_, err = ta.run(t, "", "list", "-m", "not a month")
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestRemoveUsesListNumbering(t *testing.T) {
	ta := newTestApp(t)
	_, err := ta.run(t, "", "add", "monetary", "Rent", "1200")
	require.NoError(t, err)
	_, err = ta.run(t, "", "add", "monetary", "Coffee", "15")
	require.NoError(t, err)

	_, err = ta.run(t, "", "remove", "monetary", "1")
	require.NoError(t, err)

	out, err := ta.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "  1. Coffee: $15")
	assert.NotContains(t, out, "Rent")

	_, err = ta.run(t, "", "remove", "monetary", "5")
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, err = ta.run(t, "", "remove", "monetary", "x")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestMonthsStartsAtCurrentMonth(t *testing.T) {
	ta := newTestApp(t)
	out, err := ta.run(t, "", "months", "-n", "3")
	require.NoError(t, err)
	assert.Equal(t, "2025-03  March 2025\n2025-04  April 2025\n2025-05  May 2025\n", out)
}

func TestChatOneShotAndHistory(t *testing.T) {
	ta := newTestApp(t)
	_, err := ta.run(t, "", "add", "monetary", "Rent", "1200")
	require.NoError(t, err)

	out, err := ta.run(t, "", "chat", "What", "should", "I", "cut?")
	require.NoError(t, err)
	assert.Equal(t, "Bot: Cut the coffee.\n", out)
	require.Len(t, ta.advisor.got, 1)
	assert.Equal(t, 1200.0, ta.advisor.got[0].Total(core.Monetary))

	ta.advisor.err = errors.New("upstream down")
	out, err = ta.run(t, "", "chat", "again")
	require.NoError(t, err)
	assert.Contains(t, out, "advisor is unavailable")

	out, err = ta.run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "You: What should I cut?\nBot: Cut the coffee.\n")
	assert.Contains(t, out, "You: again\nBot (failed):")

	_, err = ta.run(t, "", "clear-chat")
	require.NoError(t, err)
	out, err = ta.run(t, "", "history")
	require.NoError(t, err)
	assert.Equal(t, "No messages yet.\n", out)
}

func TestInteractiveChat(t *testing.T) {
	ta := newTestApp(t)

	out, err := ta.run(t, "first\n\n   \nsecond\nexit\nignored\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Chatting about March 2025.")
	assert.Equal(t, 2, strings.Count(out, "Bot: Cut the coffee."))
	assert.Len(t, ta.advisor.got, 2)
}

func TestInteractiveChatStopsAtEOF(t *testing.T) {
	ta := newTestApp(t)
	_, err := ta.run(t, "only one", "chat")
	require.NoError(t, err)
	assert.Len(t, ta.advisor.got, 1)
}

func TestExport(t *testing.T) {
	ta := newTestApp(t)
	_, err := ta.run(t, "", "add", "emotional", "Doomscrolling", "4")
	require.NoError(t, err)

	out, err := ta.run(t, "", "export")
	require.NoError(t, err)
	assert.Equal(t, "Exported March 2025 to mem!A2:E2\n", out)

	rows := ta.exporter.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"2025-03", "Emotional/Mental", "Doomscrolling", 4.0, "4 units"}, rows[1])
}

func TestExportNotConfigured(t *testing.T) {
	ta := newTestApp(t)
	ta.newExporter = ta.configuredExporter

	_, err := ta.run(t, "", "export")
	assert.ErrorIs(t, err, errExportNotConfigured)
}
