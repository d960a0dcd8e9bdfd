package chat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPendingThenResolve(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.AppendPending("What should I cut?"))
	assert.True(t, h.HasPending())

	turn, err := h.Resolve("Cut the coffee.")
	require.NoError(t, err)
	assert.Equal(t, Turn{UserText: "What should I cut?", BotText: "Cut the coffee.", Status: Resolved}, turn)
	assert.False(t, h.HasPending())
	assert.Equal(t, []Turn{turn}, h.Turns())
}

func TestOnlyOnePendingTurn(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.AppendPending("first"))

	err := h.AppendPending("second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTurnPending))
	assert.True(t, errors.Is(err, ErrState))
	assert.Equal(t, 1, h.Len(), "failed append must not mutate history")

	_, err = h.Fail("")
	require.NoError(t, err)
	require.NoError(t, h.AppendPending("second"), "failing the turn releases the invariant")
	assert.Equal(t, 2, h.Len())
}

func TestResolveAndFailWithoutPending(t *testing.T) {
	h := NewHistory()
	_, err := h.Resolve("x")
	assert.ErrorIs(t, err, ErrNoPendingTurn)
	_, err = h.Fail("x")
	assert.ErrorIs(t, err, ErrNoPendingTurn)

	require.NoError(t, h.AppendPending("q"))
	_, err = h.Resolve("a")
	require.NoError(t, err)

	// A resolved turn never transitions again.
	_, err = h.Fail("late failure")
	assert.ErrorIs(t, err, ErrNoPendingTurn)
	assert.Equal(t, Resolved, h.Turns()[0].Status)
}

func TestFailUsesDefaultMessage(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.AppendPending("q"))
	turn, err := h.Fail("  ")
	require.NoError(t, err)
	assert.Equal(t, Failed, turn.Status)
	assert.Equal(t, FailureMessage, turn.BotText)

	require.NoError(t, h.AppendPending("q2"))
	turn, err = h.Fail("upstream down")
	require.NoError(t, err)
	assert.Equal(t, "upstream down", turn.BotText)
}

func TestClear(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.AppendPending("q"))
	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.HasPending())

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestRestore(t *testing.T) {
	h := Restore([]Turn{
		{UserText: "", BotText: "Hi, I'm your advisor."},
		{UserText: "q1", BotText: "a1", Status: Resolved},
		{UserText: "q2", BotText: "x", Status: Failed},
		{UserText: "q3", Status: Pending},
	})

	turns := h.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, Resolved, turns[0].Status, "legacy turns without status are resolved")
	assert.Equal(t, Failed, turns[2].Status)
	assert.Equal(t, Failed, turns[3].Status)
	assert.Equal(t, InterruptedMessage, turns[3].BotText)
	assert.False(t, h.HasPending())
	require.NoError(t, h.AppendPending("q4"))
}

func TestJSONRoundTrip(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.AppendPending("q"))
	_, err := h.Resolve("a")
	require.NoError(t, err)

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"user":"q","bot":"a","status":"resolved"}]`, string(data))

	var turns []Turn
	require.NoError(t, json.Unmarshal(data, &turns))
	assert.Equal(t, h.Turns(), Restore(turns).Turns())
}

func TestDropPending(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.AppendPending("first"))
	_, err := h.Resolve("ok")
	require.NoError(t, err)
	require.NoError(t, h.AppendPending("second"))

	require.NoError(t, h.DropPending())
	assert.False(t, h.HasPending())
	assert.Equal(t, []Turn{{UserText: "first", BotText: "ok", Status: Resolved}}, h.Turns())
	assert.ErrorIs(t, h.DropPending(), ErrNoPendingTurn)

	require.NoError(t, h.AppendPending("third"), "a dropped turn must not block the next one")
}
