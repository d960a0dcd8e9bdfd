package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenseminimizer/internal/core"
)

func TestParseChatRequest(t *testing.T) {
	in, err := ParseChatRequest([]byte(`{
		"message": "What should I cut?",
		"expenses": {"month": "2025-03", "data": {
			"Monetary": [{"name": "Rent", "amount": 1200}, {"name": "Coffee", "amount": 15}],
			"Emotional/Mental": [{"name": "Overtime", "amount": 2}],
			"Time": []
		}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "What should I cut?", in.Message)
	assert.Equal(t, core.NewMonth(2025, time.March), in.Snapshot.Month())
	assert.Equal(t, []core.Category{core.Monetary, core.Emotional}, in.Snapshot.Categories())
	assert.Equal(t, 1215.0, in.Snapshot.Total(core.Monetary))
}

func TestParseChatRequestMessageCheckedFirst(t *testing.T) {
	_, err := ParseChatRequest([]byte(`{"message":"","expenses":"nope"}`))
	assert.ErrorIs(t, err, errInvalidMessage)

	_, err = ParseChatRequest([]byte(`{"message":"hi","expenses":null}`))
	assert.ErrorIs(t, err, errInvalidExpenses)
}

func TestParseChatRequestLenientExpenses(t *testing.T) {
	june := core.NewMonth(2024, time.June)
	now := func() core.Month { return june }

	tests := []struct {
		name      string
		expenses  string
		wantMonth core.Month
	}{
		{"empty object", `{}`, june},
		{"data only", `{"data":{}}`, june},
		{"null data", `{"month":"2025-03","data":null}`, core.NewMonth(2025, time.March)},
		{"unreadable month", `{"month":"March","data":{}}`, june},
		{"numeric month", `{"month":3}`, june},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := parseChatRequest([]byte(`{"message":"hi","expenses":`+tt.expenses+`}`), now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMonth, in.Snapshot.Month())
			assert.True(t, in.Snapshot.IsEmpty())
		})
	}
}

func TestParseChatRequestCanonicalCategoriesOnly(t *testing.T) {
	for _, data := range []string{
		`{"Monetary":[{"name":"A","amount":1}],"money":[{"name":"B","amount":2}]}`,
		`{"monetary":[]}`,
		`{"hours":[]}`,
		`{"Emotional":[]}`,
	} {
		_, err := ParseChatRequest([]byte(`{"message":"hi","expenses":{"month":"2025-03","data":` + data + `}}`))
		assert.ErrorIs(t, err, errInvalidExpenses, data)
	}

	body := []byte(`{"message":"hi","expenses":{"month":"2025-03","data":{"Monetary":[{"name":"A","amount":1},{"name":"B","amount":2}]}}}`)
	first, err := ParseChatRequest(body)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := ParseChatRequest(body)
		require.NoError(t, err)
		require.Equal(t, first.Snapshot.Entries(core.Monetary), again.Snapshot.Entries(core.Monetary))
	}
}

func TestParseMonth(t *testing.T) {
	for _, s := range []string{"2025-03", " March 2025 "} {
		m, err := parseMonth(s)
		require.NoError(t, err, s)
		assert.Equal(t, core.NewMonth(2025, time.March), m)
	}
	_, err := parseMonth("")
	assert.Error(t, err)
}
