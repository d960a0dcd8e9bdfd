package session

import "expenseminimizer/internal/core"

// ChatKey holds the JSON array of chat turns.
const ChatKey = "chatMessages"

const expensesPrefix = "expenses_"

// ExpensesKey is the storage key of one month's category map.
func ExpensesKey(m core.Month) string {
	return expensesPrefix + m.String()
}
