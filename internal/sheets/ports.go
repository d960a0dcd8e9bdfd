// Package sheets exports a month's ledger to a spreadsheet.
package sheets

import (
	"context"

	"expenseminimizer/internal/core"
)

// Exporter appends the rows of one month to an external sheet and returns a
// reference to the written range.
type Exporter interface {
	ExportMonth(ctx context.Context, snap core.Snapshot) (rowRef string, err error)
}

// Header is written once, when the target sheet is empty.
var Header = []any{"Month", "Category", "Name", "Amount", "Formatted"}

// BuildRows flattens a snapshot into sheet rows, categories in declared
// order and entries in insertion order.
func BuildRows(snap core.Snapshot) [][]any {
	var rows [][]any
	month := snap.Month().String()
	for _, c := range snap.Categories() {
		for _, e := range snap.Entries(c) {
			rows = append(rows, []any{month, string(c), e.Name, e.Amount, core.FormatAmount(c, e.Amount)})
		}
	}
	return rows
}
