// Package memory is an in-process sheets.Exporter for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expenseminimizer/internal/core"
	"expenseminimizer/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows [][]any
}

var _ sheets.Exporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// ExportMonth appends the month's rows and returns a synthetic range reference.
func (s *Store) ExportMonth(_ context.Context, snap core.Snapshot) (string, error) {
	rows := sheets.BuildRows(snap)
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: nothing to export for %s", core.ErrValidation, snap.Month().Label())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		s.rows = append(s.rows, sheets.Header)
	}
	first := len(s.rows) + 1
	s.rows = append(s.rows, rows...)
	return fmt.Sprintf("mem!A%d:E%d", first, len(s.rows)), nil
}

// Rows returns a copy of everything written so far, header included.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.rows...)
}
