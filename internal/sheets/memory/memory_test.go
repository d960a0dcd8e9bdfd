package memory

import (
	"context"
	"testing"
	"time"

	"expenseminimizer/internal/core"
)

func TestStoreExportMonth(t *testing.T) {
	s := New()
	l := core.NewLedger()
	m := core.NewMonth(2025, time.March)
	if err := l.Add(m, core.Monetary, core.Entry{Name: "Rent", Amount: 1200}); err != nil {
		t.Fatal(err)
	}

	ref, err := s.ExportMonth(context.Background(), l.Snapshot(m))
	if err != nil {
		t.Fatalf("ExportMonth: %v", err)
	}
	if ref != "mem!A2:E2" {
		t.Errorf("ref = %q", ref)
	}

	ref, err = s.ExportMonth(context.Background(), l.Snapshot(m))
	if err != nil {
		t.Fatalf("ExportMonth: %v", err)
	}
	if ref != "mem!A3:E3" {
		t.Errorf("second ref = %q", ref)
	}
	if rows := s.Rows(); len(rows) != 3 {
		t.Errorf("expected header plus 2 rows, got %d", len(rows))
	}
}

func TestStoreExportEmptyMonth(t *testing.T) {
	if _, err := New().ExportMonth(context.Background(), core.NewLedger().Snapshot(core.NewMonth(2025, time.March))); err == nil {
		t.Error("expected error for empty month")
	}
}
