package core

import (
	"fmt"
	"sort"
)

// Ledger owns the categorized entries of every tracked month.
// It does no I/O and no locking; a session is its only mutator.
type Ledger struct {
	months map[Month]Buckets
}

func NewLedger() *Ledger {
	return &Ledger{months: make(map[Month]Buckets)}
}

// Add validates e and appends it to the tail of the (m, c) bucket.
func (l *Ledger) Add(m Month, c Category, e Entry) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	if err := e.Validate(); err != nil {
		return err
	}
	b, ok := l.months[m]
	if !ok {
		b = make(Buckets)
		l.months[m] = b
	}
	b[c] = append(b[c], e)
	return nil
}

// Remove deletes the entry at index from the (m, c) bucket, keeping the
// relative order of the others. An out-of-range index leaves state unchanged.
func (l *Ledger) Remove(m Month, c Category, index int) error {
	entries := l.months[m][c]
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: %s %s index %d (len %d)", ErrIndexOutOfRange, m, c, index, len(entries))
	}
	out := make([]Entry, 0, len(entries)-1)
	out = append(out, entries[:index]...)
	out = append(out, entries[index+1:]...)
	l.months[m][c] = out
	return nil
}

// Total sums the amounts of the (m, c) bucket; 0 when empty or absent.
func (l *Ledger) Total(m Month, c Category) float64 {
	var sum float64
	for _, e := range l.months[m][c] {
		sum += e.Amount
	}
	return sum
}

// Snapshot returns an immutable copy of every bucket of m.
func (l *Ledger) Snapshot(m Month) Snapshot {
	return newSnapshot(m, l.months[m])
}

// Load replaces the buckets of m, e.g. with data read from storage. Loading
// an empty map forgets m.
func (l *Ledger) Load(m Month, b Buckets) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if len(b) == 0 {
		delete(l.months, m)
		return nil
	}
	l.months[m] = b.clone()
	return nil
}

// Buckets returns a copy of the bucket map of m, suitable for persisting.
func (l *Ledger) Buckets(m Month) Buckets {
	return l.months[m].clone()
}

// Months returns the months that hold at least one bucket, oldest first.
func (l *Ledger) Months() []Month {
	out := make([]Month, 0, len(l.months))
	for m := range l.months {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (b Buckets) clone() Buckets {
	out := make(Buckets, len(b))
	for c, entries := range b {
		if len(entries) == 0 {
			continue
		}
		out[c] = append([]Entry(nil), entries...)
	}
	return out
}
