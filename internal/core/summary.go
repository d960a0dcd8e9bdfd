package core

// Snapshot is a read-only view of one month's buckets.
type Snapshot struct {
	month   Month
	buckets Buckets
}

func newSnapshot(m Month, b Buckets) Snapshot {
	return Snapshot{month: m, buckets: b.clone()}
}

// NewSnapshot builds a snapshot from bucket data received from outside the
// ledger, such as a proxy request body.
func NewSnapshot(m Month, b Buckets) (Snapshot, error) {
	if err := m.Validate(); err != nil {
		return Snapshot{}, err
	}
	if err := b.Validate(); err != nil {
		return Snapshot{}, err
	}
	return newSnapshot(m, b), nil
}

func (s Snapshot) Month() Month { return s.month }

// Entries returns a copy of the entries of c in insertion order.
func (s Snapshot) Entries(c Category) []Entry {
	return append([]Entry(nil), s.buckets[c]...)
}

// Categories returns the non-empty categories in declared order.
func (s Snapshot) Categories() []Category {
	var out []Category
	for _, c := range categories {
		if len(s.buckets[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Categories()) == 0
}

func (s Snapshot) Total(c Category) float64 {
	var sum float64
	for _, e := range s.buckets[c] {
		sum += e.Amount
	}
	return sum
}

// Buckets returns a copy of the underlying data.
func (s Snapshot) Buckets() Buckets {
	return s.buckets.clone()
}

// CategoryTotal is the aggregated amount of one category.
type CategoryTotal struct {
	Category Category
	Count    int
	Total    float64
}

// MonthOverview lists every category total of a month, empty ones included.
type MonthOverview struct {
	Month  Month
	Totals []CategoryTotal
}

// Overview summarizes m across all categories in declared order.
func (l *Ledger) Overview(m Month) MonthOverview {
	ov := MonthOverview{Month: m}
	for _, c := range categories {
		ov.Totals = append(ov.Totals, CategoryTotal{
			Category: c,
			Count:    len(l.months[m][c]),
			Total:    l.Total(m, c),
		})
	}
	return ov
}
