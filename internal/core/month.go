package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	monthLayout = "2006-01"
	labelLayout = "January 2006"
)

// NewMonth creates a Month from year and month number (1-12).
func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: month}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the month containing the local current time.
func CurrentMonth() Month {
	return MonthOf(time.Now())
}

// ParseMonth parses the canonical YYYY-MM form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

// ParseMonthLabel parses the display form, e.g. "March 2025".
func ParseMonthLabel(s string) (Month, error) {
	t, err := time.Parse(labelLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

func (m Month) Validate() error {
	if m.Month < time.January || m.Month > time.December || m.Year < 1 || m.Year > 9999 {
		return ErrInvalidMonth
	}
	return nil
}

// String returns the canonical YYYY-MM form used for keys and equality.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label returns the human form, e.g. "March 2025". Display only.
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month.String(), m.Year)
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	return MonthOf(time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// MonthOptions returns n consecutive months starting at from.
func MonthOptions(from Month, n int) []Month {
	if n <= 0 {
		return nil
	}
	out := make([]Month, n)
	for i := range out {
		out[i] = from.AddMonths(i)
	}
	return out
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMonth, string(data))
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
