package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Monetary  Category = "Monetary"
	Time      Category = "Time"
	Emotional Category = "Emotional/Mental"
)

type (
	// Category is one of the fixed expense kinds. The set is closed.
	Category string

	// Month identifies a calendar month. Its canonical text form is YYYY-MM.
	Month struct {
		Year  int
		Month time.Month
	}

	Entry struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	// Buckets is the per-category entry map of a single month, the shape
	// persisted under expenses_<YYYY-MM> and sent to the proxy as "data".
	Buckets map[Category][]Entry
)

var (
	// Kinds. Specific errors below wrap one of these.
	ErrValidation      = errors.New("validation error")
	ErrIndexOutOfRange = errors.New("index out of range")

	ErrEmptyName       = fmt.Errorf("%w: empty expense name", ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be a finite non-negative number", ErrValidation)
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrInvalidMonth    = fmt.Errorf("%w: invalid month", ErrValidation)
)

var categories = []Category{Monetary, Time, Emotional}

// Categories returns the categories in declared order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory accepts the canonical name case-insensitively plus a few
// short aliases used on the command line.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monetary", "money", "$":
		return Monetary, nil
	case "time", "hours":
		return Time, nil
	case "emotional/mental", "emotional", "mental":
		return Emotional, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) Valid() bool {
	switch c {
	case Monetary, Time, Emotional:
		return true
	}
	return false
}

// Unit returns the display unit. Units never take part in arithmetic.
func (c Category) Unit() string {
	switch c {
	case Monetary:
		return "$"
	case Time:
		return "hours"
	case Emotional:
		return "units"
	}
	return ""
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks every bucket key and entry.
func (b Buckets) Validate() error {
	for c, entries := range b {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
		}
		for i, e := range entries {
			if err := e.Validate(); err != nil {
				return fmt.Errorf("%s entry %d: %w", c, i, err)
			}
		}
	}
	return nil
}
