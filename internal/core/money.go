// Package core provides amount parsing and formatting utilities.
//
// This file contains functions for turning user-typed amounts into entry
// amounts and rendering amounts with their category unit.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to an entry amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Zero is a
// valid amount. Returns ErrInvalidAmount for signs, exponents, NaN/Inf or any
// other non-decimal input.
//
// Examples:
//   ParseAmount("12.34") -> 12.34, nil
//   ParseAmount("12,34") -> 12.34, nil
//   ParseAmount("0")     -> 0, nil
//   ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	digits := 0
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidAmount
			}
			digits++
		}
	}
	if digits == 0 {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatNumber renders an amount in its shortest exact decimal form
// (1200, 15.5), the form used inside prompts.
func FormatNumber(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// FormatAmount renders an amount with its category unit: $1200, 3 hours, 5 units.
func FormatAmount(c Category, amount float64) string {
	n := FormatNumber(amount)
	switch c {
	case Monetary:
		return "$" + n
	case Time, Emotional:
		return n + " " + c.Unit()
	}
	return n
}
