package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0", 0, true},
		{".5", 0.5, true},
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		c    Category
		in   float64
		want string
	}{
		{Monetary, 1200, "$1200"},
		{Monetary, 15.5, "$15.5"},
		{Time, 3, "3 hours"},
		{Emotional, 0.25, "0.25 units"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.c, tc.in); got != tc.want {
			t.Fatalf("FormatAmount(%s, %v) = %q, want %q", tc.c, tc.in, got, tc.want)
		}
	}
}
