package core

import (
	"testing"
	"time"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false}, // rounds down
		{"12.346", 1235, false}, // rounds up
		{"0.01", 1, false},
		{" 7 ", 700, false},
		{".5", 50, false},
		{"", 0, true},
		{"0", 0, true},
		{"-1", 0, true},
		{"+1", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"1e3", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{1234, "$12.34"},
		{123456, "$1,234.56"},
		{100000000, "$1,000,000.00"},
		{-7500, "-$75.00"},
	}
	for _, tc := range cases {
		if got := FormatUSD(Money{Cents: tc.cents}); got != tc.want {
			t.Errorf("%d: got %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	if got := FormatDate(d); got != "1/2/2024" {
		t.Errorf("got %q", got)
	}
}
