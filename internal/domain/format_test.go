package domain

import (
	"math"
	"testing"
)

func TestFormatCompact(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{math.NaN(), "-"},
		{1.3182e13, "13.18T"},
		{-2.5e12, "-2.50T"},
		{1.2e9, "1.20B"},
		{4.56e6, "4.56M"},
		{640_000, "640,000"},
		{-1_234, "-1,234"},
		{999, "999"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := FormatCompact(tc.in); got != tc.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
