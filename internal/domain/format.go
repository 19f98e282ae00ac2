package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCompact renders a large magnitude with a T/B/M suffix, or "-" when
// the value is missing.
func FormatCompact(value float64) string {
	if math.IsNaN(value) {
		return "-"
	}
	abs := math.Abs(value)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", value/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", value/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", value/1e6)
	}
	return groupThousands(value)
}

// groupThousands renders value with no decimals and comma separators.
func groupThousands(value float64) string {
	s := strconv.FormatFloat(value, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
