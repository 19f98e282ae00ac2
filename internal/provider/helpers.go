package provider

import "strconv"

// toFloat coerces the loosely typed scalars the JSON feeds emit (numbers,
// quoted numbers, ints) into a float64. The second return reports whether
// the value was numeric at all.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
