package provider

import (
	"math"
	"strconv"
	"strings"
)

// ParseLooseNumber decodes the free-form numeric text found in the scraped
// tables: currency symbols, thousands separators, parenthesised negatives,
// percent signs, trailing asset units, and m/b magnitude suffixes. Malformed
// input yields NaN; the function never fails.
//
//	"(1,234.5)"  -> -1234.5
//	"1.2b"       -> 1.2e9
//	"45.3%"      -> 45.3
//	"1,000 BTC"  -> 1000
//	"-"          -> NaN
func ParseLooseNumber(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "-" {
		return math.NaN()
	}

	negative := strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")")
	cleaned := strings.Trim(value, "()")
	for _, token := range []string{",", "$", "+", "SOL", "ETH", "BTC", "%"} {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return math.NaN()
	}

	multiplier := 1.0
	switch cleaned[len(cleaned)-1] {
	case 'm', 'M':
		multiplier = 1e6
		cleaned = cleaned[:len(cleaned)-1]
	case 'b', 'B':
		multiplier = 1e9
		cleaned = cleaned[:len(cleaned)-1]
	}
	cleaned = strings.TrimSpace(cleaned)

	number, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	number *= multiplier
	if negative {
		number = -number
	}
	return number
}
