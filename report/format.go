package report

import (
	"fmt"
	"math"
	"strconv"
)

// FormatValue renders a measure with six significant digits. Missing
// values render as the empty string.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("%.6g", v)
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatYear renders a year, or the empty string for an unknown one.
func FormatYear(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

// RoundTo4 rounds to 4 decimal places.
func RoundTo4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// pointValue is the chart representation of v: nil when missing.
func pointValue(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := RoundTo4(v)
	return &r
}
