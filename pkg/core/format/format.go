// Package format renders optional numbers for the text report. Every helper
// prints "N/A" for a missing or non-finite value.
package format

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NA is printed for unavailable values.
const NA = "N/A"

var printer = message.NewPrinter(language.English)

func available(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Pct formats a ratio as a percentage with two decimals: 0.1234 -> "12.34%".
func Pct(v *float64) string {
	if !available(v) {
		return NA
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

// Num formats a value as a thousands-separated integer: 1234567 -> "1,234,567".
func Num(v *float64) string {
	if !available(v) {
		return NA
	}
	return printer.Sprintf("%.0f", *v)
}

// Ratio formats a value with two decimals.
func Ratio(v *float64) string {
	if !available(v) {
		return NA
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// Plain formats a value in its shortest exact form.
func Plain(v *float64) string {
	if !available(v) {
		return NA
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
