package statement

import (
	"math"
	"strconv"
	"strings"
)

var suffixScale = map[byte]float64{
	'k': 1e3,
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

// ParseNumber parses a statement cell such as "1,234", "$1.2B", "(567)" or
// "-12.5%". Placeholders ("", "-", "--", "N/A", "NaN") and anything else
// that is not a number return nil. Percent signs are stripped, not scaled.
func ParseNumber(s string) *float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(cleaned)

	switch strings.ToLower(cleaned) {
	case "", "-", "--", "—", "n/a", "na", "nan", "none", "null":
		return nil
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, "("), ")")
	}

	scale := 1.0
	if n := len(cleaned); n > 1 {
		if m, ok := suffixScale[cleaned[n-1]]; ok {
			scale = m
			cleaned = cleaned[:n-1]
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v *= scale
	if negative {
		v = -v
	}
	return &v
}
