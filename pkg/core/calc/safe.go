package calc

import "math"

// =============================================================================
// NULL-SAFE ARITHMETIC
// =============================================================================
//
// Every ratio goes through these helpers. A nil result means "unavailable";
// none of them panic or return NaN/Inf.

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SafeDiv returns a/b, or nil when either operand is missing or not finite,
// or b is zero.
func SafeDiv(a, b *float64) *float64 {
	if !finite(a) || !finite(b) || *b == 0 {
		return nil
	}
	return ptr(*a / *b)
}

// Growth returns cur/prev - 1. Both periods must be present and prev non-zero.
func Growth(cur, prev *float64) *float64 {
	ratio := SafeDiv(cur, prev)
	if ratio == nil {
		return nil
	}
	return ptr(*ratio - 1)
}

// SafeSum returns a+b only when both are present.
func SafeSum(a, b *float64) *float64 {
	if !finite(a) || !finite(b) {
		return nil
	}
	return ptr(*a + *b)
}
