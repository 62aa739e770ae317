package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Company info keys as returned by the upstream quote summary.
const (
	InfoLongName    = "longName"
	InfoShortName   = "shortName"
	InfoSector      = "sector"
	InfoIndustry    = "industry"
	InfoMarketCap   = "marketCap"
	InfoBeta        = "beta"
	InfoTrailingPE  = "trailingPE"
	InfoForwardPE   = "forwardPE"
	InfoPriceSales  = "priceToSalesTrailing12Months"
	InfoPriceToBook = "priceToBook"
	InfoCurrency    = "currency"
)

// CompanyInfo is a flat mapping of named scalar facts about a company.
// Any key may be absent.
type CompanyInfo map[string]interface{}

// String returns the value for key as a string, or fallback when the key is
// absent, empty or not a string.
func (c CompanyInfo) String(key, fallback string) string {
	if c == nil {
		return fallback
	}
	s, ok := c[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Float returns the value for key as a number. Missing keys and values that
// are not finite numbers yield nil.
func (c CompanyInfo) Float(key string) *float64 {
	if c == nil {
		return nil
	}
	var f float64
	switch v := c[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
