package marketdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"corporate_analyst/pkg/core/statement"
	"corporate_analyst/pkg/models"
)

// yfVal is Yahoo's value wrapper. Missing values come back as {}.
type yfVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func parseQuoteSummary(ticker string, body []byte) (map[string]json.RawMessage, error) {
	var raw struct {
		QuoteSummary struct {
			Result []map[string]json.RawMessage `json:"result"`
			Error  *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"quoteSummary"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode quoteSummary: %w", err)
	}
	if e := raw.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, e.Description)
		}
		return nil, fmt.Errorf("yahoo error %s: %s", e.Code, e.Description)
	}
	if len(raw.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: no result for %s", ErrNotFound, ticker)
	}
	return raw.QuoteSummary.Result[0], nil
}

// flattenInfo merges the scalar fields of the given modules into one map.
// Later modules win when both carry a value.
func flattenInfo(modules map[string]json.RawMessage, order []string) models.CompanyInfo {
	info := models.CompanyInfo{}
	for _, name := range order {
		data, ok := modules[name]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			continue
		}
		for key, field := range fields {
			if v, ok := scalar(field); ok {
				info[key] = v
			}
		}
	}
	return info
}

// scalar reads a string, a number or a {raw, fmt} wrapper.
func scalar(field json.RawMessage) (interface{}, bool) {
	field = bytes.TrimSpace(field)
	if len(field) == 0 {
		return nil, false
	}
	switch field[0] {
	case '"':
		var s string
		if err := json.Unmarshal(field, &s); err != nil || s == "" {
			return nil, false
		}
		return s, true
	case '{':
		if v := wrappedValue(field); v != nil {
			return *v, true
		}
		return nil, false
	default:
		var f float64
		if err := json.Unmarshal(field, &f); err != nil {
			return nil, false
		}
		return f, true
	}
}

func wrappedValue(field json.RawMessage) *float64 {
	var v yfVal
	if err := json.Unmarshal(field, &v); err != nil {
		return nil
	}
	return v.Raw
}

// historyTable converts a statement history module, a list of periods each
// holding camelCase fields, into a table. Rows follow the field order of the
// periods; rows without a single value are dropped.
func historyTable(module json.RawMessage, listKey string) *statement.Table {
	if len(module) == 0 {
		return statement.NewTable()
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(module, &wrapper); err != nil {
		return statement.NewTable()
	}
	var periods []json.RawMessage
	if err := json.Unmarshal(wrapper[listKey], &periods); err != nil || len(periods) == 0 {
		return statement.NewTable()
	}

	var (
		order   []string
		seen    = map[string]bool{}
		headers = make([]string, len(periods))
		columns = make([]map[string]*float64, len(periods))
	)
	for i, period := range periods {
		columns[i] = map[string]*float64{}
		keys, fields, err := orderedObject(period)
		if err != nil {
			continue
		}
		for _, key := range keys {
			switch key {
			case "maxAge":
				continue
			case "endDate":
				var end yfVal
				if json.Unmarshal(fields[key], &end) == nil {
					headers[i] = end.Fmt
				}
				continue
			}
			columns[i][key] = wrappedValue(fields[key])
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
	}

	t := statement.NewTable(headers...)
	for _, key := range order {
		values := make([]*float64, len(columns))
		present := false
		for i, col := range columns {
			values[i] = col[key]
			present = present || values[i] != nil
		}
		if present {
			t.Add(humanize(key), values...)
		}
	}
	return t
}

func orderedObject(data json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	var keys []string
	fields := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		fields[key] = value
	}
	return keys, fields, nil
}

// humanize turns a camelCase field name into a row label:
// "totalStockholderEquity" -> "Total Stockholder Equity".
func humanize(key string) string {
	runes := []rune(key)
	var b strings.Builder
	for i, r := range runes {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		prev := runes[i-1]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
