// Package statement holds loosely structured financial statement tables and
// the fuzzy line-item lookup used by the metrics engine.
package statement

import (
	"bytes"
	"encoding/json"
	"math"
)

// Row is one line item: a provider-defined label and one value per reporting
// period, most recent first. A nil value means the provider had no number.
type Row struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
}

// Table is an ordered set of rows. Row order is the provider's order and is
// significant for Locate.
type Table struct {
	Periods []string `json:"periods,omitempty"` // e.g. "2024-09-30", most recent first
	rows    []Row
}

// NewTable creates an empty table with optional period headers.
func NewTable(periods ...string) *Table {
	return &Table{Periods: periods}
}

// Add appends a row. NaN and infinite values are stored as nil.
func (t *Table) Add(label string, values ...*float64) *Table {
	clean := make([]*float64, len(values))
	for i, v := range values {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			f := *v
			clean[i] = &f
		}
	}
	t.rows = append(t.rows, Row{Label: label, Values: clean})
	return t
}

// AddFloats appends a row from plain numbers; NaN marks a missing period.
func (t *Table) AddFloats(label string, values ...float64) *Table {
	ptrs := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		ptrs[i] = &v
	}
	return t.Add(label, ptrs...)
}

// Scale multiplies every present value in place, e.g. by 1000 for pages
// that report "in thousands". Rows whose label contains any of the skip
// keywords (case-insensitive) are left alone, which keeps per-share rows
// such as EPS intact.
func (t *Table) Scale(factor float64, skip ...string) *Table {
	if t == nil {
		return nil
	}
	for _, row := range t.rows {
		if containsAny(row.Label, skip) {
			continue
		}
		for _, v := range row.Values {
			if v != nil {
				*v *= factor
			}
		}
	}
	return t
}

// Rows returns a copy of the rows in table order. Mutating the result
// leaves the table untouched.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = Row{Label: r.Label, Values: make([]*float64, len(r.Values))}
		for j, v := range r.Values {
			if v != nil {
				cp := *v
				out[i].Values[j] = &cp
			}
		}
	}
	return out
}

// Len returns the number of rows. A nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table is absent or has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

type tableJSON struct {
	Periods []string `json:"periods,omitempty"`
	Rows    []Row    `json:"rows"`
}

// MarshalJSON keeps row order.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Periods: t.Periods, Rows: t.rows})
}

// UnmarshalJSON accepts either {"periods": [...], "rows": [{label, values}]}
// or an object of label -> values. The object form loses nothing only when
// the decoder preserves key order, so it is read token by token.
func (t *Table) UnmarshalJSON(data []byte) error {
	var rowsForm struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(data, &rowsForm); err == nil && len(rowsForm.Rows) > 0 {
		var tj tableJSON
		if err := json.Unmarshal(data, &tj); err != nil {
			return err
		}
		t.Periods = tj.Periods
		t.rows = nil
		for _, r := range tj.Rows {
			t.Add(r.Label, r.Values...)
		}
		return nil
	}
	return t.unmarshalOrderedObject(data)
}

func (t *Table) unmarshalOrderedObject(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	t.rows = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := tok.(string)
		var values []*float64
		if err := dec.Decode(&values); err != nil {
			return err
		}
		t.Add(label, values...)
	}
	_, err := dec.Token()
	return err
}
