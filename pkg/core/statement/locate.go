package statement

import "strings"

// LineItem is the latest and prior period value of a located row. Either may
// be nil: the row was not found, or the table has fewer periods.
type LineItem struct {
	Latest *float64 `json:"latest"`
	Prior  *float64 `json:"prior"`
}

// Found reports whether the latest value is present.
func (li LineItem) Found() bool {
	return li.Latest != nil
}

// Locate scans the table rows in order and returns the first row whose label
// contains any of the keywords (case-insensitive). Absent tables, empty
// keyword lists and misses all yield an empty LineItem.
func Locate(t *Table, keywords []string) LineItem {
	if t.Empty() || len(keywords) == 0 {
		return LineItem{}
	}

	for _, row := range t.rows {
		if containsAny(row.Label, keywords) {
			return lineItemFromRow(row)
		}
	}
	return LineItem{}
}

func containsAny(label string, keywords []string) bool {
	label = strings.ToLower(label)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(label, k) {
			return true
		}
	}
	return false
}

// LocateItem looks up a named line item using the Keywords table.
func LocateItem(t *Table, item Item) LineItem {
	return Locate(t, Keywords[item])
}

func lineItemFromRow(row Row) LineItem {
	var li LineItem
	if len(row.Values) > 0 {
		li.Latest = row.Values[0]
	}
	if len(row.Values) > 1 {
		li.Prior = row.Values[1]
	}
	return li
}
