package statement

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML reads a financial statement table out of an HTML page. A plain
// <table> is preferred; otherwise the div-based "tableHeader/tableBody"
// layout used by finance portals is read. The first column holds labels and
// the remaining columns hold one value per period. A trailing-twelve-months
// column is dropped so that index 0 is the latest fiscal period.
func ParseHTML(r io.Reader) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement HTML: %w", err)
	}

	if t := parseTableElement(doc); !t.Empty() {
		return t, nil
	}
	if t := parseDivLayout(doc); !t.Empty() {
		return t, nil
	}
	return NewTable(), nil
}

func parseTableElement(doc *goquery.Document) *Table {
	var result *Table
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}

		var header []string
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			header = append(header, cleanText(cell.Text()))
		})
		periods, skip := periodColumns(header)

		t := NewTable(periods...)
		rows.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cleanText(cell.Text()))
			})
			addCells(t, cells, skip)
		})

		if !t.Empty() {
			result = t
			return false
		}
		return true
	})
	return result
}

func parseDivLayout(doc *goquery.Document) *Table {
	var header []string
	doc.Find("div.tableHeader div.row").First().ChildrenFiltered("div.column").Each(func(_ int, col *goquery.Selection) {
		header = append(header, cleanText(col.Text()))
	})
	periods, skip := periodColumns(header)

	t := NewTable(periods...)
	doc.Find("div.tableBody div.row").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.ChildrenFiltered("div.column").Each(func(i int, col *goquery.Selection) {
			if i == 0 {
				if title, ok := col.Find(".rowTitle").Attr("title"); ok && title != "" {
					cells = append(cells, cleanText(title))
					return
				}
			}
			cells = append(cells, cleanText(col.Text()))
		})
		addCells(t, cells, skip)
	})
	return t
}

// periodColumns returns the period headers (label column removed) and the
// set of value-column indexes to drop.
func periodColumns(header []string) ([]string, map[int]bool) {
	skip := make(map[int]bool)
	if len(header) < 2 {
		return nil, skip
	}
	var periods []string
	for i, h := range header[1:] {
		if strings.EqualFold(h, "TTM") {
			skip[i] = true
			continue
		}
		periods = append(periods, h)
	}
	return periods, skip
}

func addCells(t *Table, cells []string, skip map[int]bool) {
	if len(cells) < 2 || cells[0] == "" {
		return
	}
	values := make([]*float64, 0, len(cells)-1)
	for i, c := range cells[1:] {
		if skip[i] {
			continue
		}
		values = append(values, ParseNumber(c))
	}
	t.Add(cells[0], values...)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
