package statement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"1,234", f(1234)},
		{"$1,234.50", f(1234.5)},
		{"(567)", f(-567)},
		{"-12.5%", f(-12.5)},
		{"1.5B", f(1.5e9)},
		{"250k", f(250000)},
		{"--", nil},
		{"N/A", nil},
		{"", nil},
		{"abc", nil},
		{"M", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseNumber(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseHTML_TableElement(t *testing.T) {
	page := `<html><body>
	<table>
	  <tr><th>Breakdown</th><th>TTM</th><th>9/30/2024</th><th>9/30/2023</th></tr>
	  <tr><td>Total Revenue</td><td>395,760</td><td>391,035</td><td>383,285</td></tr>
	  <tr><td>Net Income</td><td>96,150</td><td>93,736</td><td>(96,995)</td></tr>
	  <tr><td>Basic EPS</td><td>--</td><td>6.11</td><td>--</td></tr>
	</table></body></html>`

	table, err := ParseHTML(strings.NewReader(page))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"9/30/2024", "9/30/2023"}, table.Periods)

	rev := Locate(table, []string{"Total Revenue"})
	assert.Equal(t, 391035.0, *rev.Latest)
	assert.Equal(t, 383285.0, *rev.Prior)

	ni := Locate(table, []string{"Net Income"})
	assert.Equal(t, -96995.0, *ni.Prior)

	eps := Locate(table, []string{"EPS"})
	assert.Equal(t, 6.11, *eps.Latest)
	assert.Nil(t, eps.Prior)
}

func TestParseHTML_DivLayout(t *testing.T) {
	page := `<div class="tableContainer">
	  <div class="tableHeader"><div class="row">
	    <div class="column sticky">Breakdown</div>
	    <div class="column">TTM</div>
	    <div class="column">9/30/2024</div>
	    <div class="column">9/30/2023</div>
	  </div></div>
	  <div class="tableBody">
	    <div class="row lv-0">
	      <div class="column sticky"><div class="rowTitle" title="Total Assets">Total Assets</div></div>
	      <div class="column">-</div>
	      <div class="column">364,980,000</div>
	      <div class="column">352,583,000</div>
	    </div>
	    <div class="row lv-0">
	      <div class="column sticky"><div class="rowTitle" title="Total Equity Gross Minority Interest">Total Equity Gross Minority Interest</div></div>
	      <div class="column">-</div>
	      <div class="column">56,950,000</div>
	      <div class="column">62,146,000</div>
	    </div>
	  </div>
	</div>`

	table, err := ParseHTML(strings.NewReader(page))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assets := LocateItem(table, TotalAssets)
	assert.Equal(t, 364980000.0, *assets.Latest)
	equity := LocateItem(table, TotalEquity)
	assert.Equal(t, 62146000.0, *equity.Prior)
}

func TestParseHTML_NoTable(t *testing.T) {
	table, err := ParseHTML(strings.NewReader("<html><body><p>Please enable JavaScript</p></body></html>"))
	require.NoError(t, err)
	assert.True(t, table.Empty())
}

func TestTable_JSONRoundTripKeepsOrder(t *testing.T) {
	var table Table
	err := table.UnmarshalJSON([]byte(`{"Total Revenue": [100, 90], "Revenue": [1, null]}`))
	require.NoError(t, err)
	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Total Revenue", rows[0].Label)
	assert.Nil(t, rows[1].Values[1])

	var rowsForm Table
	err = rowsForm.UnmarshalJSON([]byte(`{"periods": ["2024"], "rows": [{"label": "Net Income", "values": [5]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024"}, rowsForm.Periods)
	assert.Equal(t, 5.0, *Locate(&rowsForm, []string{"net income"}).Latest)
}
