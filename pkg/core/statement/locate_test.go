package statement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func incomeTable() *Table {
	return NewTable("2024-09-30", "2023-09-30").
		AddFloats("Total Revenue", 391035, 383285).
		AddFloats("Cost Of Revenue", 210352, 214137).
		AddFloats("Gross Profit", 180683, 169148).
		AddFloats("Operating Income", 123216, 114301).
		AddFloats("Net Income", 93736, 96995).
		AddFloats("Basic EPS", 6.11, 6.16)
}

func TestLocate_AbsentOrEmptyTable(t *testing.T) {
	tests := []struct {
		name  string
		table *Table
	}{
		{"nil table", nil},
		{"empty table", NewTable()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			li := Locate(tt.table, []string{"Total Revenue"})
			assert.Nil(t, li.Latest)
			assert.Nil(t, li.Prior)
			assert.False(t, li.Found())
		})
	}
}

func TestLocate_CaseInsensitiveSubstring(t *testing.T) {
	li := Locate(incomeTable(), []string{"net income"})
	require.True(t, li.Found())
	assert.Equal(t, 93736.0, *li.Latest)
	assert.Equal(t, 96995.0, *li.Prior)

	li = Locate(incomeTable(), []string{"GROSS"})
	require.True(t, li.Found())
	assert.Equal(t, 180683.0, *li.Latest)
}

func TestLocate_ScanOrderWins(t *testing.T) {
	// "Revenue" also matches "Total Revenue"; the first row in table order is returned.
	table := NewTable().
		AddFloats("Total Revenue", 100, 90).
		AddFloats("Revenue", 1, 2)

	li := Locate(table, []string{"Total Revenue", "Revenue"})
	require.True(t, li.Found())
	assert.Equal(t, 100.0, *li.Latest)

	li = Locate(table, []string{"Revenue", "Total Revenue"})
	assert.Equal(t, 100.0, *li.Latest)

	reversed := NewTable().
		AddFloats("Revenue", 1, 2).
		AddFloats("Total Revenue", 100, 90)
	li = Locate(reversed, []string{"Total Revenue", "Revenue"})
	assert.Equal(t, 1.0, *li.Latest)
}

func TestLocate_NoMatch(t *testing.T) {
	li := Locate(incomeTable(), []string{"Dividends"})
	assert.False(t, li.Found())
	assert.Nil(t, li.Prior)

	li = Locate(incomeTable(), nil)
	assert.False(t, li.Found())

	li = Locate(incomeTable(), []string{"", "  "})
	assert.False(t, li.Found())
}

func TestLocate_SinglePeriod(t *testing.T) {
	table := NewTable().AddFloats("Total Assets", 364980)
	li := Locate(table, []string{"Total Assets"})
	require.True(t, li.Found())
	assert.Equal(t, 364980.0, *li.Latest)
	assert.Nil(t, li.Prior)
}

func TestLocate_MissingPeriodValue(t *testing.T) {
	table := NewTable().Add("Net Income", nil, f(10))
	li := Locate(table, []string{"Net Income"})
	assert.Nil(t, li.Latest)
	assert.Equal(t, 10.0, *li.Prior)
}

func TestLocateItem_UsesKeywordTable(t *testing.T) {
	balance := NewTable().
		AddFloats("Total Assets", 364980, 352583).
		AddFloats("Total Liabilities Net Minority Interest", 308030, 290437).
		AddFloats("Total Equity Gross Minority Interest", 56950, 62146)

	assert.Equal(t, 308030.0, *LocateItem(balance, TotalLiabilities).Latest)
	assert.Equal(t, 56950.0, *LocateItem(balance, TotalEquity).Latest)

	legacy := NewTable().
		AddFloats("Total Liab", 10).
		AddFloats("Total Stockholder Equity", 5)
	assert.Equal(t, 10.0, *LocateItem(legacy, TotalLiabilities).Latest)
	assert.Equal(t, 5.0, *LocateItem(legacy, TotalEquity).Latest)

	cash := NewTable().
		AddFloats("Operating Cash Flow", 118254).
		AddFloats("Capital Expenditure", -9447)
	assert.Equal(t, 118254.0, *LocateItem(cash, OperatingCashFlow).Latest)
	assert.Equal(t, -9447.0, *LocateItem(cash, CapitalExpenditure).Latest)
}

func TestTable_AddDropsNonFinite(t *testing.T) {
	table := NewTable().AddFloats("Net Income", math.NaN(), 5)
	li := Locate(table, []string{"Net Income"})
	assert.Nil(t, li.Latest)
	assert.Equal(t, 5.0, *li.Prior)
}

func TestTable_RowsIsACopy(t *testing.T) {
	table := incomeTable()

	rows := table.Rows()
	rows[0], rows[1] = rows[1], rows[0]
	rows[2].Label = "Revenue Adjustments"
	*rows[3].Values[0] = 0
	_ = append(rows[:1], Row{Label: "Revenue", Values: []*float64{f(1)}})

	assert.Equal(t, 6, table.Len())
	assert.Equal(t, "Total Revenue", table.Rows()[0].Label)
	assert.Equal(t, 391035.0, *LocateItem(table, Revenue).Latest)
	assert.Equal(t, 123216.0, *LocateItem(table, OperatingIncome).Latest)
}
