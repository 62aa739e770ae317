package statement

// Item names a line item the metrics engine reads.
type Item string

const (
	Revenue            Item = "revenue"
	GrossProfit        Item = "gross_profit"
	OperatingIncome    Item = "operating_income"
	NetIncome          Item = "net_income"
	EPS                Item = "eps"
	TotalAssets        Item = "total_assets"
	TotalLiabilities   Item = "total_liabilities"
	TotalEquity        Item = "total_equity"
	OperatingCashFlow  Item = "operating_cash_flow"
	CapitalExpenditure Item = "capital_expenditure"
)

// Keywords lists label synonyms per line item. Providers, companies and filing
// vintages label the same row differently ("Total Revenue" vs "Revenue",
// "Total Liab" vs "Total Liabilities Net Minority Interest").
var Keywords = map[Item][]string{
	Revenue:            {"Total Revenue", "Revenue"},
	GrossProfit:        {"Gross Profit"},
	OperatingIncome:    {"Operating Income"},
	NetIncome:          {"Net Income"},
	EPS:                {"Basic EPS", "EPS", "Diluted EPS"},
	TotalAssets:        {"Total Assets"},
	TotalLiabilities:   {"Total Liabilities", "Total Liab"},
	TotalEquity:        {"Total Equity", "Total Stockholder Equity", "Stockholders Equity"},
	OperatingCashFlow:  {"Net Cash Provided by Operating Activities", "Operating Cash Flow", "Cash From Operating Activities"},
	CapitalExpenditure: {"Capital Expenditure"},
}
