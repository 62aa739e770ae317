// Package report assembles the plain-text corporate analysis report.
package report

import (
	"fmt"
	"strings"

	"corporate_analyst/pkg/core/calc"
	"corporate_analyst/pkg/core/format"
)

const rule = "=============================="

// MissingStatements is the message printed when no income statement could
// be retrieved for the ticker.
func MissingStatements(ticker string) string {
	return fmt.Sprintf("Could not retrieve financial statements for %s.", ticker)
}

// BuildText renders the fixed-section report. When the income statement is
// missing only the MissingStatements message is returned.
func BuildText(fa calc.FullAnalysis) string {
	if !fa.HasIncome {
		return MissingStatements(fa.Ticker)
	}

	var b strings.Builder
	line := func(tmpl string, args ...interface{}) {
		fmt.Fprintf(&b, tmpl, args...)
		b.WriteByte('\n')
	}
	section := func(title string) {
		b.WriteByte('\n')
		line(title)
	}

	line(rule)
	line("Corporate Analyst Report: %s", fa.Ticker)
	line(rule)

	ov := fa.Overview
	section("Company Overview")
	line("Name: %s", ov.Name)
	line("Sector: %s", ov.Sector)
	line("Industry: %s", ov.Industry)
	line("Market Cap: %s", format.Num(ov.MarketCap))
	line("Beta: %s", format.Plain(ov.Beta))

	section("Profitability")
	line("Gross Margin: %s", format.Pct(fa.GrossMargin))
	line("Operating Margin: %s", format.Pct(fa.OperatingMargin))
	line("Net Margin: %s", format.Pct(fa.NetMargin))

	section("Growth")
	line("Revenue (latest): %s", format.Num(fa.Revenue))
	line("Revenue Growth (YoY): %s", format.Pct(fa.RevenueGrowth))
	line("EPS (latest): %s", format.Plain(fa.EPS))
	line("EPS Growth (YoY): %s", format.Pct(fa.EPSGrowth))

	section("Returns")
	line("ROE: %s", format.Pct(fa.ROE))
	line("ROA: %s", format.Pct(fa.ROA))

	section("Financial Health")
	line("Total Assets: %s", format.Num(fa.TotalAssets))
	line("Total Liabilities: %s", format.Num(fa.TotalLiabilities))
	line("Total Equity: %s", format.Num(fa.TotalEquity))
	line("Debt-to-Equity: %s", format.Ratio(fa.DebtToEquity))

	section("Cash Flow")
	line("Operating Cash Flow: %s", format.Num(fa.OperatingCashFlow))
	line("Capital Expenditures: %s", format.Num(fa.CapitalExpenditure))
	line("Free Cash Flow: %s", format.Num(fa.FreeCashFlow))

	v := fa.Valuation
	section("Valuation")
	line("Trailing P/E: %s", format.Plain(v.TrailingPE))
	line("Forward P/E: %s", format.Plain(v.ForwardPE))
	line("Price/Sales (TTM): %s", format.Plain(v.PriceSales))
	line("Price/Book: %s", format.Plain(v.PriceBook))

	b.WriteByte('\n')
	line(rule)
	line("Note: Automatically generated corporate analysis for personal use.")
	line(rule)
	return b.String()
}
