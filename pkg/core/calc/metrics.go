package calc

import (
	"corporate_analyst/pkg/core/statement"
	"corporate_analyst/pkg/models"
)

// ReasonNoIncomeStatement is reported when the income statement is missing.
const ReasonNoIncomeStatement = "No income statement found"

// CoreMetrics is the ratio set the rating engine consumes. OK is false only
// when the income statement could not be obtained at all; individual ratios
// may still be nil when OK is true.
type CoreMetrics struct {
	OK            bool     `json:"ok"`
	Reason        string   `json:"reason,omitempty"`
	RevenueGrowth *float64 `json:"revenue_growth"`
	EPSGrowth     *float64 `json:"eps_growth"`
	ROE           *float64 `json:"roe"`
	ROA           *float64 `json:"roa"`
	DE            *float64 `json:"de"`
	PE            *float64 `json:"pe"`
	PS            *float64 `json:"ps"`
}

// ComputeCoreMetrics derives the rating inputs from the income statement,
// the balance sheet and the company info. Valuation ratios are passed
// through from info unchanged.
func ComputeCoreMetrics(info models.CompanyInfo, income, balance *statement.Table) CoreMetrics {
	if income.Empty() {
		return CoreMetrics{OK: false, Reason: ReasonNoIncomeStatement}
	}

	revenue := statement.LocateItem(income, statement.Revenue)
	netIncome := statement.LocateItem(income, statement.NetIncome)
	eps := statement.LocateItem(income, statement.EPS)

	totalAssets := statement.LocateItem(balance, statement.TotalAssets)
	totalLiab := statement.LocateItem(balance, statement.TotalLiabilities)
	equity := statement.LocateItem(balance, statement.TotalEquity)

	return CoreMetrics{
		OK:            true,
		RevenueGrowth: Growth(revenue.Latest, revenue.Prior),
		EPSGrowth:     Growth(eps.Latest, eps.Prior),
		ROE:           SafeDiv(netIncome.Latest, equity.Latest),
		ROA:           SafeDiv(netIncome.Latest, totalAssets.Latest),
		DE:            SafeDiv(totalLiab.Latest, equity.Latest),
		PE:            info.Float(models.InfoTrailingPE),
		PS:            info.Float(models.InfoPriceSales),
	}
}
