package calc

import (
	"corporate_analyst/pkg/core/statement"
	"corporate_analyst/pkg/models"
)

// Snapshot is one fetch of upstream data for a ticker. Any part may be empty.
type Snapshot struct {
	Info     models.CompanyInfo
	Income   *statement.Table
	Balance  *statement.Table
	CashFlow *statement.Table
}

// Overview holds the descriptive company fields of the report.
type Overview struct {
	Name      string   `json:"name"`
	Sector    string   `json:"sector"`
	Industry  string   `json:"industry"`
	MarketCap *float64 `json:"market_cap"`
	Beta      *float64 `json:"beta"`
}

// Valuation ratios are copied from company info, never recomputed.
type Valuation struct {
	TrailingPE *float64 `json:"trailing_pe"`
	ForwardPE  *float64 `json:"forward_pe"`
	PriceSales *float64 `json:"price_sales"`
	PriceBook  *float64 `json:"price_book"`
}

// FullAnalysis is every figure printed by the text report.
type FullAnalysis struct {
	Ticker string `json:"ticker"`
	// HasIncome is false when the income statement could not be retrieved;
	// nothing but Ticker and Overview is filled in that case.
	HasIncome bool     `json:"has_income"`
	Overview  Overview `json:"overview"`

	// Profitability
	GrossMargin     *float64 `json:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	NetMargin       *float64 `json:"net_margin"`

	// Growth
	Revenue       *float64 `json:"revenue"`
	RevenueGrowth *float64 `json:"revenue_growth"`
	EPS           *float64 `json:"eps"`
	EPSGrowth     *float64 `json:"eps_growth"`

	// Returns
	ROE *float64 `json:"roe"`
	ROA *float64 `json:"roa"`

	// Financial health
	TotalAssets      *float64 `json:"total_assets"`
	TotalLiabilities *float64 `json:"total_liabilities"`
	TotalEquity      *float64 `json:"total_equity"`
	DebtToEquity     *float64 `json:"debt_to_equity"`

	// Cash flow
	OperatingCashFlow  *float64 `json:"operating_cash_flow"`
	CapitalExpenditure *float64 `json:"capital_expenditure"`
	FreeCashFlow       *float64 `json:"free_cash_flow"`

	Valuation Valuation `json:"valuation"`
}

// ComputeFullAnalysis derives the report figures from a snapshot. The company
// name falls back to the ticker.
func ComputeFullAnalysis(ticker string, snap Snapshot) FullAnalysis {
	info := snap.Info
	fa := FullAnalysis{
		Ticker: ticker,
		Overview: Overview{
			Name:      info.String(models.InfoLongName, ticker),
			Sector:    info.String(models.InfoSector, "N/A"),
			Industry:  info.String(models.InfoIndustry, "N/A"),
			MarketCap: info.Float(models.InfoMarketCap),
			Beta:      info.Float(models.InfoBeta),
		},
	}
	if snap.Income.Empty() {
		return fa
	}
	fa.HasIncome = true

	revenue := statement.LocateItem(snap.Income, statement.Revenue)
	grossProfit := statement.LocateItem(snap.Income, statement.GrossProfit)
	opIncome := statement.LocateItem(snap.Income, statement.OperatingIncome)
	netIncome := statement.LocateItem(snap.Income, statement.NetIncome)
	eps := statement.LocateItem(snap.Income, statement.EPS)

	totalAssets := statement.LocateItem(snap.Balance, statement.TotalAssets)
	totalLiab := statement.LocateItem(snap.Balance, statement.TotalLiabilities)
	equity := statement.LocateItem(snap.Balance, statement.TotalEquity)

	opCashFlow := statement.LocateItem(snap.CashFlow, statement.OperatingCashFlow)
	capex := statement.LocateItem(snap.CashFlow, statement.CapitalExpenditure)

	fa.GrossMargin = SafeDiv(grossProfit.Latest, revenue.Latest)
	fa.OperatingMargin = SafeDiv(opIncome.Latest, revenue.Latest)
	fa.NetMargin = SafeDiv(netIncome.Latest, revenue.Latest)

	fa.Revenue = revenue.Latest
	fa.RevenueGrowth = Growth(revenue.Latest, revenue.Prior)
	fa.EPS = eps.Latest
	fa.EPSGrowth = Growth(eps.Latest, eps.Prior)

	fa.ROE = SafeDiv(netIncome.Latest, equity.Latest)
	fa.ROA = SafeDiv(netIncome.Latest, totalAssets.Latest)

	fa.TotalAssets = totalAssets.Latest
	fa.TotalLiabilities = totalLiab.Latest
	fa.TotalEquity = equity.Latest
	fa.DebtToEquity = SafeDiv(totalLiab.Latest, equity.Latest)

	// Capex is already signed negative upstream.
	fa.OperatingCashFlow = opCashFlow.Latest
	fa.CapitalExpenditure = capex.Latest
	fa.FreeCashFlow = SafeSum(opCashFlow.Latest, capex.Latest)

	fa.Valuation = Valuation{
		TrailingPE: info.Float(models.InfoTrailingPE),
		ForwardPE:  info.Float(models.InfoForwardPE),
		PriceSales: info.Float(models.InfoPriceSales),
		PriceBook:  info.Float(models.InfoPriceToBook),
	}
	return fa
}
