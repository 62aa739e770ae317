package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"corporate_analyst/pkg/core/statement"
	"corporate_analyst/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infoBody = `{"quoteSummary": {"result": [{
  "price": {"longName": "Apple Inc.", "shortName": "Apple", "marketCap": {"raw": 3450000000000, "fmt": "3.45T"}, "currency": "USD"},
  "assetProfile": {"sector": "Technology", "industry": "Consumer Electronics", "fullTimeEmployees": 164000},
  "summaryDetail": {"beta": {"raw": 1.24, "fmt": "1.24"}, "trailingPE": {"raw": 37.8, "fmt": "37.80"}, "forwardPE": {}, "priceToSalesTrailing12Months": {"raw": 8.82, "fmt": "8.82"}},
  "defaultKeyStatistics": {"forwardPE": {"raw": 31.2, "fmt": "31.20"}, "priceToBook": {"raw": 60.6, "fmt": "60.60"}}
}], "error": null}}`

const statementsBody = `{"quoteSummary": {"result": [{
  "incomeStatementHistory": {"incomeStatementHistory": [
    {"maxAge": 1, "endDate": {"raw": 1727481600, "fmt": "2024-09-28"}, "totalRevenue": {"raw": 391035000000, "fmt": "391.04B"}, "costOfRevenue": {"raw": 210352000000}, "grossProfit": {"raw": 180683000000}, "netIncome": {"raw": 93736000000}},
    {"maxAge": 1, "endDate": {"raw": 1696032000, "fmt": "2023-09-30"}, "totalRevenue": {"raw": 383285000000, "fmt": "383.29B"}, "costOfRevenue": {"raw": 214137000000}, "grossProfit": {"raw": 169148000000}, "netIncome": {"raw": 96995000000}}
  ], "maxAge": 86400},
  "balanceSheetHistory": {"balanceSheetStatements": [
    {"endDate": {"fmt": "2024-09-28"}, "totalAssets": {"raw": 364980000000}, "totalLiab": {"raw": 308030000000}, "totalStockholderEquity": {"raw": 56950000000}},
    {"endDate": {"fmt": "2023-09-30"}, "totalAssets": {"raw": 352583000000}, "totalLiab": {"raw": 290437000000}, "totalStockholderEquity": {"raw": 62146000000}}
  ]},
  "cashflowStatementHistory": {"cashflowStatements": [
    {"endDate": {"fmt": "2024-09-28"}, "totalCashFromOperatingActivities": {}, "capitalExpenditures": {}},
    {"endDate": {"fmt": "2023-09-30"}, "totalCashFromOperatingActivities": {}, "capitalExpenditures": {}}
  ]}
}], "error": null}}`

const cashFlowPage = `<html><body><table>
<tr><th>Breakdown</th><th>TTM</th><th>9/28/2024</th><th>9/30/2023</th></tr>
<tr><td>Operating Cash Flow</td><td>118,254,000</td><td>118,254,000</td><td>110,543,000</td></tr>
<tr><td>Capital Expenditure</td><td>-9,447,000</td><td>-9,447,000</td><td>-10,959,000</td></tr>
</table></body></html>`

type fakeYahoo struct {
	server       *httptest.Server
	crumbCalls   atomic.Int32
	rejectFirst  atomic.Bool
	summaryCalls atomic.Int32
}

func newFakeYahoo(t *testing.T) *fakeYahoo {
	fy := &fakeYahoo{}
	mux := http.NewServeMux()
	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		n := fy.crumbCalls.Add(1)
		w.Write([]byte("crumb-" + string(rune('0'+n))))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		fy.summaryCalls.Add(1)
		if fy.rejectFirst.CompareAndSwap(true, false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("crumb") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		ticker := strings.TrimPrefix(r.URL.Path, "/v10/finance/quoteSummary/")
		if ticker != "AAPL" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol: ` + ticker + `"}}}`))
			return
		}
		modules := r.URL.Query().Get("modules")
		if strings.Contains(modules, "incomeStatementHistory") {
			w.Write([]byte(statementsBody))
			return
		}
		w.Write([]byte(infoBody))
	})
	mux.HandleFunc("/quote/AAPL/cash-flow/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cashFlowPage))
	})
	fy.server = httptest.NewServer(mux)
	t.Cleanup(fy.server.Close)
	return fy
}

func (fy *fakeYahoo) provider() *YahooProvider {
	return NewYahooProvider(
		WithBaseURLs(fy.server.URL, fy.server.URL+"/seed", fy.server.URL),
		WithRateLimit(100),
	)
}

func TestYahooProvider_Info(t *testing.T) {
	fy := newFakeYahoo(t)
	info, err := fy.provider().Info(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", info.String(models.InfoLongName, ""))
	assert.Equal(t, "Technology", info.String(models.InfoSector, ""))
	assert.Equal(t, 3450000000000.0, *info.Float(models.InfoMarketCap))
	assert.Equal(t, 37.8, *info.Float(models.InfoTrailingPE))
	assert.Equal(t, 31.2, *info.Float(models.InfoForwardPE), "empty wrapper in one module must not hide another module's value")
	assert.Equal(t, 60.6, *info.Float(models.InfoPriceToBook))
}

func TestYahooProvider_StatementsWithPageFallback(t *testing.T) {
	fy := newFakeYahoo(t)
	st, err := fy.provider().Statements(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-09-28", "2023-09-30"}, st.Income.Periods)
	rows := st.Income.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, "Total Revenue", rows[0].Label)
	assert.Equal(t, "Cost Of Revenue", rows[1].Label)

	rev := statement.LocateItem(st.Income, statement.Revenue)
	assert.Equal(t, 391035000000.0, *rev.Latest)
	assert.Equal(t, 383285000000.0, *rev.Prior)

	assert.Equal(t, 308030000000.0, *statement.LocateItem(st.Balance, statement.TotalLiabilities).Latest)
	assert.Equal(t, 56950000000.0, *statement.LocateItem(st.Balance, statement.TotalEquity).Latest)

	// Cash flow module was all empty wrappers; the page is in thousands.
	ocf := statement.LocateItem(st.CashFlow, statement.OperatingCashFlow)
	require.True(t, ocf.Found())
	assert.Equal(t, 118254000000.0, *ocf.Latest)
	assert.Equal(t, -10959000000.0, *statement.LocateItem(st.CashFlow, statement.CapitalExpenditure).Prior)
}

func TestYahooProvider_RetriesOnceOnStaleCrumb(t *testing.T) {
	fy := newFakeYahoo(t)
	p := fy.provider()

	_, err := p.Info(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, int32(1), fy.crumbCalls.Load())

	fy.rejectFirst.Store(true)
	_, err = p.Info(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fy.crumbCalls.Load(), "a 401 refreshes the crumb")
	assert.Equal(t, int32(3), fy.summaryCalls.Load())
}

func TestYahooProvider_UnknownTicker(t *testing.T) {
	fy := newFakeYahoo(t)
	p := fy.provider()

	_, err := p.Info(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)

	st, err := p.Statements(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, st.Income.Empty())
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"totalRevenue":                     "Total Revenue",
		"totalStockholderEquity":           "Total Stockholder Equity",
		"totalLiab":                        "Total Liab",
		"totalCashFromOperatingActivities": "Total Cash From Operating Activities",
		"capitalExpenditures":              "Capital Expenditures",
		"ebit":                             "Ebit",
		"netIncomeApplicableToCommonShares": "Net Income Applicable To Common Shares",
	}
	for in, want := range tests {
		assert.Equal(t, want, humanize(in), in)
	}
}
