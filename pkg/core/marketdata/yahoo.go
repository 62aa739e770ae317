package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"corporate_analyst/pkg/core/statement"
	"corporate_analyst/pkg/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	yahooAPIURL  = "https://query2.finance.yahoo.com"
	yahooSeedURL = "https://fc.yahoo.com"
	yahooWebURL  = "https://finance.yahoo.com"

	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 2
	crumbTTL         = time.Hour

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var (
	infoModules      = []string{"price", "assetProfile", "summaryDetail", "defaultKeyStatistics"}
	statementModules = []string{"incomeStatementHistory", "balanceSheetHistory", "cashflowStatementHistory"}

	// Statement pages report in thousands except per-share rows.
	perShareRows = []string{"EPS", "Per Share"}
)

// errUnauthorized marks a stale crumb; the request is retried once.
var errUnauthorized = errors.New("yahoo: unauthorized")

// YahooProvider reads the Yahoo Finance quoteSummary API. Statement modules
// that come back empty are filled from the public financials pages.
type YahooProvider struct {
	apiURL     string
	seedURL    string
	webURL     string
	httpClient *http.Client
	limiter    *rate.Limiter

	crumbMu  sync.Mutex
	crumb    string
	crumbExp time.Time
}

// YahooOption configures a YahooProvider.
type YahooOption func(*YahooProvider)

// WithBaseURLs points the provider at other hosts, for tests.
func WithBaseURLs(apiURL, seedURL, webURL string) YahooOption {
	return func(p *YahooProvider) {
		p.apiURL = strings.TrimRight(apiURL, "/")
		p.seedURL = seedURL
		p.webURL = strings.TrimRight(webURL, "/")
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) YahooOption {
	return func(p *YahooProvider) {
		p.httpClient.Timeout = d
	}
}

// WithRateLimit sets the request rate.
func WithRateLimit(requestsPerSecond int) YahooOption {
	return func(p *YahooProvider) {
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewYahooProvider creates a provider with a cookie jar for the crumb
// session.
func NewYahooProvider(opts ...YahooOption) *YahooProvider {
	jar, _ := cookiejar.New(nil)
	p := &YahooProvider{
		apiURL:  yahooAPIURL,
		seedURL: yahooSeedURL,
		webURL:  yahooWebURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *YahooProvider) Name() string { return KindYahoo }

// Info returns the flattened price, profile, summary and key-statistics
// modules.
func (p *YahooProvider) Info(ctx context.Context, ticker string) (models.CompanyInfo, error) {
	modules, err := p.quoteSummary(ctx, ticker, infoModules)
	if err != nil {
		return nil, err
	}
	return flattenInfo(modules, infoModules), nil
}

// Statements returns the income statement, balance sheet and cash flow
// tables. An error is returned only when nothing at all could be read.
func (p *YahooProvider) Statements(ctx context.Context, ticker string) (*Statements, error) {
	logger := zerolog.Ctx(ctx).With().Str("ticker", ticker).Logger()
	st := &Statements{}

	modules, apiErr := p.quoteSummary(ctx, ticker, statementModules)
	switch {
	case errors.Is(apiErr, ErrNotFound):
		return st, apiErr
	case apiErr != nil:
		logger.Warn().Err(apiErr).Msg("quoteSummary statements failed, trying financials pages")
	default:
		st.Income = historyTable(modules["incomeStatementHistory"], "incomeStatementHistory")
		st.Balance = historyTable(modules["balanceSheetHistory"], "balanceSheetStatements")
		st.CashFlow = historyTable(modules["cashflowStatementHistory"], "cashflowStatements")
	}

	pages := []struct {
		path  string
		table **statement.Table
	}{
		{"financials", &st.Income},
		{"balance-sheet", &st.Balance},
		{"cash-flow", &st.CashFlow},
	}
	var pageErr error
	for _, page := range pages {
		if !(*page.table).Empty() {
			continue
		}
		t, err := p.scrapeStatement(ctx, ticker, page.path)
		if err != nil {
			logger.Warn().Err(err).Str("page", page.path).Msg("statement page scrape failed")
			pageErr = err
			continue
		}
		*page.table = t
	}

	if st.Income.Empty() && st.Balance.Empty() && st.CashFlow.Empty() {
		if apiErr != nil {
			return st, apiErr
		}
		if pageErr != nil {
			return st, pageErr
		}
	}
	return st, nil
}

func (p *YahooProvider) quoteSummary(ctx context.Context, ticker string, modules []string) (map[string]json.RawMessage, error) {
	body, err := p.quoteSummaryOnce(ctx, ticker, modules)
	if errors.Is(err, errUnauthorized) {
		zerolog.Ctx(ctx).Debug().Str("ticker", ticker).Msg("crumb rejected, refreshing")
		p.resetCrumb()
		body, err = p.quoteSummaryOnce(ctx, ticker, modules)
	}
	if err != nil {
		return nil, err
	}
	return parseQuoteSummary(ticker, body)
}

func (p *YahooProvider) quoteSummaryOnce(ctx context.Context, ticker string, modules []string) ([]byte, error) {
	crumb, err := p.getCrumb(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain crumb: %w", err)
	}

	params := url.Values{}
	params.Set("modules", strings.Join(modules, ","))
	params.Set("crumb", crumb)
	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", p.apiURL, url.PathEscape(ticker), params.Encode())

	return p.get(ctx, reqURL, "application/json")
}

// getCrumb visits the seed page for session cookies, then asks for a crumb.
// The crumb is cached for an hour; the cookie jar lives on the client.
func (p *YahooProvider) getCrumb(ctx context.Context) (string, error) {
	p.crumbMu.Lock()
	defer p.crumbMu.Unlock()

	if p.crumb != "" && time.Now().Before(p.crumbExp) {
		return p.crumb, nil
	}

	if err := p.seed(ctx); err != nil {
		return "", fmt.Errorf("seed request failed: %w", err)
	}

	body, err := p.get(ctx, p.apiURL+"/v1/test/getcrumb", "")
	if err != nil {
		return "", err
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return "", errors.New("empty crumb returned")
	}

	p.crumb = crumb
	p.crumbExp = time.Now().Add(crumbTTL)
	zerolog.Ctx(ctx).Debug().Msg("yahoo crumb obtained")
	return crumb, nil
}

// seed only needs the cookies; the landing page itself usually answers 404.
func (p *YahooProvider) seed(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.seedURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (p *YahooProvider) resetCrumb() {
	p.crumbMu.Lock()
	p.crumb = ""
	p.crumbExp = time.Time{}
	p.crumbMu.Unlock()
}

func (p *YahooProvider) scrapeStatement(ctx context.Context, ticker, page string) (*statement.Table, error) {
	reqURL := fmt.Sprintf("%s/quote/%s/%s/", p.webURL, url.PathEscape(ticker), page)
	body, err := p.get(ctx, reqURL, "text/html")
	if err != nil {
		return nil, err
	}
	t, err := statement.ParseHTML(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return t.Scale(1000, perShareRows...), nil
}

type statusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("yahoo returned %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// get performs a rate-limited GET and maps 401, 404 and 429 to errors the
// callers branch on.
func (p *YahooProvider) get(ctx context.Context, reqURL, accept string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	zerolog.Ctx(ctx).Debug().Str("url", reqURL).Msg("yahoo request")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, errUnauthorized
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reqURL)
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, &statusError{StatusCode: resp.StatusCode, URL: reqURL, Body: truncate(body, 200)}
	}
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
