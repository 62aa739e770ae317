package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"corporate_analyst/pkg/core/agent"
	"corporate_analyst/pkg/core/analyst"
	"corporate_analyst/pkg/core/llm"
	"corporate_analyst/pkg/core/marketdata"
	"corporate_analyst/pkg/core/narrative"
	"corporate_analyst/pkg/core/prompt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedProvider struct {
	reply string
	err   error
}

func (p *cannedProvider) GenerateResponse(context.Context, string, string, map[string]interface{}) (string, error) {
	return p.reply, p.err
}

func (p *cannedProvider) AdaptInstructions(raw string) string { return raw }

// oneShotData serves statements once; later calls fail like a provider
// that started rate limiting.
type oneShotData struct {
	marketdata.Provider
	statementCalls atomic.Int32
}

func (d *oneShotData) Statements(ctx context.Context, ticker string) (*marketdata.Statements, error) {
	if d.statementCalls.Add(1) > 1 {
		return nil, errors.New("429 too many requests")
	}
	return d.Provider.Statements(ctx, ticker)
}

type fixture struct {
	handler  http.Handler
	provider *cannedProvider
	agents   *agent.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, marketdata.NewFileProvider("../../core/marketdata/testdata"))
}

func newFixtureWith(t *testing.T, data marketdata.Provider) *fixture {
	t.Helper()
	provider := &cannedProvider{reply: "## 1. Executive Summary\n\nMicrosoft is a **Buy**.\n\n<script>x()</script>"}
	agents := agent.NewManagerWithProviders(agent.Config{ActiveProvider: "gemini"}, map[string]llm.Provider{
		"gemini":   provider,
		"deepseek": provider,
	})
	prompts, err := prompt.NewLibrary("")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	svc := analyst.NewService(
		data,
		analyst.WithMetrics(analyst.NewMetrics(reg)),
		analyst.WithNarrative(narrative.NewWriter(agents, prompts)),
	)
	return &fixture{
		handler:  NewRouter(Deps{Service: svc, Agents: agents, MarketData: marketdata.KindFile, Gatherer: reg}),
		provider: provider,
		agents:   agents,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, AnalyzePath, `{"ticker": "msft"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		RequestID string `json:"request_id"`
		Ticker    string `json:"ticker"`
		Analysis  string `json:"analysis"`
		Document  struct {
			Filename    string `json:"filename"`
			ContentType string `json:"content_type"`
			Data        []byte `json:"data"`
		} `json:"document"`
		Metrics struct {
			OK  bool     `json:"ok"`
			ROE *float64 `json:"roe"`
		} `json:"metrics"`
		Rating struct {
			Rating     string         `json:"rating"`
			Score      int            `json:"score"`
			Components map[string]int `json:"components"`
		} `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "MSFT", got.Ticker)
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, rec.Header().Get("X-Request-Id"), got.RequestID)
	assert.True(t, got.Metrics.OK)
	assert.Equal(t, "BUY", got.Rating.Rating)
	assert.Equal(t, 80, got.Rating.Score)
	assert.Len(t, got.Rating.Components, 4)
	assert.Contains(t, got.Analysis, "Corporate Analyst Report: MSFT")
	assert.Equal(t, "MSFT_report.docx", got.Document.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", got.Document.ContentType)
	assert.Contains(t, documentXML(t, got.Document.Data), "Investment Rating: BUY  |  Score: 80 / 100")
}

func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	t.Fatal("word/document.xml not found")
	return ""
}

func TestAnalyze_DocumentMatchesDisplayedRating(t *testing.T) {
	data := &oneShotData{Provider: marketdata.NewFileProvider("../../core/marketdata/testdata")}
	f := newFixtureWith(t, data)

	rec := f.do(t, http.MethodPost, AnalyzePath, `{"ticker": "MSFT", "format": "pdf"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Analysis string `json:"analysis"`
		Rating   struct {
			Rating string `json:"rating"`
		} `json:"rating"`
		Document struct {
			Filename string `json:"filename"`
			Data     []byte `json:"data"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "BUY", got.Rating.Rating)
	assert.Equal(t, "MSFT_report.pdf", got.Document.Filename)
	assert.True(t, bytes.HasPrefix(got.Document.Data, []byte("%PDF")))

	// The narrative is written from the displayed analysis; the failing
	// provider is never asked again.
	body, err := json.Marshal(map[string]string{"ticker": "msft", "analysis": got.Analysis})
	require.NoError(t, err)
	rec = f.do(t, http.MethodPost, NarrativePath, string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int32(1), data.statementCalls.Load())

	rec = f.do(t, http.MethodPost, AnalyzePath, `{"ticker": "MSFT", "format": "rtf"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(1), data.statementCalls.Load())
}

func TestAnalyze_BadInput(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, AnalyzePath, `{"ticker": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "ticker is required"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, AnalyzePath, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_NoStatements(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, AnalyzePath, `{"ticker": "EMPTY"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":{"rating":"N/A","score":0,"components":{}}`)
	assert.Contains(t, rec.Body.String(), "Could not retrieve financial statements for EMPTY.")
}

func TestReportDownload(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/report/aapl", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="AAPL_report.docx"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, documentXML(t, rec.Body.Bytes()), "Investment Rating: HOLD")

	rec = f.do(t, http.MethodGet, "/api/report/AAPL?format=pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = f.do(t, http.MethodGet, "/api/report/AAPL?format=xls", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNarrative(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, NarrativePath, `{"ticker": "MSFT"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Report string `json:"report"`
		HTML   string `json:"html"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, strings.HasPrefix(got.Report, "## 1. Executive Summary"))
	assert.Contains(t, got.HTML, "<strong>Buy</strong>")
	assert.NotContains(t, got.HTML, "<script>")

	rec = f.do(t, http.MethodPost, NarrativePath, `{"ticker": "MSFT", "format": "docx"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="equity_research_report.docx"`, rec.Header().Get("Content-Disposition"))
}

func TestNarrative_ProviderErrors(t *testing.T) {
	f := newFixture(t)

	f.provider.err = errors.New("upstream 500")
	rec := f.do(t, http.MethodPost, NarrativePath, `{"ticker": "MSFT"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	f.provider.err = llm.ErrMissingAPIKey
	rec = f.do(t, http.MethodPost, NarrativePath, `{"ticker": "MSFT"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConfigEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active_provider": "gemini", "available": ["deepseek", "gemini"], "market_data": "file"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/config/switch", `{"provider": "deepseek"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deepseek", f.agents.GetActiveProvider())

	rec = f.do(t, http.MethodPost, "/api/config/switch", `{"provider": "grok"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPageHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/?ticker=msft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="MSFT"`)
	assert.Contains(t, rec.Body.String(), "Analyze")

	rec = f.do(t, http.MethodGet, "/healthz", "")
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())

	f.do(t, http.MethodPost, AnalyzePath, `{"ticker": "AAPL"}`)
	rec = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `analyst_analyses_total{rating="HOLD"} 1`)
}
