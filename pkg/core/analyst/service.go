// Package analyst runs one ticker through fetch, analysis, metrics and
// rating, and optionally on to the narrative report.
package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"corporate_analyst/pkg/core/calc"
	"corporate_analyst/pkg/core/logging"
	"corporate_analyst/pkg/core/marketdata"
	"corporate_analyst/pkg/core/rating"
	"corporate_analyst/pkg/core/report"
	"corporate_analyst/pkg/core/store"
	"corporate_analyst/pkg/models"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyTicker       = errors.New("ticker is required")
	ErrNarrativeDisabled = errors.New("narrative generation is not configured")
)

// Result is the outcome of one analysis.
type Result struct {
	RequestID string            `json:"request_id,omitempty"`
	Ticker    string            `json:"ticker"`
	Analysis  string            `json:"analysis"`
	Full      calc.FullAnalysis `json:"full"`
	Metrics   calc.CoreMetrics  `json:"metrics"`
	Rating    rating.Result     `json:"rating"`
	// Degraded lists the upstream sources that failed and were treated as
	// empty.
	Degraded []string `json:"degraded,omitempty"`
}

// NarrativeResult is a generated equity research report.
type NarrativeResult struct {
	Ticker   string `json:"ticker"`
	Report   string `json:"report"`
	Analysis string `json:"analysis"`
}

// NarrativeGenerator writes the long-form report. *narrative.Writer
// satisfies it.
type NarrativeGenerator interface {
	Generate(ctx context.Context, ticker, analysisText string) (string, error)
}

// RatingRecorder stores produced ratings. *store.RatingLog satisfies it.
type RatingRecorder interface {
	Append(ctx context.Context, e store.Entry) error
}

type Service struct {
	data      marketdata.Provider
	narrative NarrativeGenerator
	ratings   RatingRecorder
	metrics   *Metrics
}

type Option func(*Service)

func WithNarrative(g NarrativeGenerator) Option {
	return func(s *Service) { s.narrative = g }
}

func WithRatingLog(r RatingRecorder) Option {
	return func(s *Service) { s.ratings = r }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(data marketdata.Provider, opts ...Option) *Service {
	s := &Service{data: data}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// NormalizeTicker trims and upper-cases a ticker.
func NormalizeTicker(ticker string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return "", ErrEmptyTicker
	}
	return t, nil
}

// Analyze fetches the ticker once and derives the report text, core metrics
// and rating from the same data. Upstream failures degrade to empty data;
// only an empty ticker or a cancelled context is an error.
func (s *Service) Analyze(ctx context.Context, ticker string) (*Result, error) {
	ticker, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	logger := zerolog.Ctx(ctx).With().Str("ticker", ticker).Str("provider", s.data.Name()).Logger()
	ctx = logger.WithContext(ctx)

	res := &Result{RequestID: logging.RequestID(ctx), Ticker: ticker}

	logger.Debug().Msg("fetching company info")
	info, err := s.data.Info(ctx, ticker)
	if err != nil {
		s.upstreamFailed(ctx, res, SourceInfo, err)
		info = models.CompanyInfo{}
	}

	logger.Debug().Msg("fetching statements")
	st, err := s.data.Statements(ctx, ticker)
	if err != nil {
		s.upstreamFailed(ctx, res, SourceStatements, err)
	}
	if st == nil {
		st = &marketdata.Statements{}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Full = calc.ComputeFullAnalysis(ticker, calc.Snapshot{
		Info:     info,
		Income:   st.Income,
		Balance:  st.Balance,
		CashFlow: st.CashFlow,
	})
	res.Analysis = report.BuildText(res.Full)
	res.Metrics = calc.ComputeCoreMetrics(info, st.Income, st.Balance)
	res.Rating = rating.Score(res.Metrics)

	s.metrics.Analyses.WithLabelValues(string(res.Rating.Rating)).Inc()
	s.metrics.Duration.Observe(time.Since(start).Seconds())
	logger.Info().
		Str("rating", string(res.Rating.Rating)).
		Int("score", res.Rating.Score).
		Strs("degraded", res.Degraded).
		Msg("analysis complete")

	s.record(ctx, res)
	return res, nil
}

// Narrative analyzes the ticker once and writes the report from that
// analysis.
func (s *Service) Narrative(ctx context.Context, ticker string) (*NarrativeResult, error) {
	if s.narrative == nil {
		return nil, ErrNarrativeDisabled
	}
	res, err := s.Analyze(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return s.NarrativeFor(ctx, res.Ticker, res.Analysis)
}

// NarrativeFor writes the report from analysis text already produced by
// Analyze. Nothing is fetched, so the report matches the rating the caller
// is showing.
func (s *Service) NarrativeFor(ctx context.Context, ticker, analysis string) (*NarrativeResult, error) {
	if s.narrative == nil {
		return nil, ErrNarrativeDisabled
	}
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	text, err := s.narrative.Generate(ctx, t, analysis)
	if err != nil {
		s.metrics.UpstreamFailures.WithLabelValues(SourceNarrative).Inc()
		return nil, err
	}
	return &NarrativeResult{Ticker: t, Report: text, Analysis: analysis}, nil
}

func (s *Service) upstreamFailed(ctx context.Context, res *Result, source string, err error) {
	s.metrics.UpstreamFailures.WithLabelValues(source).Inc()
	res.Degraded = append(res.Degraded, source)
	zerolog.Ctx(ctx).Warn().Err(err).Str("source", source).Msg("upstream fetch failed, continuing without it")
}

func (s *Service) record(ctx context.Context, res *Result) {
	if s.ratings == nil {
		return
	}
	err := s.ratings.Append(ctx, store.Entry{
		RequestID:  res.RequestID,
		Ticker:     res.Ticker,
		Rating:     string(res.Rating.Rating),
		Score:      res.Rating.Score,
		Components: res.Rating.Components,
	})
	if err != nil {
		s.metrics.UpstreamFailures.WithLabelValues(SourceRatingLog).Inc()
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to log rating")
	}
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: %s (%d)", r.Ticker, r.Rating.Rating, r.Rating.Score)
}
