// Package server wires the API handlers into a router.
package server

import (
	"net/http"

	"corporate_analyst/pkg/api/analysis"
	"corporate_analyst/pkg/api/config"
	"corporate_analyst/pkg/api/narrative"
	"corporate_analyst/pkg/api/web"
	"corporate_analyst/pkg/core/agent"
	"corporate_analyst/pkg/core/analyst"
	"corporate_analyst/pkg/core/logging"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	AnalyzePath   = "/api/analyze"
	NarrativePath = "/api/narrative"
)

type Deps struct {
	Service    *analyst.Service
	Agents     *agent.Manager
	MarketData string
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter returns the full HTTP surface wrapped in the access log.
func NewRouter(d Deps) http.Handler {
	router := mux.NewRouter()

	page := web.NewHandler(AnalyzePath, NarrativePath)
	router.HandleFunc("/", page.HandleIndex).Methods(http.MethodGet)
	router.HandleFunc("/healthz", web.HandleHealth).Methods(http.MethodGet)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	an := analysis.NewHandler(d.Service)
	router.HandleFunc(AnalyzePath, an.HandleAnalyze).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/report/{ticker}", an.HandleReport).Methods(http.MethodGet)

	nr := narrative.NewHandler(d.Service)
	router.HandleFunc(NarrativePath, nr.HandleNarrative).Methods(http.MethodPost, http.MethodOptions)

	if d.Agents != nil {
		cfg := config.NewHandler(d.Agents, d.MarketData)
		router.HandleFunc("/api/config", cfg.HandleConfig).Methods(http.MethodGet, http.MethodOptions)
		router.HandleFunc("/api/config/switch", cfg.HandleSwitch).Methods(http.MethodPost, http.MethodOptions)
	}

	return logging.WithLogging(router)
}
