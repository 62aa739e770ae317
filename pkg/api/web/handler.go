// Package web serves the single-page Analyze UI and the health check.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"corporate_analyst/pkg/api/respond"
	"corporate_analyst/pkg/core/rating"

	"github.com/rs/zerolog"
)

//go:embed templates/index.html
var templates embed.FS

var index = template.Must(template.ParseFS(templates, "templates/index.html"))

type page struct {
	Title         string
	Ticker        string
	AnalyzePath   string
	NarrativePath string
	MaxScore      int
}

type Handler struct {
	AnalyzePath   string
	NarrativePath string
}

func NewHandler(analyzePath, narrativePath string) *Handler {
	return &Handler{AnalyzePath: analyzePath, NarrativePath: narrativePath}
}

// HandleIndex renders the page. ?ticker= pre-fills the input.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := index.Execute(w, page{
		Title:         "Corporate Analyst",
		Ticker:        strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker"))),
		AnalyzePath:   h.AnalyzePath,
		NarrativePath: h.NarrativePath,
		MaxScore:      rating.MaxScore,
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render index")
	}
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
