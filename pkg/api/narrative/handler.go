package narrative

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"corporate_analyst/pkg/api/respond"
	"corporate_analyst/pkg/core/analyst"
	"corporate_analyst/pkg/core/export"
	"corporate_analyst/pkg/core/llm"
	corenarrative "corporate_analyst/pkg/core/narrative"
)

type Request struct {
	Ticker string `json:"ticker"`
	// Analysis is the text returned by /api/analyze. When set the report is
	// written from it and no market data is fetched.
	Analysis string `json:"analysis,omitempty"`
	// Format is "json" (default) or "docx".
	Format string `json:"format"`
}

type Response struct {
	Ticker string `json:"ticker"`
	Report string `json:"report"`
	HTML   string `json:"html"`
}

type Handler struct {
	Svc *analyst.Service
}

func NewHandler(svc *analyst.Service) *Handler {
	return &Handler{Svc: svc}
}

// HandleNarrative generates the long-form equity research report.
func (h *Handler) HandleNarrative(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "POST") {
		return
	}

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Format != "" && req.Format != "json" && req.Format != export.FormatDocx {
		respond.Error(w, r, http.StatusBadRequest, fmt.Errorf("unsupported format %q", req.Format))
		return
	}

	var (
		out *analyst.NarrativeResult
		err error
	)
	if strings.TrimSpace(req.Analysis) != "" {
		out, err = h.Svc.NarrativeFor(r.Context(), req.Ticker, req.Analysis)
	} else {
		out, err = h.Svc.Narrative(r.Context(), req.Ticker)
	}
	if err != nil {
		respond.Error(w, r, statusFor(err), err)
		return
	}

	if req.Format == export.FormatDocx {
		var buf bytes.Buffer
		if err := export.WriteNarrativeDocx(&buf, out.Report); err != nil {
			respond.Error(w, r, http.StatusInternalServerError, err)
			return
		}
		respond.Attachment(w, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", export.NarrativeDefaultName, &buf)
		return
	}

	html, err := corenarrative.RenderHTML(out.Report)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, Response{Ticker: out.Ticker, Report: out.Report, HTML: html})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analyst.ErrEmptyTicker):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrMissingAPIKey), errors.Is(err, analyst.ErrNarrativeDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
