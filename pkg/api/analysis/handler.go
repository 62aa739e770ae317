package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"corporate_analyst/pkg/api/respond"
	"corporate_analyst/pkg/core/analyst"
	"corporate_analyst/pkg/core/calc"
	"corporate_analyst/pkg/core/export"
	"corporate_analyst/pkg/core/rating"

	"github.com/gorilla/mux"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	pdfContentType  = "application/pdf"
)

type AnalyzeRequest struct {
	Ticker string `json:"ticker"`
	// Format of the attached rating document: "docx" (default) or "pdf".
	Format string `json:"format,omitempty"`
}

// Document is a rendered rating document. Data is base64 in JSON.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type AnalyzeResponse struct {
	RequestID string           `json:"request_id,omitempty"`
	Ticker    string           `json:"ticker"`
	Analysis  string           `json:"analysis"`
	Metrics   calc.CoreMetrics `json:"metrics"`
	Rating    rating.Result    `json:"rating"`
	Degraded  []string         `json:"degraded,omitempty"`
	Document  *Document        `json:"document"`
}

// Handler serves the Analyze action and the rating document download.
type Handler struct {
	Svc *analyst.Service
}

func NewHandler(svc *analyst.Service) *Handler {
	return &Handler{Svc: svc}
}

// HandleAnalyze runs analysis, metrics and rating for one ticker and
// attaches the rating document rendered from that same result.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "POST") {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	format, err := documentFormat(req.Format)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.Analyze(r.Context(), req.Ticker)
	if err != nil {
		respond.Error(w, r, statusFor(err), err)
		return
	}

	doc, err := RenderDocument(res, format)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, AnalyzeResponse{
		RequestID: res.RequestID,
		Ticker:    res.Ticker,
		Analysis:  res.Analysis,
		Metrics:   res.Metrics,
		Rating:    res.Rating,
		Degraded:  res.Degraded,
		Document:  doc,
	})
}

// HandleReport analyzes {ticker} once and streams the rating document. It
// is the standalone export for scripts; the page uses the document attached
// to the Analyze response.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	format, err := documentFormat(r.URL.Query().Get("format"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.Analyze(r.Context(), mux.Vars(r)["ticker"])
	if err != nil {
		respond.Error(w, r, statusFor(err), err)
		return
	}

	doc, err := RenderDocument(res, format)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, err)
		return
	}
	respond.Attachment(w, doc.ContentType, doc.Filename, bytes.NewBuffer(doc.Data))
}

// RenderDocument writes the rating document for res without fetching again.
func RenderDocument(res *analyst.Result, format string) (*Document, error) {
	var buf bytes.Buffer
	doc := &Document{Filename: export.DefaultName(res.Ticker, format)}

	var err error
	switch format {
	case export.FormatPDF:
		doc.ContentType = pdfContentType
		err = export.WriteRatingPDF(&buf, res.Ticker, res.Rating, res.Analysis)
	case export.FormatDocx:
		doc.ContentType = docxContentType
		err = export.WriteRatingDocx(&buf, res.Ticker, res.Rating, res.Analysis)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	doc.Data = buf.Bytes()
	return doc, nil
}

func documentFormat(format string) (string, error) {
	switch format {
	case "":
		return export.FormatDocx, nil
	case export.FormatDocx, export.FormatPDF:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analyst.ErrEmptyTicker):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
