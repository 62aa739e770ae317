package export

import (
	"fmt"
	"io"

	"corporate_analyst/pkg/core/rating"

	"github.com/go-pdf/fpdf"
)

// WriteRatingPDF writes the rating document as an A4 PDF with the same
// structure as WriteRatingDocx.
func WriteRatingPDF(w io.Writer, ticker string, r rating.Result, analysisText string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(Title(ticker), true)
	pdf.AddPage()

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(Title(ticker)), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, tr(RatingLine(r)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Courier", "", 9)
	for _, line := range Lines(analysisText) {
		if line == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 4, tr(line), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return nil
}
