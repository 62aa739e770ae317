package export

import (
	"fmt"
	"io"

	"corporate_analyst/pkg/core/rating"

	docx "github.com/fumiama/go-docx"
)

const (
	bodyFont = "Arial"
	// half-points
	bodySize  = "22"
	titleSize = "32"

	// TitleStyle is the paragraph style id of the document title.
	TitleStyle = "Heading1"
)

// WriteRatingDocx writes the rating document: a centered Heading1 title, the
// rating line, a blank paragraph, then one paragraph per line of analysisText.
// The run keeps explicit bold and size since the default theme carries no
// Heading1 definition.
func WriteRatingDocx(w io.Writer, ticker string, r rating.Result, analysisText string) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().Style(TitleStyle).Justification("center").
		AddText(Title(ticker)).Bold().Size(titleSize)
	doc.AddParagraph().AddText(RatingLine(r)).Bold()
	doc.AddParagraph()

	for _, line := range Lines(analysisText) {
		p := doc.AddParagraph()
		if line != "" {
			p.AddText(line)
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write docx: %w", err)
	}
	return nil
}

// WriteNarrativeDocx writes report one paragraph per line in Arial 11pt.
func WriteNarrativeDocx(w io.Writer, report string) error {
	doc := docx.New().WithDefaultTheme()

	for _, line := range Lines(report) {
		p := doc.AddParagraph()
		if line == "" {
			continue
		}
		p.AddText(line).Font(bodyFont, bodyFont, bodyFont, "default").Size(bodySize)
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write docx: %w", err)
	}
	return nil
}
