// Package export writes analysis results as Word and PDF documents.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"corporate_analyst/pkg/core/rating"
)

const (
	FormatDocx = "docx"
	FormatPDF  = "pdf"

	// NarrativeDefaultName is the file name used for narrative reports.
	NarrativeDefaultName = "equity_research_report.docx"
)

// DefaultName returns "{ticker}_report.{ext}" for a rating document.
func DefaultName(ticker, format string) string {
	if format == "" {
		format = FormatDocx
	}
	return fmt.Sprintf("%s_report.%s", strings.ToUpper(strings.TrimSpace(ticker)), format)
}

// Title is the heading of the rating document.
func Title(ticker string) string {
	return fmt.Sprintf("%s – Corporate Analyst Report", strings.ToUpper(ticker))
}

// RatingLine is the summary paragraph under the title.
func RatingLine(r rating.Result) string {
	return fmt.Sprintf("Investment Rating: %s  |  Score: %d / %d", r.Rating, r.Score, rating.MaxScore)
}

// Lines splits a report into paragraphs. Blank lines are kept, trailing ones
// included; only the final line terminator is dropped.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// WriteFunc renders a document into w.
type WriteFunc func(w io.Writer) error

// SaveFile renders a document to dir/name and returns the full path. The
// directory is created when missing.
func SaveFile(dir, name string, write WriteFunc) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name is required")
	}
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
