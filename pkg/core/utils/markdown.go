package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips an outer code fence that models like to wrap whole
// answers in, e.g. ```markdown ... ```.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || len(cleaned) < 6 {
		return cleaned
	}

	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimPrefix(cleaned, "```")
	// Drop the info string ("markdown", "md", ...) on the opening fence line.
	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 && !strings.Contains(cleaned[:nl], " ") {
		cleaned = cleaned[nl+1:]
	}
	return strings.TrimSpace(cleaned)
}

// HasHeadings reports whether the markdown contains at least one heading,
// which is how a structured report is told apart from a refusal or a
// one-line answer.
func HasHeadings(input string) bool {
	doc := goldmark.DefaultParser().Parse(text.NewReader([]byte(input)))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindHeading {
			return true
		}
	}
	return false
}
