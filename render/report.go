package render

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/exambank/exambank/region"
)

// WriteReport writes the plain-text extraction summary. Everything except
// the embedded timestamp is a pure function of the inputs, so re-runs over
// the same PDF produce byte-identical reports modulo that line.
func WriteReport(outputDir, pdfPath string, questions []region.Extracted, now time.Time) (string, error) {
	var b strings.Builder

	b.WriteString("PDF QUESTION EXTRACTION REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "PDF File: %s\n", pdfPath)
	fmt.Fprintf(&b, "Extraction Time: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Questions: %d\n", len(questions))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, q := range questions {
		fmt.Fprintf(&b, "Q%03d | Page %d\n", q.SequenceNumber, q.Page)
		fmt.Fprintf(&b, "ID: %s\n", q.ExternalID)
		fmt.Fprintf(&b, "File: %s\n", q.Filename)
		fmt.Fprintf(&b, "Text: %s\n", q.Sentence)
		fmt.Fprintf(&b, "Text Source: %s\n", q.SentenceSource)
		b.WriteString(strings.Repeat("-", 30) + "\n\n")
	}

	path := filepath.Join(outputDir, "extraction_report.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// WriteViewer writes a self-contained HTML gallery referencing the cropped
// images by relative path, so the output directory can be browsed as-is.
func WriteViewer(outputDir string, questions []region.Extracted, now time.Time) (string, error) {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html><head>
<title>Question Extraction Results</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; background: #f5f5f5; }
.container { max-width: 1000px; margin: 0 auto; }
.header { background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
.question { background: white; margin: 15px 0; border-radius: 8px; padding: 15px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.question img { max-width: 100%; height: auto; border: 1px solid #ddd; border-radius: 4px; }
h1 { color: #333; }
</style>
</head><body>
<div class="container">
<div class="header">
<h1>Question Extraction Results</h1>
`)
	fmt.Fprintf(&b, "<p><strong>Total Questions:</strong> %d</p>\n", len(questions))
	fmt.Fprintf(&b, "<p><strong>Extraction Time:</strong> %s</p>\n</div>\n", now.Format("2006-01-02 15:04:05"))

	for _, q := range questions {
		fmt.Fprintf(&b, `
<div class="question">
<h3>Question #%03d - Page %d</h3>
<p><strong>ID:</strong> %s</p>
<p><strong>Question:</strong> %s</p>
<img src="%s" alt="Question %d">
</div>
`, q.SequenceNumber, q.Page, html.EscapeString(q.ExternalID),
			html.EscapeString(q.Sentence), html.EscapeString(q.Filename), q.SequenceNumber)
	}

	b.WriteString("</div></body></html>")

	path := filepath.Join(outputDir, "viewer.html")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing viewer: %w", err)
	}
	return path, nil
}
