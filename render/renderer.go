// Package render assembles solved questions into a question bank document
// and writes the per-run extraction report and gallery viewer. Output
// backends share the Renderer interface and are selected by configuration.
package render

import (
	"fmt"

	"github.com/exambank/exambank/solver"
)

// Renderer turns an ordered sequence of solutions into one document and
// returns the path it wrote.
type Renderer interface {
	Render(solutions []solver.Solution) (string, error)
}

// New returns the renderer for the configured kind: "latex" writes a
// combined LaTeX document, "html" additionally converts it to a MathJax
// document suitable for browser print-to-PDF. Empty kind means "html".
func New(kind, outputDir string) (Renderer, error) {
	switch kind {
	case "latex":
		return &latexRenderer{dir: outputDir}, nil
	case "", "html":
		return &htmlRenderer{dir: outputDir}, nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", kind)
	}
}
