package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exambank/exambank/solver"
)

const latexHeader = `\documentclass[12pt]{article}
\usepackage[utf8]{inputenc}
\usepackage{amsmath}
\usepackage{amssymb}
\usepackage{amsthm}
\usepackage{geometry}
\usepackage{enumitem}

\geometry{a4paper, margin=1in}

\title{\textbf{Complete Question Bank}\\
\large{Mathematics \& Statistics Solutions}}
\author{\textbf{AI-Powered Question Solver}}
\date{\today}

\begin{document}
\maketitle
\newpage

`

const latexFooter = `
\vspace{2em}
\hrule
\vspace{1em}
\begin{center}
\textbf{End of Question Bank}\\
\textit{Generated by AI-Powered Question Solver}
\end{center}
\end{document}`

// latexRenderer combines per-question solutions into one compilable
// document.
type latexRenderer struct {
	dir string
}

func (r *latexRenderer) Render(solutions []solver.Solution) (string, error) {
	path := filepath.Join(r.dir, "complete_question_bank.tex")
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(combineLatex(solutions)), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// combineLatex wraps each solution in a section and surrounds the set with
// the document preamble and footer.
func combineLatex(solutions []solver.Solution) string {
	var b strings.Builder
	b.WriteString(latexHeader)
	for _, sol := range solutions {
		fmt.Fprintf(&b, "\\section*{Question %d}\n", sol.QuestionNumber)
		b.WriteString(sol.Latex)
		b.WriteString("\n\\newpage\n")
	}
	b.WriteString(latexFooter)
	return b.String()
}
