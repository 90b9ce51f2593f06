package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/exambank/exambank/solver"
)

// htmlRenderer converts the combined LaTeX into a self-contained MathJax
// document. The browser's print-to-PDF is the final compilation step, so
// this backend has no external toolchain dependencies.
type htmlRenderer struct {
	dir string
	// now is swappable in tests; the timestamp is the only non-
	// deterministic part of the output.
	now func() time.Time
}

func (r *htmlRenderer) Render(solutions []solver.Solution) (string, error) {
	now := time.Now
	if r.now != nil {
		now = r.now
	}

	path := filepath.Join(r.dir, "complete_question_bank.html")
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	body := latexToHTML(combineLatex(solutions))
	doc := strings.Replace(htmlTemplate, "{CONTENT}", body, 1)
	doc = strings.Replace(doc, "{TIMESTAMP}", now().Format("2006-01-02 15:04:05"), 1)

	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

var latexRewrites = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Strip document structure.
	{regexp.MustCompile(`\\documentclass.*\n`), ""},
	{regexp.MustCompile(`\\usepackage.*\n`), ""},
	{regexp.MustCompile(`\\geometry\{[^}]*\}`), ""},
	{regexp.MustCompile(`\\begin\{document\}`), ""},
	{regexp.MustCompile(`\\end\{document\}`), ""},
	{regexp.MustCompile(`\\maketitle`), ""},
	{regexp.MustCompile(`(?s)\\title\{.*?\}\n`), ""},
	{regexp.MustCompile(`(?s)\\author\{.*?\}\n`), ""},
	{regexp.MustCompile(`(?s)\\date\{.*?\}\n`), ""},
	{regexp.MustCompile(`\\newpage`), `<div class="page-break"></div>`},
	// Sections and inline formatting.
	{regexp.MustCompile(`\\section\*?\{([^}]*)\}`), `<div class="question-title">$1</div>`},
	{regexp.MustCompile(`\\textbf\{([^}]*)\}`), `<strong>$1</strong>`},
	{regexp.MustCompile(`\\textit\{([^}]*)\}`), `<em>$1</em>`},
	// Lists.
	{regexp.MustCompile(`\\begin\{enumerate\}`), "<ol>"},
	{regexp.MustCompile(`\\end\{enumerate\}`), "</ol>"},
	{regexp.MustCompile(`\\begin\{itemize\}`), "<ul>"},
	{regexp.MustCompile(`\\end\{itemize\}`), "</ul>"},
	{regexp.MustCompile(`\\item`), "<li>"},
	// Display math environments become MathJax display math.
	{regexp.MustCompile(`(?s)\\begin\{align\}(.*?)\\end\{align\}`), `$$$$\begin{align}$1\end{align}$$$$`},
	{regexp.MustCompile(`(?s)\\begin\{equation\}(.*?)\\end\{equation\}`), `$$$$$1$$$$`},
	// Breaks and rules. Inline math ($...$) passes through for MathJax.
	{regexp.MustCompile(`\\\\`), "<br>"},
	{regexp.MustCompile(`\\hrule`), "<hr>"},
	{regexp.MustCompile(`\\vspace\{[^}]*\}`), "<br>"},
	{regexp.MustCompile(`\\begin\{center\}`), `<div style="text-align: center;">`},
	{regexp.MustCompile(`\\end\{center\}`), "</div>"},
}

// latexToHTML is a pragmatic converter for the constrained LaTeX the
// solver emits. It makes no attempt at general LaTeX; math stays in
// TeX notation for MathJax.
func latexToHTML(latex string) string {
	out := latex
	for _, rw := range latexRewrites {
		out = rw.re.ReplaceAllString(out, rw.repl)
	}
	return wrapQuestions(out)
}

var questionTitleSplit = regexp.MustCompile(`<div class="question-title">`)

// wrapQuestions surrounds each question-title-led chunk with a styled
// container so page breaks and print styling apply per question.
func wrapQuestions(content string) string {
	parts := questionTitleSplit.Split(content, -1)
	if len(parts) < 2 {
		return `<div class="question">` + content + `</div>`
	}

	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.WriteString(`<div class="question"><div class="question-title">`)
		b.WriteString(part)
		b.WriteString("</div>\n")
	}
	return b.String()
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Complete Question Bank</title>
    <script>
    MathJax = {
        tex: {
            inlineMath: [['$', '$'], ['\\(', '\\)']],
            displayMath: [['$$', '$$'], ['\\[', '\\]']],
            processEscapes: true,
            packages: {'[+]': ['ams', 'color', 'cancel']}
        },
        options: {
            skipHtmlTags: ['script', 'noscript', 'style', 'textarea', 'pre']
        }
    };
    </script>
    <script src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"></script>
    <style>
        body {
            font-family: 'Times New Roman', serif;
            max-width: 800px;
            margin: 0 auto;
            padding: 40px 20px;
            line-height: 1.6;
            color: #333;
            background: #fff;
        }
        .title-page {
            text-align: center;
            margin-bottom: 60px;
            padding: 40px;
            border: 2px solid #2c3e50;
        }
        .question {
            border-left: 6px solid #3498db;
            padding: 25px;
            margin: 30px 0;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            page-break-inside: avoid;
        }
        .question-title {
            color: #2980b9;
            font-size: 1.4em;
            font-weight: bold;
            margin-bottom: 15px;
            border-bottom: 2px solid #3498db;
            padding-bottom: 10px;
        }
        ol, ul { margin: 10px 0; padding-left: 25px; }
        li { margin: 8px 0; }
        .page-break { page-break-before: always; }
        @media print {
            body { max-width: none; margin: 0; font-size: 12pt; }
            .question { page-break-inside: avoid; box-shadow: none; border: 1px solid #ccc; }
            @page { margin: 0.8in; }
        }
    </style>
</head>
<body>
    <div class="title-page">
        <h1>Complete Question Bank</h1>
        <p>Mathematics &amp; Statistics Solutions</p>
        <p><em>Generated: {TIMESTAMP}</em></p>
    </div>

    <div class="page-break"></div>

    {CONTENT}

    <hr>
    <div style="text-align: center; margin-top: 40px;">
        <p><strong>End of Question Bank</strong></p>
        <p><small>To convert to PDF: open in a browser and print to PDF.</small></p>
    </div>
</body>
</html>`
