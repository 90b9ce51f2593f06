package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/exambank/exambank/region"
	"github.com/exambank/exambank/segment"
	"github.com/exambank/exambank/solver"
)

func sampleSolutions() []solver.Solution {
	return []solver.Solution{
		{QuestionNumber: 1, Latex: `\textbf{Question 1:} What is $2+2$?

\textbf{Solution:}
\begin{enumerate}
\item \textbf{Step 1:} Add the numbers.
\end{enumerate}

\textbf{Answer:} 4`, Source: solver.SourceModel},
		{QuestionNumber: 2, Latex: `\textbf{Question 2:} Simulated.`, Source: solver.SourceSimulated},
	}
}

func TestLatexRendererCombines(t *testing.T) {
	dir := t.TempDir()
	r, err := New("latex", dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := r.Render(sampleSolutions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if filepath.Base(path) != "complete_question_bank.tex" {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)

	for _, want := range []string{
		`\documentclass[12pt]{article}`,
		`\section*{Question 1}`,
		`\section*{Question 2}`,
		`\textbf{Question 1:} What is $2+2$?`,
		`\end{document}`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestHTMLRendererConverts(t *testing.T) {
	dir := t.TempDir()
	r := &htmlRenderer{dir: dir, now: func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	}}

	path, err := r.Render(sampleSolutions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)

	for _, want := range []string{
		"mathjax@3",
		`<div class="question-title">Question 1</div>`,
		"<strong>Question 1:</strong>",
		"<ol>",
		"<li>",
		"$2+2$", // inline math passes through for MathJax
		"2025-03-01 12:00:00",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("html missing %q", want)
		}
	}
	for _, banned := range []string{`\documentclass`, `\begin{enumerate}`, `\textbf`} {
		if strings.Contains(doc, banned) {
			t.Errorf("html still contains %q", banned)
		}
	}
}

func TestNewRendererUnknownKind(t *testing.T) {
	if _, err := New("weasyprint", t.TempDir()); err == nil {
		t.Error("expected error for unknown renderer kind")
	}
}

func sampleExtracted() []region.Extracted {
	return []region.Extracted{
		{SequenceNumber: 1, ExternalID: "101", Page: 1,
			Sentence: "What is the mean?", SentenceSource: segment.SourcePattern,
			Filename: "Q001_P1_What_is_the_mean.png"},
		{SequenceNumber: 3, ExternalID: "103", Page: 2,
			Sentence: "Question block text...", SentenceSource: segment.SourcePlaceholder,
			Filename: "Q003_P2_Question_block_text.png"},
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	path, err := WriteReport(dir, "/papers/exam.pdf", sampleExtracted(), now)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	data, _ := os.ReadFile(path)
	report := string(data)

	for _, want := range []string{
		"PDF File: /papers/exam.pdf",
		"Total Questions: 2",
		"Q001 | Page 1",
		"Q003 | Page 2",
		"Text Source: pattern",
		"Text Source: placeholder",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
	// Q002 was not extracted; the report makes the gap diffable.
	if strings.Contains(report, "Q002") {
		t.Error("report must not invent unextracted questions")
	}
}

func TestWriteReportIdempotentModuloTimestamp(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	p1, err := WriteReport(dir, "exam.pdf", sampleExtracted(), now)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(p1)

	p2, err := WriteReport(dir, "exam.pdf", sampleExtracted(), now)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(p2)

	if string(first) != string(second) {
		t.Error("re-running extraction must produce byte-identical report text")
	}
}

func TestWriteViewer(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteViewer(dir, sampleExtracted(), time.Now())
	if err != nil {
		t.Fatalf("WriteViewer: %v", err)
	}
	data, _ := os.ReadFile(path)
	doc := string(data)

	if !strings.Contains(doc, `src="Q001_P1_What_is_the_mean.png"`) {
		t.Error("viewer must reference images by relative path")
	}
	if !strings.Contains(doc, "Question #003") {
		t.Error("viewer missing question heading")
	}
}
