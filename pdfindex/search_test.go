package pdfindex

import (
	"testing"

	"github.com/ledongthuc/pdf"
)

// glyphs lays out a string as one positioned glyph per rune starting at
// (x, baselineY) with fixed width and font size.
func glyphs(s string, x, baselineY, w, fontSize float64) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for _, r := range s {
		out = append(out, pdf.Text{
			S:        string(r),
			X:        x,
			Y:        baselineY,
			W:        w,
			FontSize: fontSize,
		})
		x += w
	}
	return out
}

const pageH = 842.0 // A4 height in points

func TestSearchFindsLiteralWithBox(t *testing.T) {
	texts := glyphs("Question Number : 12 Question Id : 4401", 50, 700, 6, 10)
	rows := buildRows(texts, pageH)

	box, ok := searchRows(rows, "Question Number : 12")
	if !ok {
		t.Fatal("literal not found")
	}
	if box.X0 != 50 {
		t.Errorf("X0 = %f, want 50", box.X0)
	}
	// "QuestionNumber:12" is 17 compact glyphs of width 6, but the match
	// spans the original spaced layout: last matched glyph is the '2' of
	// "12". Its x1 must bound the box.
	if box.X1 <= box.X0 {
		t.Errorf("degenerate box: %+v", box)
	}
	// Baseline 700, font 10 => top-left-origin band [132, 142].
	if box.Y0 != pageH-700-10 || box.Y1 != pageH-700 {
		t.Errorf("Y band = [%f, %f], want [%f, %f]", box.Y0, box.Y1, pageH-700-10, pageH-700)
	}
}

func TestSearchIgnoresSpacingDifferences(t *testing.T) {
	// PDF glyph streams often lose or mangle inter-word spacing.
	texts := glyphs("QuestionNumber:7", 10, 500, 5, 9)
	rows := buildRows(texts, pageH)

	if _, ok := searchRows(rows, "Question Number : 7"); !ok {
		t.Error("spacing-normalized search must match")
	}
}

func TestSearchMissReturnsFalse(t *testing.T) {
	texts := glyphs("Question Number : 3", 10, 500, 5, 9)
	rows := buildRows(texts, pageH)

	if _, ok := searchRows(rows, "Question Number : 4"); ok {
		t.Error("unexpected match for absent literal")
	}
}

func TestBuildRowsGroupsByBaseline(t *testing.T) {
	var texts []pdf.Text
	texts = append(texts, glyphs("First row here", 10, 700, 5, 9)...)
	texts = append(texts, glyphs("Second row below", 10, 680, 5, 9)...)
	// Slight baseline jitter stays in the same row.
	texts = append(texts, glyphs("tail", 100, 698.5, 5, 9)...)

	rows := buildRows(texts, pageH)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Rows are ordered top of page first (larger baseline Y first).
	if rows[0].compact != "Firstrowheretail" {
		t.Errorf("row 0 compact = %q", rows[0].compact)
	}
	if rows[1].compact != "Secondrowbelow" {
		t.Errorf("row 1 compact = %q", rows[1].compact)
	}
}

func TestBuildRowsSkipsWhitespaceGlyphs(t *testing.T) {
	texts := []pdf.Text{
		{S: " ", X: 10, Y: 500, W: 3, FontSize: 9},
		{S: "\n", X: 13, Y: 500, W: 0, FontSize: 9},
	}
	rows := buildRows(texts, pageH)
	if len(rows) != 0 {
		t.Errorf("whitespace-only content produced %d rows", len(rows))
	}
}

func TestSearchFirstOccurrenceWins(t *testing.T) {
	var texts []pdf.Text
	texts = append(texts, glyphs("Question Id : 9", 10, 700, 5, 9)...)
	texts = append(texts, glyphs("Question Id : 9", 10, 300, 5, 9)...)

	box, ok := searchRows(buildRows(texts, pageH), "Question Id : 9")
	if !ok {
		t.Fatal("literal not found")
	}
	// The higher occurrence (baseline 700) must win.
	if box.Y1 != pageH-700 {
		t.Errorf("matched lower occurrence: %+v", box)
	}
}
