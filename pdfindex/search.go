package pdfindex

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// rowTolerance is the Y distance (in points) within which glyphs are
// grouped into the same text row.
const rowTolerance = 3.0

// textRow is one horizontal line of glyphs with its vertical extent in
// top-left-origin coordinates.
type textRow struct {
	y0, y1 float64
	glyphs []glyphBox
	// compact is the row's text with all whitespace removed; offsets maps
	// each compact byte to the glyph it came from.
	compact string
	offsets []int
}

type glyphBox struct {
	x0, x1 float64
}

// buildRows groups positioned glyphs into top-to-bottom rows. ledongthuc
// reports baseline Y in bottom-left-origin coordinates; rows are converted
// to top-left origin using the page height, approximating the glyph box as
// one font size above the baseline.
func buildRows(texts []pdf.Text, pageHeight float64) []textRow {
	// Cluster by baseline Y.
	type cluster struct {
		y      float64
		glyphs []pdf.Text
	}
	var clusters []cluster

	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		placed := false
		for ci := range clusters {
			if abs(clusters[ci].y-t.Y) <= rowTolerance {
				clusters[ci].glyphs = append(clusters[ci].glyphs, t)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, cluster{y: t.Y, glyphs: []pdf.Text{t}})
		}
	}

	// Top of page first: larger baseline Y means higher on the page.
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].y > clusters[j].y })

	rows := make([]textRow, 0, len(clusters))
	for _, c := range clusters {
		sort.Slice(c.glyphs, func(i, j int) bool { return c.glyphs[i].X < c.glyphs[j].X })

		row := textRow{y0: pageHeight, y1: 0}
		var compact strings.Builder
		for _, g := range c.glyphs {
			top := pageHeight - g.Y - g.FontSize
			bottom := pageHeight - g.Y
			if top < row.y0 {
				row.y0 = top
			}
			if bottom > row.y1 {
				row.y1 = bottom
			}

			gi := len(row.glyphs)
			row.glyphs = append(row.glyphs, glyphBox{x0: g.X, x1: g.X + g.W})

			for _, r := range g.S {
				if unicode.IsSpace(r) {
					continue
				}
				start := compact.Len()
				compact.WriteRune(r)
				for b := start; b < compact.Len(); b++ {
					row.offsets = append(row.offsets, gi)
				}
			}
		}
		if compact.Len() == 0 {
			continue
		}
		if row.y0 < 0 {
			row.y0 = 0
		}
		row.compact = compact.String()
		rows = append(rows, row)
	}

	return rows
}

// searchRows finds the first row containing the literal (whitespace
// ignored on both sides) and returns the matched span's bounding box.
func searchRows(rows []textRow, literal string) (Rect, bool) {
	needle := stripSpace(literal)
	if needle == "" {
		return Rect{}, false
	}

	for _, row := range rows {
		at := strings.Index(row.compact, needle)
		if at < 0 {
			continue
		}

		first := row.glyphs[row.offsets[at]]
		last := row.glyphs[row.offsets[at+len(needle)-1]]

		return Rect{
			X0: first.x0,
			Y0: row.y0,
			X1: last.x1,
			Y1: row.y1,
		}, true
	}

	return Rect{}, false
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
