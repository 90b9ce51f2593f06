// Package pdfindex wraps a decoded PDF behind a page-oriented index:
// per-page plain text, literal substring search returning bounding boxes,
// and clipped rasterization for cropping.
//
// Two collaborators back the index. github.com/ledongthuc/pdf supplies
// positioned glyphs, from which searchable text rows with coordinates are
// built. github.com/gen2brain/go-fitz (MuPDF) supplies plain page text and
// page rendering.
package pdfindex

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Rect is an axis-aligned rectangle in PDF points with a top-left origin:
// Y0 is the top edge, Y1 the bottom edge.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Index provides ordered page access over a single open PDF.
type Index struct {
	doc   *fitz.Document
	file  *os.File
	pages []pageData
}

type pageData struct {
	width  float64
	height float64
	text   string
	rows   []textRow
}

// Open reads and indexes all pages of the PDF at path. The returned Index
// holds open file handles until Close is called.
func Open(path string) (*Index, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF for rendering: %w", err)
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		doc.Close()
		return nil, fmt.Errorf("opening PDF for text: %w", err)
	}

	idx := &Index{doc: doc, file: file}

	numPages := doc.NumPage()
	idx.pages = make([]pageData, 0, numPages)

	for i := 0; i < numPages; i++ {
		bound, err := doc.Bound(i)
		if err != nil {
			idx.Close()
			return nil, fmt.Errorf("page %d bounds: %w", i, err)
		}

		pd := pageData{
			width:  float64(bound.Dx()),
			height: float64(bound.Dy()),
		}

		if text, err := doc.Text(i); err == nil {
			pd.text = text
		}

		// ledongthuc pages are 1-based.
		page := reader.Page(i + 1)
		if !page.V.IsNull() {
			pd.rows = buildRows(page.Content().Text, pd.height)
		}

		idx.pages = append(idx.pages, pd)
	}

	return idx, nil
}

// Close releases the underlying document handles.
func (x *Index) Close() error {
	var err error
	if x.doc != nil {
		err = x.doc.Close()
		x.doc = nil
	}
	if x.file != nil {
		if cerr := x.file.Close(); err == nil {
			err = cerr
		}
		x.file = nil
	}
	return err
}

// NumPages returns the page count.
func (x *Index) NumPages() int { return len(x.pages) }

// PageText returns the plain text of page i (0-based).
func (x *Index) PageText(i int) string {
	if i < 0 || i >= len(x.pages) {
		return ""
	}
	return x.pages[i].text
}

// FullText returns all pages' plain text joined in document order by a
// newline.
func (x *Index) FullText() string {
	parts := make([]string, len(x.pages))
	for i, p := range x.pages {
		parts[i] = p.text
	}
	return strings.Join(parts, "\n")
}

// PageSize returns the width and height of page i in PDF points.
func (x *Index) PageSize(i int) (w, h float64) {
	if i < 0 || i >= len(x.pages) {
		return 0, 0
	}
	return x.pages[i].width, x.pages[i].height
}

// Search finds the first occurrence of the literal string on page i and
// returns its bounding rectangle. Matching ignores spacing differences
// between the needle and the reconstructed glyph stream, so labels like
// "Question Number : 12" match however the PDF spaces them.
func (x *Index) Search(i int, literal string) (Rect, bool) {
	if i < 0 || i >= len(x.pages) {
		return Rect{}, false
	}
	return searchRows(x.pages[i].rows, literal)
}

// RenderRegion rasterizes the clip rectangle of page i at the given scale
// factor (1.0 = 72 DPI). go-fitz renders whole pages only, so the page is
// rendered once and the clip is cut out of the pixmap.
func (x *Index) RenderRegion(i int, clip Rect, scale float64) (image.Image, error) {
	if i < 0 || i >= len(x.pages) {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	if scale <= 0 {
		scale = 1.0
	}

	img, err := x.doc.ImageDPI(i, 72*scale)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", i, err)
	}

	pixClip := image.Rect(
		int(clip.X0*scale), int(clip.Y0*scale),
		int(clip.X1*scale), int(clip.Y1*scale),
	).Intersect(img.Bounds())
	if pixClip.Empty() {
		return nil, fmt.Errorf("clip %+v outside page %d", clip, i)
	}

	return img.SubImage(pixClip), nil
}
