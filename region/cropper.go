package region

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"regexp"

	"github.com/exambank/exambank/pdfindex"
	"github.com/exambank/exambank/segment"
)

// Margins control the crop-rectangle geometry, all in PDF points.
type Margins struct {
	// LeadIn is subtracted above the question header, clamped to 0.
	LeadIn float64
	// Overflow bounds the assumed question height below its header when
	// no next-question anchor exists on the page.
	Overflow float64
	// MinGap is the guaranteed minimum height below the header even when
	// the next header is unexpectedly close.
	MinGap float64
	// Buffer is kept above the next question's header.
	Buffer float64
	// Upscale is the rasterization factor for output images.
	Upscale float64
}

// DefaultMargins mirrors the geometry constants the extractor was tuned
// with: 20pt lead-in, 300pt overflow, 50pt minimum gap, 15pt buffer, 2.5x
// rendering.
func DefaultMargins() Margins {
	return Margins{LeadIn: 20, Overflow: 300, MinGap: 50, Buffer: 15, Upscale: 2.5}
}

// Extracted is the artifact of one successfully cropped block.
type Extracted struct {
	SequenceNumber int
	ExternalID     string
	// Page is 1-based for human consumption.
	Page           int
	Sentence       string
	SentenceSource segment.Source
	Filename       string
	Path           string
}

// Cropper renders a located question region to a PNG file.
type Cropper struct {
	index     PageIndex
	margins   Margins
	outputDir string
}

// NewCropper returns a Cropper writing into outputDir.
func NewCropper(index PageIndex, margins Margins, outputDir string) *Cropper {
	if margins == (Margins{}) {
		margins = DefaultMargins()
	}
	return &Cropper{index: index, margins: margins, outputDir: outputDir}
}

// Crop renders the block's region and writes exactly one image file. Any
// rendering or I/O failure is returned to the caller and affects this
// block only.
func (c *Cropper) Crop(b segment.Block, loc Location) (*Extracted, error) {
	pageW, pageH := c.index.PageSize(loc.Page)
	clip := cropRect(pageW, pageH, loc.Start, loc.End, c.margins)

	img, err := c.index.RenderRegion(loc.Page, clip, c.margins.Upscale)
	if err != nil {
		return nil, fmt.Errorf("rendering question %d: %w", b.SequenceNumber, err)
	}

	filename := fmt.Sprintf("Q%03d_P%d_%s.png", b.SequenceNumber, loc.Page+1, slug(b.Sentence))
	path := filepath.Join(c.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", path, err)
	}

	return &Extracted{
		SequenceNumber: b.SequenceNumber,
		ExternalID:     b.ExternalID,
		Page:           loc.Page + 1,
		Sentence:       b.Sentence,
		SentenceSource: b.SentenceSource,
		Filename:       filename,
		Path:           path,
	}, nil
}

// cropRect computes the vertical crop band. The full page width is always
// used; only the vertical bounds are derived from the boxes.
func cropRect(pageW, pageH float64, start, end *pdfindex.Rect, m Margins) pdfindex.Rect {
	if start == nil {
		// No located header: fall back to the whole page.
		return pdfindex.Rect{X0: 0, Y0: 0, X1: pageW, Y1: pageH}
	}

	top := start.Y0 - m.LeadIn
	if top < 0 {
		top = 0
	}

	var bottom float64
	if end != nil {
		// Stop just above the next header, but never produce a region
		// thinner than MinGap below this one's header.
		bottom = start.Y1 + m.MinGap
		if b := end.Y0 - m.Buffer; b > bottom {
			bottom = b
		}
	} else {
		bottom = start.Y1 + m.Overflow
	}
	if bottom > pageH {
		bottom = pageH
	}

	return pdfindex.Rect{X0: 0, Y0: top, X1: pageW, Y1: bottom}
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// slug builds the filename fragment from the first 40 characters of the
// question sentence: non-word characters stripped, runs of spaces and
// dashes collapsed to single underscores.
func slug(sentence string) string {
	s := sentence
	if len(s) > 40 {
		n := 40
		for n > 0 && s[n]&0xC0 == 0x80 {
			n--
		}
		s = s[:n]
	}
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "_")
	for len(s) > 0 && s[0] == '_' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == '_' {
		s = s[:len(s)-1]
	}
	return s
}
