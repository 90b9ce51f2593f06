// Package region locates a question block's extent on its physical page
// and crops that region to an image.
package region

import (
	"fmt"
	"image"

	"github.com/exambank/exambank/pdfindex"
	"github.com/exambank/exambank/segment"
)

// PageIndex is the slice of the PDF index this package needs. It is
// satisfied by *pdfindex.Index and by test fakes.
type PageIndex interface {
	NumPages() int
	Search(page int, literal string) (pdfindex.Rect, bool)
	PageSize(page int) (w, h float64)
	RenderRegion(page int, clip pdfindex.Rect, scale float64) (image.Image, error)
}

// Location is a question block's resolved span on one physical page.
type Location struct {
	// Page is the 0-based page on which the block's delimiter text was
	// found.
	Page int

	// Start is the bounding box of the block's own delimiter text, or nil
	// when the page matched but no box could be located (full-page
	// fallback).
	Start *pdfindex.Rect

	// End is the bounding box of the next block's delimiter text on the
	// same page, or nil when the next block is absent or has spilled onto
	// a following page.
	End *pdfindex.Rect
}

// Locator resolves blocks to page locations. Blocks arrive in document
// order, so resolution scans pages once per run: each lookup starts at the
// page where the previous block was found instead of rescanning from the
// first page.
type Locator struct {
	index    PageIndex
	fromPage int
}

// NewLocator returns a Locator over the given index.
func NewLocator(index PageIndex) *Locator {
	return &Locator{index: index}
}

// searchStrategies returns the ordered literal lookups for a block: the
// sequence-number form first, the external-id form second.
func searchStrategies(b segment.Block) []string {
	return []string{
		fmt.Sprintf("Question Number : %d", b.SequenceNumber),
		fmt.Sprintf("Question Id : %s", b.ExternalID),
	}
}

// findOnPage runs the strategy list on one page and returns the first
// located bounding box.
func (l *Locator) findOnPage(page int, b segment.Block) (pdfindex.Rect, bool) {
	for _, literal := range searchStrategies(b) {
		if box, ok := l.index.Search(page, literal); ok {
			return box, true
		}
	}
	return pdfindex.Rect{}, false
}

// Locate resolves the block's page and boxes. The page is the first one,
// scanning forward from the previous block's page, whose search index
// matches "Question Number : N". The end box is the next block's delimiter
// looked up on the same page; a next question on a later page yields a nil
// End. ok is false when no page contains the block's delimiter, in which
// case the block cannot be cropped.
func (l *Locator) Locate(b segment.Block, next *segment.Block) (Location, bool) {
	pageLiteral := fmt.Sprintf("Question Number : %d", b.SequenceNumber)

	page := -1
	for p := l.fromPage; p < l.index.NumPages(); p++ {
		if _, ok := l.index.Search(p, pageLiteral); ok {
			page = p
			break
		}
	}
	if page < 0 {
		return Location{Page: -1}, false
	}
	l.fromPage = page

	loc := Location{Page: page}
	if box, ok := l.findOnPage(page, b); ok {
		start := box
		loc.Start = &start
	}
	if next != nil {
		if box, ok := l.findOnPage(page, *next); ok {
			end := box
			loc.End = &end
		}
	}
	return loc, true
}
