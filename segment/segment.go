// Package segment recovers ordered question blocks from raw exam-paper
// text using the repeating "Question Number : N Question Id : M"
// structural delimiter.
package segment

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
)

// Source tags how a block's question sentence was obtained.
type Source string

const (
	// SourcePattern means a structural text pattern matched.
	SourcePattern Source = "pattern"
	// SourceAI means the text-mode LLM fallback produced the sentence.
	SourceAI Source = "ai"
	// SourcePlaceholder means both failed and a truncated excerpt of the
	// raw block was used.
	SourcePlaceholder Source = "placeholder"
)

// Block is one matched unit of structural text.
type Block struct {
	// SequenceNumber is the integer from the delimiter. It is a display
	// and sort key only; it is not necessarily contiguous and must never
	// be used as an array index.
	SequenceNumber int

	// ExternalID is the opaque identifier paired with the sequence number
	// in the same delimiter line.
	ExternalID string

	// RawText spans from this block's delimiter up to (not including) the
	// next delimiter or the end of the document.
	RawText string

	// Sentence is the best-effort question sentence. Always non-empty.
	Sentence string

	// SentenceSource records which extraction step produced Sentence.
	SentenceSource Source

	// OrdinalIndex is this block's 0-based position in the parsed
	// sequence, independent of SequenceNumber. It is what cropping uses
	// to find the next block.
	OrdinalIndex int
}

// delimiterPattern matches the two-field structural delimiter. Arbitrary
// whitespace is allowed between label and value.
var delimiterPattern = regexp.MustCompile(`(?i)Question Number\s*:\s*(\d+)\s+Question Id\s*:\s*(\d+)`)

// Segmenter partitions document text into question blocks.
type Segmenter struct {
	sentences *SentenceExtractor
}

// New returns a Segmenter. The extractor may be nil, in which case every
// block's sentence comes from the pattern cascade or the placeholder.
func New(sentences *SentenceExtractor) *Segmenter {
	if sentences == nil {
		sentences = NewSentenceExtractor(nil, "", 0)
	}
	return &Segmenter{sentences: sentences}
}

// Segment splits text into an ordered list of blocks. The split is a
// greedy, order-preserving, non-overlapping partition: each block's
// RawText runs from its delimiter to the start of the next one, and the
// last block runs to the end of the document. Zero delimiters yields an
// empty (nil) result; callers must treat that as "no questions found".
func (s *Segmenter) Segment(ctx context.Context, text string) []Block {
	matches := delimiterPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]Block, 0, len(matches))
	seen := make(map[int]bool, len(matches))

	for i, m := range matches {
		start := m[0]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		number, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			// Unreachable given \d+, but never trust a parse.
			continue
		}
		if seen[number] {
			slog.Warn("segment: duplicate sequence number in document",
				"sequence_number", number, "ordinal_index", i)
		}
		seen[number] = true

		raw := text[start:end]
		sentence, source := s.sentences.Extract(ctx, raw)

		blocks = append(blocks, Block{
			SequenceNumber: number,
			ExternalID:     text[m[4]:m[5]],
			RawText:        raw,
			Sentence:       sentence,
			SentenceSource: source,
			OrdinalIndex:   len(blocks),
		})
	}

	return blocks
}
