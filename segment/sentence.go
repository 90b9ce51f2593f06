package segment

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/exambank/exambank/llm"
)

const (
	// minPatternSentence is the minimum accepted length for a cascade
	// candidate. Shorter matches are usually sub-fragments of the real
	// question.
	minPatternSentence = 15

	// minAISentence is the minimum accepted length for the AI fallback.
	minAISentence = 10

	// aiPrefixLimit bounds how much of a block is sent to the model.
	aiPrefixLimit = 1000

	// placeholderExcerpt is how much raw text the guaranteed fallback keeps.
	placeholderExcerpt = 50
)

// sentencePatterns is the ordered cascade. Each pattern may match several
// candidate substrings within a block; the longest match wins. Patterns
// with a capture group contribute the group, the rest the whole match.
var sentencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Question Label\s*:\s*[^\n]*\n\n([^\n]+\?)`),
	regexp.MustCompile(`(?is)Based on.*?answer.*?\n\n([^\n]+\?)`),
	regexp.MustCompile(`([A-Z][^\n]*\?)`),
	regexp.MustCompile(`(?is)What is.*?\?`),
	regexp.MustCompile(`(?is)How (?:much|many).*?\?`),
	regexp.MustCompile(`(?is)Which of.*?\?`),
	regexp.MustCompile(`(?is)In how many.*?\?`),
	regexp.MustCompile(`(?is)If .*?\?`),
}

// aiBoilerplate strips leading prefixes the model tends to echo back.
var aiBoilerplate = regexp.MustCompile(`(?i)^(Question:|Answer:|The question is:?)`)

// SentenceExtractor derives a question sentence from a raw block via a
// pattern cascade with an AI-assisted fallback. Extraction never blocks on
// AI availability and always returns a non-empty sentence.
type SentenceExtractor struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
}

// NewSentenceExtractor returns an extractor. provider may be nil to
// disable the AI fallback entirely.
func NewSentenceExtractor(provider llm.Provider, model string, timeout time.Duration) *SentenceExtractor {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SentenceExtractor{provider: provider, model: model, timeout: timeout}
}

// Extract runs the cascade: structural patterns first, then the AI
// fallback, then a truncated-excerpt placeholder.
func (e *SentenceExtractor) Extract(ctx context.Context, block string) (string, Source) {
	if q, ok := extractByPattern(block); ok {
		return q, SourcePattern
	}
	if q, ok := e.extractByAI(ctx, block); ok {
		return q, SourceAI
	}
	return placeholder(block), SourcePlaceholder
}

// extractByPattern tries each cascade pattern in priority order. A
// candidate is accepted only if it exceeds the minimum length and contains
// a question mark.
func extractByPattern(block string) (string, bool) {
	for _, pat := range sentencePatterns {
		var candidates []string
		if pat.NumSubexp() > 0 {
			for _, m := range pat.FindAllStringSubmatch(block, -1) {
				candidates = append(candidates, m[1])
			}
		} else {
			candidates = pat.FindAllString(block, -1)
		}
		if len(candidates) == 0 {
			continue
		}

		longest := candidates[0]
		for _, c := range candidates[1:] {
			if len(c) > len(longest) {
				longest = c
			}
		}

		q := strings.TrimSpace(longest)
		if len(q) > minPatternSentence && strings.Contains(q, "?") {
			return q, true
		}
	}
	return "", false
}

// extractByAI asks the text model to pull the question out of the block's
// bounded prefix. Any provider error degrades to the placeholder path.
func (e *SentenceExtractor) extractByAI(ctx context.Context, block string) (string, bool) {
	if e.provider == nil {
		return "", false
	}

	prompt := "Extract the main question from this exam block.\n" +
		"Return only the question text, nothing else.\n\n" +
		"Block:\n" + truncate(block, aiPrefixLimit) + "\n\nQuestion:"

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.provider.Generate(callCtx, llm.GenerateRequest{
		Model:       e.model,
		Prompt:      prompt,
		Temperature: 0.1,
		TopP:        0.9,
	})
	if err != nil {
		slog.Warn("segment: AI sentence extraction failed", "error", err)
		return "", false
	}

	q := strings.TrimSpace(resp)
	q = strings.TrimSpace(aiBoilerplate.ReplaceAllString(q, ""))

	if len(q) > minAISentence && !strings.HasPrefix(strings.ToLower(q), "i cannot") {
		return q, true
	}
	return "", false
}

// placeholder builds the guaranteed non-empty fallback sentence.
func placeholder(block string) string {
	return "Question " + truncate(block, placeholderExcerpt) + "..."
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
