package exambank

import "errors"

var (
	// ErrProviderUnavailable is returned when the Ollama endpoint is unreachable.
	ErrProviderUnavailable = errors.New("exambank: LLM provider unavailable")

	// ErrModelMissing is returned when the configured model is not present
	// in the provider's model list.
	ErrModelMissing = errors.New("exambank: configured model not found")

	// ErrPDFOpen is returned when the input PDF cannot be opened or read.
	ErrPDFOpen = errors.New("exambank: cannot open PDF")

	// ErrNoQuestionsFound is returned when no structural question delimiters
	// match anywhere in the document text.
	ErrNoQuestionsFound = errors.New("exambank: no questions found using structural pattern")

	// ErrRenderFailed is returned when the configured renderer cannot
	// produce its output document.
	ErrRenderFailed = errors.New("exambank: rendering failed")

	// ErrStoreClosed is returned when operating on a closed question bank store.
	ErrStoreClosed = errors.New("exambank: store is closed")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("exambank: invalid configuration")
)
