package llm

import (
	"context"
	"errors"
)

// Provider is the interface for LLM interactions. The pipeline uses it in
// three degraded-friendly roles: text-only question-sentence extraction,
// vision-based image solving, and sentence embeddings for the bank.
type Provider interface {
	// CheckModel verifies the service is reachable and the model is
	// present in its reported model list.
	CheckModel(ctx context.Context, model string) error

	// Generate sends a single-prompt completion request.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// Embed generates embeddings for a batch of texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateRequest is a non-streaming generation request. Images, when
// present, are raw bytes; the provider base64-encodes them on the wire.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Images      [][]byte
	Temperature float64
	TopP        float64
	NumPredict  int
}

// ErrModelNotFound is returned by CheckModel when the service responds but
// does not list the requested model.
var ErrModelNotFound = errors.New("llm: model not found")

// ErrUnavailable is returned when the service cannot be reached at all.
var ErrUnavailable = errors.New("llm: service unavailable")
