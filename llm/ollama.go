package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Ollama talks to Ollama's native API. The native endpoints
// (/api/generate, /api/tags, /api/embed) give direct control over
// sampling options and per-request image payloads.
type Ollama struct {
	baseURL    string
	embedModel string
	client     *http.Client
}

// NewOllama creates a client for the given base URL. Generation models are
// chosen per request; the embedding model is fixed per client. Per-call
// deadlines come from the caller's context; the client timeout is only a
// backstop against stalled connections.
func NewOllama(baseURL, embedModel string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Ollama{
		baseURL:    strings.TrimRight(baseURL, "/"),
		embedModel: embedModel,
		client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (o *Ollama) CheckModel(ctx context.Context, model string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading tags response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: tags endpoint returned %d", ErrUnavailable, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return fmt.Errorf("decoding tags response: %w", err)
	}

	available := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name == model {
			return nil
		}
		available = append(available, m.Name)
	}
	return fmt.Errorf("%w: %s (available: %s)", ErrModelNotFound, model, strings.Join(available, ", "))
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (o *Ollama) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body := generateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			NumPredict:  req.NumPredict,
		},
	}
	for _, img := range req.Images {
		body.Images = append(body.Images, base64.StdEncoding.EncodeToString(img))
	}

	respBody, err := o.doPost(ctx, "/api/generate", body)
	if err != nil {
		return "", err
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	return gen.Response, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := embedRequest{
		Model: o.embedModel,
		Input: texts,
	}

	respBody, err := o.doPost(ctx, "/api/embed", body)
	if err != nil {
		return nil, err
	}

	var emb embedResponse
	if err := json.Unmarshal(respBody, &emb); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	return emb.Embeddings, nil
}

const (
	maxRetries     = 2
	baseRetryDelay = 1 * time.Second
)

// retryableStatusCode returns true for HTTP status codes that warrant a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

func (o *Ollama) doPost(ctx context.Context, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := o.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1))
			slog.Warn("llm: retrying request",
				"url", url,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := o.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: request to %s failed: %v", ErrUnavailable, url, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response body: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return respBody, nil
		}

		lastErr = fmt.Errorf("ollama API error %d: %s", resp.StatusCode, string(respBody))
		if !retryableStatusCode(resp.StatusCode) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
