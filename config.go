package exambank

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration for the exambank pipeline.
type Config struct {
	// Ollama is the LLM endpoint used for sentence-extraction fallback,
	// image solving and sentence embeddings.
	Ollama LLMConfig `json:"ollama"`

	// OutputDir receives cropped question images, the extraction report
	// and the HTML viewer.
	OutputDir string `json:"output_dir"`

	// LatexDir receives per-question solution files and the combined
	// question bank document.
	LatexDir string `json:"latex_dir"`

	// DBPath is the full path to the SQLite question bank database.
	// If empty, defaults to ~/.exambank/<DBName>.db
	DBPath string `json:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "exambank".
	DBName string `json:"db_name"`

	// StorageDir controls where the database is created when DBPath is
	// not explicitly set. Options: "home" (default) uses ~/.exambank/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir"`

	// DisableBank skips all question bank persistence. Extraction and
	// rendering work without a database.
	DisableBank bool `json:"disable_bank"`

	// Crop controls the region-extraction geometry.
	Crop CropConfig `json:"crop"`

	// Renderer selects the question bank document backend: "latex"
	// (combined .tex document) or "html" (MathJax document for
	// browser print-to-PDF).
	Renderer string `json:"renderer"`

	// EmbeddingDim must match the embedding model's output dimension.
	EmbeddingDim int `json:"embedding_dim"`
}

// LLMConfig configures the Ollama endpoint and its models.
type LLMConfig struct {
	BaseURL     string `json:"base_url"`
	TextModel   string `json:"text_model"`
	VisionModel string `json:"vision_model"`
	EmbedModel  string `json:"embed_model"`

	// Per-call timeouts. CheckTimeout guards the connectivity/model
	// precondition check, GenerateTimeout the text-only sentence
	// extraction, VisionTimeout the image solving calls.
	CheckTimeout    time.Duration `json:"check_timeout"`
	GenerateTimeout time.Duration `json:"generate_timeout"`
	VisionTimeout   time.Duration `json:"vision_timeout"`
}

// CropConfig holds the crop-rectangle margins in PDF points and the
// rasterization scale.
type CropConfig struct {
	// LeadIn is subtracted above the question header (clamped to 0).
	LeadIn float64 `json:"lead_in"`
	// Overflow bounds the region height below the header when no
	// next-question anchor exists on the page.
	Overflow float64 `json:"overflow"`
	// MinGap is the minimum region height below the header even when the
	// next header is unexpectedly close.
	MinGap float64 `json:"min_gap"`
	// Buffer is left above the next question's header.
	Buffer float64 `json:"buffer"`
	// Upscale is the rasterization factor for output images.
	Upscale float64 `json:"upscale"`
}

// DefaultConfig returns a Config with sensible defaults for local inference.
// The question bank database is stored in ~/.exambank/exambank.db by default.
func DefaultConfig() Config {
	return Config{
		Ollama: LLMConfig{
			BaseURL:         "http://localhost:11434",
			TextModel:       "llama3.2:1b",
			VisionModel:     "llama3.2-vision",
			EmbedModel:      "nomic-embed-text",
			CheckTimeout:    5 * time.Second,
			GenerateTimeout: 30 * time.Second,
			VisionTimeout:   120 * time.Second,
		},
		OutputDir:  "temp",
		LatexDir:   "latex_output",
		DBName:     "exambank",
		StorageDir: "home",
		Crop: CropConfig{
			LeadIn:   20,
			Overflow: 300,
			MinGap:   50,
			Buffer:   15,
			Upscale:  2.5,
		},
		Renderer:     "html",
		EmbeddingDim: 768,
	}
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "exambank"
	}

	switch c.StorageDir {
	case "local":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		dir := filepath.Join(home, ".exambank")
		return filepath.Join(dir, name+".db")
	}
}

// validate checks configuration values that have no usable zero default.
func (c *Config) validate() error {
	switch c.Renderer {
	case "", "latex", "html":
	default:
		return ErrInvalidConfig
	}
	if c.Crop.Upscale < 0 || c.Crop.LeadIn < 0 || c.Crop.Overflow < 0 ||
		c.Crop.MinGap < 0 || c.Crop.Buffer < 0 {
		return ErrInvalidConfig
	}
	return nil
}
