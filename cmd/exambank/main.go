// Command exambank extracts questions from an exam-paper PDF, optionally
// solves them with a local vision model, and renders the combined question
// bank document.
//
// Usage:
//
//	exambank [flags] exam.pdf
//
// Examples:
//
//	exambank --out ./questions exam.pdf
//	exambank --solve --renderer latex exam.pdf
//	exambank --similar "What is the mean of the sample?" --top 5
//	exambank --export bank.xlsx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/exambank/exambank"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to config file (JSON)")
		outputDir   = flag.String("out", "", "Output directory for images, report and viewer")
		latexDir    = flag.String("latex-out", "", "Output directory for solutions and the combined document")
		baseURL     = flag.String("base-url", "", "Ollama base URL override")
		textModel   = flag.String("model", "", "Text model for sentence extraction")
		visionModel = flag.String("vision-model", "", "Vision model for image solving")
		renderer    = flag.String("renderer", "", "Question bank backend: latex or html")
		noBank      = flag.Bool("no-bank", false, "Skip question bank persistence")
		clean       = flag.Bool("clean", false, "Empty the output directory before extraction")
		solve       = flag.Bool("solve", false, "Solve extracted images and render the question bank")
		similar     = flag.String("similar", "", "Search the question bank for questions similar to this sentence")
		top         = flag.Int("top", 5, "Number of results for --similar")
		exportPath  = flag.String("export", "", "Export the question bank to an XLSX file and exit")
	)
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := exambank.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			slog.Error("opening config", "error", err)
			os.Exit(1)
		}
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			f.Close()
			slog.Error("parsing config", "error", err)
			os.Exit(1)
		}
		f.Close()
	}

	// Override from environment variables.
	if v := os.Getenv("EXAMBANK_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("EXAMBANK_BASE_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("EXAMBANK_TEXT_MODEL"); v != "" {
		cfg.Ollama.TextModel = v
	}
	if v := os.Getenv("EXAMBANK_VISION_MODEL"); v != "" {
		cfg.Ollama.VisionModel = v
	}
	if v := os.Getenv("EXAMBANK_EMBED_MODEL"); v != "" {
		cfg.Ollama.EmbedModel = v
	}

	// Flags win over config file and environment.
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *latexDir != "" {
		cfg.LatexDir = *latexDir
	}
	if *baseURL != "" {
		cfg.Ollama.BaseURL = *baseURL
	}
	if *textModel != "" {
		cfg.Ollama.TextModel = *textModel
	}
	if *visionModel != "" {
		cfg.Ollama.VisionModel = *visionModel
	}
	if *renderer != "" {
		cfg.Renderer = *renderer
	}
	if *noBank {
		cfg.DisableBank = true
	}

	pipeline, err := exambank.New(cfg)
	if err != nil {
		slog.Error("creating pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	ctx := context.Background()

	// Bank-only modes need no PDF argument.
	if *exportPath != "" {
		if err := pipeline.ExportBank(ctx, *exportPath); err != nil {
			slog.Error("exporting question bank", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Question bank exported to %s\n", *exportPath)
		return
	}
	if *similar != "" {
		hits, err := pipeline.SimilarQuestions(ctx, *similar, *top)
		if err != nil {
			slog.Error("similarity search", "error", err)
			os.Exit(1)
		}
		for _, h := range hits {
			fmt.Printf("%.3f  run %d  Q%03d  %s\n", h.Score, h.RunID, h.SequenceNumber, h.Sentence)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: exambank [flags] exam.pdf")
		flag.PrintDefaults()
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)

	if *clean {
		if err := cleanDir(cfg.OutputDir); err != nil {
			slog.Error("cleaning output directory", "dir", cfg.OutputDir, "error", err)
			os.Exit(1)
		}
	}

	result, err := pipeline.ProcessPDF(ctx, pdfPath)
	if err != nil {
		slog.Error("extraction failed", "pdf", pdfPath, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Extracted %d of %d questions\n", result.QuestionsExtracted, result.QuestionsFound)
	fmt.Printf("Report: %s\n", result.ReportPath)
	fmt.Printf("Viewer: %s\n", result.ViewerPath)

	if !*solve {
		return
	}

	bankResult, err := pipeline.SolveAndRender(ctx, result)
	if err != nil {
		slog.Error("solving failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Solved %d questions (%d simulated)\n",
		len(bankResult.Solutions), bankResult.Simulated)
	fmt.Printf("Question bank: %s\n", bankResult.DocumentPath)
}

// cleanDir removes the directory's contents but keeps the directory.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
