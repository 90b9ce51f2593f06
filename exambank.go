// Package exambank extracts individual questions from exam-paper PDFs as
// cropped images, solves them with a local vision model, and assembles the
// results into a browsable question bank.
package exambank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/exambank/exambank/bank"
	"github.com/exambank/exambank/llm"
	"github.com/exambank/exambank/pdfindex"
	"github.com/exambank/exambank/region"
	"github.com/exambank/exambank/render"
	"github.com/exambank/exambank/segment"
	"github.com/exambank/exambank/solver"
)

// Result summarizes one ProcessPDF run.
type Result struct {
	// QuestionsFound is how many delimiter blocks the document text yielded.
	QuestionsFound int `json:"questions_found"`

	// QuestionsExtracted is how many blocks produced an image file. Always
	// <= QuestionsFound; blocks whose region could not be located or
	// rendered are skipped, never fatal.
	QuestionsExtracted int `json:"questions_extracted"`

	// Extracted lists the successful crops in document order.
	Extracted []region.Extracted `json:"extracted"`

	// ReportPath and ViewerPath point at the run summary artifacts. They
	// are written even when every individual crop failed.
	ReportPath string `json:"report_path"`
	ViewerPath string `json:"viewer_path"`

	// RunID is the question bank row for this run, or 0 when persistence
	// is disabled.
	RunID int64 `json:"run_id,omitempty"`
}

// ImagePaths returns the extracted image files in document order, the
// input SolveAndRender expects.
func (r *Result) ImagePaths() []string {
	paths := make([]string, len(r.Extracted))
	for i, e := range r.Extracted {
		paths[i] = e.Path
	}
	return paths
}

// BankResult summarizes one SolveAndRender run.
type BankResult struct {
	// Solutions holds one entry per solved image, in input order.
	Solutions []solver.Solution `json:"solutions"`

	// Simulated counts solutions that fell back to the canned generator.
	Simulated int `json:"simulated"`

	// DocumentPath is the combined question bank document produced by the
	// configured renderer.
	DocumentPath string `json:"document_path"`
}

// Pipeline is the main entry point. One Pipeline serves many PDFs; the
// per-document state (page index, locator cursor) lives inside ProcessPDF.
type Pipeline struct {
	cfg       Config
	provider  llm.Provider
	store     *bank.Store
	segmenter *segment.Segmenter
	solver    *solver.Solver
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.EmbeddingDim == 0 {
		cfg.EmbeddingDim = 768
	}

	provider := llm.NewOllama(cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel)

	var store *bank.Store
	if !cfg.DisableBank {
		s, err := bank.New(cfg.resolveDBPath(), cfg.EmbeddingDim)
		if err != nil {
			return nil, fmt.Errorf("opening question bank: %w", err)
		}
		store = s
	}

	extractor := segment.NewSentenceExtractor(provider, cfg.Ollama.TextModel, cfg.Ollama.GenerateTimeout)

	return &Pipeline{
		cfg:       cfg,
		provider:  provider,
		store:     store,
		segmenter: segment.New(extractor),
		solver:    solver.New(provider, cfg.Ollama.VisionModel, cfg.Ollama.VisionTimeout, cfg.LatexDir),
	}, nil
}

// Store returns the underlying question bank store, or nil when
// persistence is disabled.
func (p *Pipeline) Store() *bank.Store {
	return p.store
}

// Close releases the question bank store.
func (p *Pipeline) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// CheckProvider verifies the Ollama endpoint is reachable and the text
// model is available. ProcessPDF runs this as a precondition; callers may
// also use it directly for a fast health probe.
func (p *Pipeline) CheckProvider(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Ollama.CheckTimeout)
	defer cancel()

	err := p.provider.CheckModel(callCtx, p.cfg.Ollama.TextModel)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, llm.ErrModelNotFound):
		return fmt.Errorf("%w: %s", ErrModelMissing, p.cfg.Ollama.TextModel)
	default:
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
}

// documentIndex is the slice of the PDF index ProcessPDF needs, satisfied
// by *pdfindex.Index and by test fakes.
type documentIndex interface {
	region.PageIndex
	FullText() string
}

// ProcessPDF runs the extraction pipeline over one PDF: segment the
// document text into question blocks, locate and crop each block's page
// region, and write the report and viewer artifacts. Individual blocks
// that cannot be located or rendered are skipped with a warning; the
// report and viewer are written even then.
func (p *Pipeline) ProcessPDF(ctx context.Context, pdfPath string) (*Result, error) {
	if err := p.CheckProvider(ctx); err != nil {
		return nil, err
	}

	index, err := pdfindex.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFOpen, err)
	}
	defer index.Close()

	slog.Info("processing PDF", "path", pdfPath, "pages", index.NumPages())
	return p.processIndex(ctx, pdfPath, index)
}

func (p *Pipeline) processIndex(ctx context.Context, pdfPath string, index documentIndex) (*Result, error) {
	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	blocks := p.segmenter.Segment(ctx, index.FullText())
	if len(blocks) == 0 {
		return nil, ErrNoQuestionsFound
	}
	slog.Info("segmented document", "questions", len(blocks))

	result := &Result{QuestionsFound: len(blocks)}

	locator := region.NewLocator(index)
	cropper := region.NewCropper(index, region.Margins(p.cfg.Crop), p.cfg.OutputDir)

	for i, b := range blocks {
		var next *segment.Block
		if i+1 < len(blocks) {
			next = &blocks[i+1]
		}

		loc, ok := locator.Locate(b, next)
		if !ok {
			slog.Warn("question not found on any page, skipping",
				"question", b.SequenceNumber, "id", b.ExternalID)
			continue
		}

		extracted, err := cropper.Crop(b, loc)
		if err != nil {
			slog.Warn("cropping failed, skipping",
				"question", b.SequenceNumber, "page", loc.Page+1, "error", err)
			continue
		}

		slog.Info("extracted question",
			"question", extracted.SequenceNumber, "page", extracted.Page,
			"source", extracted.SentenceSource, "file", extracted.Filename)
		result.Extracted = append(result.Extracted, *extracted)
	}
	result.QuestionsExtracted = len(result.Extracted)

	now := time.Now()
	reportPath, err := render.WriteReport(p.cfg.OutputDir, pdfPath, result.Extracted, now)
	if err != nil {
		return nil, err
	}
	result.ReportPath = reportPath

	viewerPath, err := render.WriteViewer(p.cfg.OutputDir, result.Extracted, now)
	if err != nil {
		return nil, err
	}
	result.ViewerPath = viewerPath

	if p.store != nil {
		if err := p.persistRun(ctx, pdfPath, result); err != nil {
			// Persistence failures don't invalidate the on-disk artifacts.
			slog.Warn("question bank persistence failed", "error", err)
		}
	}

	slog.Info("extraction complete",
		"found", result.QuestionsFound, "extracted", result.QuestionsExtracted,
		"report", result.ReportPath, "viewer", result.ViewerPath)
	return result, nil
}

// persistRun records the run and its questions, embedding each question
// sentence for cross-run duplicate detection. Embedding failures are
// per-question and non-fatal.
func (p *Pipeline) persistRun(ctx context.Context, pdfPath string, result *Result) error {
	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		absPath = pdfPath
	}

	runID, err := p.store.CreateRun(ctx, bank.Run{
		PDFPath:            absPath,
		QuestionsFound:     result.QuestionsFound,
		QuestionsExtracted: result.QuestionsExtracted,
		ReportPath:         result.ReportPath,
		ViewerPath:         result.ViewerPath,
	})
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	result.RunID = runID

	for _, e := range result.Extracted {
		qID, err := p.store.InsertQuestion(ctx, bank.Question{
			RunID:          runID,
			SequenceNumber: e.SequenceNumber,
			ExternalID:     e.ExternalID,
			Page:           e.Page,
			Sentence:       e.Sentence,
			SentenceSource: string(e.SentenceSource),
			ImageFile:      e.Filename,
		})
		if err != nil {
			return fmt.Errorf("recording question %d: %w", e.SequenceNumber, err)
		}

		embeddings, err := p.provider.Embed(ctx, []string{e.Sentence})
		if err != nil || len(embeddings) == 0 {
			slog.Warn("embedding question sentence failed",
				"question", e.SequenceNumber, "error", err)
			continue
		}
		if err := p.store.InsertEmbedding(ctx, qID, embeddings[0]); err != nil {
			slog.Warn("storing question embedding failed",
				"question", e.SequenceNumber, "error", err)
		}
	}
	return nil
}

// SolveAndRender sends the run's extracted images to the vision model
// (with a simulated fallback per image), renders the combined question
// bank document with the configured backend, and records each solution
// against its question bank row.
func (p *Pipeline) SolveAndRender(ctx context.Context, extraction *Result) (*BankResult, error) {
	// A missing vision model degrades every solution to the simulated
	// path rather than aborting; surface that up front.
	checkCtx, cancel := context.WithTimeout(ctx, p.cfg.Ollama.CheckTimeout)
	if err := p.provider.CheckModel(checkCtx, p.cfg.Ollama.VisionModel); err != nil {
		slog.Warn("vision model unavailable, solutions will be simulated",
			"model", p.cfg.Ollama.VisionModel, "error", err)
	}
	cancel()

	solutions := p.solver.SolveAll(ctx, extraction.ImagePaths())

	renderer, err := render.New(p.cfg.Renderer, p.cfg.LatexDir)
	if err != nil {
		return nil, err
	}
	docPath, err := renderer.Render(solutions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	result := &BankResult{Solutions: solutions, DocumentPath: docPath}
	for _, s := range solutions {
		if s.Source == solver.SourceSimulated {
			result.Simulated++
		}
	}

	if p.store != nil && extraction.RunID != 0 {
		if err := p.persistSolutions(ctx, extraction, solutions); err != nil {
			slog.Warn("solution persistence failed", "error", err)
		}
	}

	slog.Info("question bank rendered",
		"solutions", len(solutions), "simulated", result.Simulated, "document", docPath)
	return result, nil
}

// persistSolutions records each solution against its question row,
// matched through the run's stored image filenames. Per-solution insert
// failures are logged and skipped.
func (p *Pipeline) persistSolutions(ctx context.Context, extraction *Result, solutions []solver.Solution) error {
	questions, err := p.store.ListQuestions(ctx, extraction.RunID)
	if err != nil {
		return fmt.Errorf("listing run questions: %w", err)
	}
	byImage := make(map[string]int64, len(questions))
	for _, q := range questions {
		byImage[q.ImageFile] = q.ID
	}

	for _, sol := range solutions {
		// SolveAll numbers solutions 1..n over the extraction's images.
		idx := sol.QuestionNumber - 1
		if idx < 0 || idx >= len(extraction.Extracted) {
			continue
		}
		qID, ok := byImage[extraction.Extracted[idx].Filename]
		if !ok {
			slog.Warn("no question row for solved image",
				"image", extraction.Extracted[idx].Filename)
			continue
		}

		model := ""
		if sol.Source == solver.SourceModel {
			model = p.cfg.Ollama.VisionModel
		}
		if err := p.store.InsertSolution(ctx, bank.Solution{
			QuestionID: qID,
			Latex:      sol.Latex,
			Source:     string(sol.Source),
			Model:      model,
		}); err != nil {
			slog.Warn("recording solution failed",
				"question", extraction.Extracted[idx].SequenceNumber, "error", err)
		}
	}
	return nil
}

// SimilarQuestions embeds the sentence and searches the question bank for
// the k nearest stored questions across all runs.
func (p *Pipeline) SimilarQuestions(ctx context.Context, sentence string, k int) ([]bank.Similar, error) {
	if p.store == nil {
		return nil, ErrStoreClosed
	}
	embeddings, err := p.provider.Embed(ctx, []string{sentence})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding query: empty response")
	}
	return p.store.SimilarQuestions(ctx, embeddings[0], k)
}

// ExportBank writes the full question bank to an XLSX spreadsheet.
func (p *Pipeline) ExportBank(ctx context.Context, path string) error {
	if p.store == nil {
		return ErrStoreClosed
	}
	return p.store.ExportXLSX(ctx, path)
}
