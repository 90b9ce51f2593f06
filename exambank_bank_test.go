//go:build cgo

package exambank

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/exambank/exambank/bank"
	"github.com/exambank/exambank/llm"
	"github.com/exambank/exambank/segment"
	"github.com/exambank/exambank/solver"
)

func newBankedPipeline(t *testing.T, provider llm.Provider) *Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.LatexDir = t.TempDir()
	cfg.EmbeddingDim = 4 // matches the fake provider's vectors

	store, err := bank.New(filepath.Join(t.TempDir(), "test.db"), cfg.EmbeddingDim)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &Pipeline{
		cfg:       cfg,
		provider:  provider,
		store:     store,
		segmenter: segment.New(segment.NewSentenceExtractor(provider, cfg.Ollama.TextModel, 0)),
		solver:    solver.New(provider, cfg.Ollama.VisionModel, 0, cfg.LatexDir),
	}
}

func TestFullRunPersistsSolutions(t *testing.T) {
	p := newBankedPipeline(t, &fakeProvider{})
	ctx := context.Background()

	extraction, err := p.processIndex(ctx, "exam.pdf", fiveQuestionDoc())
	if err != nil {
		t.Fatalf("processIndex: %v", err)
	}
	if extraction.RunID == 0 {
		t.Fatal("expected a recorded run")
	}

	questions, err := p.store.ListQuestions(ctx, extraction.RunID)
	if err != nil {
		t.Fatalf("listing questions: %v", err)
	}
	if len(questions) != extraction.QuestionsExtracted {
		t.Fatalf("got %d question rows, want %d", len(questions), extraction.QuestionsExtracted)
	}

	bankResult, err := p.SolveAndRender(ctx, extraction)
	if err != nil {
		t.Fatalf("SolveAndRender: %v", err)
	}
	if len(bankResult.Solutions) != extraction.QuestionsExtracted {
		t.Fatalf("got %d solutions, want %d", len(bankResult.Solutions), extraction.QuestionsExtracted)
	}

	// Every question row must carry its solution with the source tag.
	for _, q := range questions {
		sol, err := p.store.GetSolution(ctx, q.ID)
		if err != nil {
			t.Fatalf("getting solution for Q%03d: %v", q.SequenceNumber, err)
		}
		if sol == nil {
			t.Errorf("question %d has no persisted solution", q.SequenceNumber)
			continue
		}
		if sol.Source != string(solver.SourceModel) {
			t.Errorf("question %d solution source = %q, want %q",
				q.SequenceNumber, sol.Source, solver.SourceModel)
		}
		if sol.Model != p.cfg.Ollama.VisionModel {
			t.Errorf("question %d solution model = %q, want %q",
				q.SequenceNumber, sol.Model, p.cfg.Ollama.VisionModel)
		}
		if sol.Latex == "" {
			t.Errorf("question %d has an empty solution body", q.SequenceNumber)
		}
	}
}

func TestSimulatedSolutionsPersistWithoutModel(t *testing.T) {
	p := newBankedPipeline(t, &fakeProvider{generateErr: context.DeadlineExceeded})
	ctx := context.Background()

	extraction, err := p.processIndex(ctx, "exam.pdf", fiveQuestionDoc())
	if err != nil {
		t.Fatalf("processIndex: %v", err)
	}

	if _, err := p.SolveAndRender(ctx, extraction); err != nil {
		t.Fatalf("SolveAndRender: %v", err)
	}

	questions, err := p.store.ListQuestions(ctx, extraction.RunID)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range questions {
		sol, err := p.store.GetSolution(ctx, q.ID)
		if err != nil {
			t.Fatal(err)
		}
		if sol == nil {
			t.Fatalf("question %d has no persisted solution", q.SequenceNumber)
		}
		if sol.Source != string(solver.SourceSimulated) {
			t.Errorf("question %d solution source = %q, want %q",
				q.SequenceNumber, sol.Source, solver.SourceSimulated)
		}
		if sol.Model != "" {
			t.Errorf("simulated solution must not record a model, got %q", sol.Model)
		}
	}
}
