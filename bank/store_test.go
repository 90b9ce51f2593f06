//go:build cgo

package bank

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, 4) // dim=4 for test vectors
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ---------------------------------------------------------------------------
// Schema / construction
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	s := newTestStore(t)
	// Schema and migrations must both have applied.
	if _, err := s.CreateRun(context.Background(), sampleRun()); err != nil {
		t.Fatalf("fresh store not usable: %v", err)
	}
}

func TestNewCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "dir")
	dbPath := filepath.Join(dir, "test.db")
	s, err := New(dbPath, 4)
	if err != nil {
		t.Fatalf("creating store in nested dir: %v", err)
	}
	s.Close()
}

// ---------------------------------------------------------------------------
// Runs and questions
// ---------------------------------------------------------------------------

func sampleRun() Run {
	return Run{
		PDFPath:            "/papers/exam.pdf",
		QuestionsFound:     10,
		QuestionsExtracted: 9,
		ReportPath:         "/tmp/out/extraction_report.txt",
		ViewerPath:         "/tmp/out/viewer.html",
	}
}

func TestCreateRunAndInsertQuestions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, sampleRun())
	if err != nil {
		t.Fatalf("creating run: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected non-zero run id")
	}

	for i, sentence := range []string{
		"What is the mean of the sample?",
		"How many ways can the letters be arranged?",
	} {
		_, err := s.InsertQuestion(ctx, Question{
			RunID:          runID,
			SequenceNumber: i + 1,
			ExternalID:     "90" + string(rune('1'+i)),
			Page:           i + 1,
			Sentence:       sentence,
			SentenceSource: "pattern",
			ImageFile:      "Q001_P1_x.png",
		})
		if err != nil {
			t.Fatalf("inserting question %d: %v", i+1, err)
		}
	}

	questions, err := s.ListQuestions(ctx, runID)
	if err != nil {
		t.Fatalf("listing questions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].SequenceNumber != 1 || questions[1].SequenceNumber != 2 {
		t.Errorf("questions out of sequence order: %+v", questions)
	}
	if questions[0].Sentence != "What is the mean of the sample?" {
		t.Errorf("unexpected sentence: %q", questions[0].Sentence)
	}
}

func TestInsertAndGetSolution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, _ := s.CreateRun(ctx, sampleRun())
	qID, err := s.InsertQuestion(ctx, Question{
		RunID: runID, SequenceNumber: 1, ExternalID: "901", Page: 1,
		Sentence: "What is x?", SentenceSource: "pattern", ImageFile: "Q001.png",
	})
	if err != nil {
		t.Fatalf("inserting question: %v", err)
	}

	if err := s.InsertSolution(ctx, Solution{
		QuestionID: qID,
		Latex:      `\textbf{Answer:} 4`,
		Source:     "model",
		Model:      "llama3.2-vision",
	}); err != nil {
		t.Fatalf("inserting solution: %v", err)
	}

	got, err := s.GetSolution(ctx, qID)
	if err != nil {
		t.Fatalf("getting solution: %v", err)
	}
	if got == nil {
		t.Fatal("expected a solution")
	}
	if got.Source != "model" || got.Model != "llama3.2-vision" {
		t.Errorf("unexpected solution: %+v", got)
	}

	missing, err := s.GetSolution(ctx, qID+1000)
	if err != nil {
		t.Fatalf("getting missing solution: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing solution, got %+v", missing)
	}
}

// ---------------------------------------------------------------------------
// Embeddings / similarity
// ---------------------------------------------------------------------------

func TestSimilarQuestions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, _ := s.CreateRun(ctx, sampleRun())

	vectors := map[string][]float32{
		"What is the mean?":    {1, 0, 0, 0},
		"What is the median?":  {0.9, 0.1, 0, 0},
		"Integrate sin(x) dx.": {0, 0, 1, 0},
	}
	for sentence, vec := range vectors {
		qID, err := s.InsertQuestion(ctx, Question{
			RunID: runID, SequenceNumber: 1, ExternalID: "901", Page: 1,
			Sentence: sentence, SentenceSource: "pattern", ImageFile: "q.png",
		})
		if err != nil {
			t.Fatalf("inserting question: %v", err)
		}
		if err := s.InsertEmbedding(ctx, qID, vec); err != nil {
			t.Fatalf("inserting embedding: %v", err)
		}
	}

	results, err := s.SimilarQuestions(ctx, []float32{1, 0, 0, 0}, 2)
	if err != nil {
		t.Fatalf("similarity search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Sentence != "What is the mean?" {
		t.Errorf("expected exact match first, got %q", results[0].Sentence)
	}
	if results[1].Sentence != "What is the median?" {
		t.Errorf("expected near-duplicate second, got %q", results[1].Sentence)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not ordered by similarity")
	}
}

// ---------------------------------------------------------------------------
// XLSX export
// ---------------------------------------------------------------------------

func TestExportXLSX(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, _ := s.CreateRun(ctx, sampleRun())
	qID, _ := s.InsertQuestion(ctx, Question{
		RunID: runID, SequenceNumber: 1, ExternalID: "901", Page: 1,
		Sentence: "What is x?", SentenceSource: "pattern", ImageFile: "Q001.png",
	})
	s.InsertSolution(ctx, Solution{QuestionID: qID, Latex: "x=4", Source: "simulated"})

	path := filepath.Join(t.TempDir(), "bank.xlsx")
	if err := s.ExportXLSX(ctx, path); err != nil {
		t.Fatalf("exporting xlsx: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat exported file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported file is empty")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("re-running migrations: %v", err)
	}
}
