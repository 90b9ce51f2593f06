package solver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/exambank/exambank/llm"
)

type fakeProvider struct {
	response string
	err      error
	lastReq  llm.GenerateRequest
}

func (f *fakeProvider) CheckModel(ctx context.Context, model string) error { return nil }

func (f *fakeProvider) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not implemented")
}

func writeTestImage(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "Q001_P1_What_is_x.png")
	if err := os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSolveImageModelPath(t *testing.T) {
	dir := t.TempDir()
	img := writeTestImage(t, dir)

	p := &fakeProvider{response: `\textbf{Question 1:} What is x?`}
	s := New(p, "llama3.2-vision", 0, filepath.Join(dir, "latex"))

	sol, err := s.SolveImage(context.Background(), img, 1)
	if err != nil {
		t.Fatalf("SolveImage: %v", err)
	}
	if sol.Source != SourceModel {
		t.Errorf("source = %q, want model", sol.Source)
	}
	if sol.Filename != "Q001_Q001_P1_What_is_x.tex" {
		t.Errorf("filename = %q", sol.Filename)
	}
	if p.lastReq.NumPredict != 4000 {
		t.Errorf("NumPredict = %d, want 4000", p.lastReq.NumPredict)
	}
	if len(p.lastReq.Images) != 1 {
		t.Errorf("expected 1 image on the request")
	}

	data, err := os.ReadFile(sol.Path)
	if err != nil {
		t.Fatalf("reading solution file: %v", err)
	}
	if string(data) != sol.Latex {
		t.Error("file content differs from solution latex")
	}
}

func TestSolveImageFallsBackOnProviderError(t *testing.T) {
	dir := t.TempDir()
	img := writeTestImage(t, dir)

	p := &fakeProvider{err: errors.New("connection refused")}
	s := New(p, "llama3.2-vision", 0, filepath.Join(dir, "latex"))

	sol, err := s.SolveImage(context.Background(), img, 2)
	if err != nil {
		t.Fatalf("SolveImage: %v", err)
	}
	if sol.Source != SourceSimulated {
		t.Errorf("source = %q, want simulated", sol.Source)
	}
	if !strings.Contains(sol.Latex, "Question 2:") {
		t.Errorf("simulated solution not keyed to question number: %q", sol.Latex[:60])
	}
}

func TestSolveImageFallsBackOnMissingImage(t *testing.T) {
	dir := t.TempDir()
	p := &fakeProvider{response: "should not matter"}
	s := New(p, "llama3.2-vision", 0, dir)

	sol, err := s.SolveImage(context.Background(), filepath.Join(dir, "nope.png"), 1)
	if err != nil {
		t.Fatalf("SolveImage: %v", err)
	}
	if sol.Source != SourceSimulated {
		t.Errorf("source = %q, want simulated", sol.Source)
	}
}

func TestSimulateSolutionDeterministic(t *testing.T) {
	a := simulateSolution(7)
	b := simulateSolution(7)
	if a != b {
		t.Error("simulated solutions must be deterministic per question number")
	}
	if !strings.Contains(a, "Question 7:") {
		t.Error("simulated solution must carry its question number")
	}
}

func TestSolveAllOrdersAndNumbers(t *testing.T) {
	dir := t.TempDir()
	img1 := writeTestImage(t, dir)

	s := New(nil, "", 0, filepath.Join(dir, "latex"))
	sols := s.SolveAll(context.Background(), []string{img1, img1, img1})
	if len(sols) != 3 {
		t.Fatalf("got %d solutions, want 3", len(sols))
	}
	for i, sol := range sols {
		if sol.QuestionNumber != i+1 {
			t.Errorf("solution %d numbered %d", i, sol.QuestionNumber)
		}
		if sol.Source != SourceSimulated {
			t.Errorf("nil provider must simulate, got %q", sol.Source)
		}
	}
}
