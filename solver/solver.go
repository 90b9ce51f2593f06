// Package solver sends cropped question images to a vision model for
// step-by-step LaTeX solutions, with a deterministic simulated fallback so
// a remote-service hiccup never stalls the question bank.
package solver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/exambank/exambank/llm"
)

// Source tags where a solution came from.
type Source string

const (
	// SourceModel means the vision model produced the solution.
	SourceModel Source = "model"
	// SourceSimulated means the model was unavailable or failed and a
	// canned solution was substituted.
	SourceSimulated Source = "simulated"
)

// Solution is one solved question, written to a .tex file in the solver's
// output directory.
type Solution struct {
	QuestionNumber int
	Latex          string
	Source         Source
	Filename       string
	Path           string
}

// Solver drives the vision model over question images.
type Solver struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
	latexDir string
}

// New returns a Solver writing per-question .tex files into latexDir.
// provider may be nil, in which case every solution is simulated.
func New(provider llm.Provider, model string, timeout time.Duration, latexDir string) *Solver {
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Solver{provider: provider, model: model, timeout: timeout, latexDir: latexDir}
}

// SolveImage solves a single question image. Model failures degrade to a
// simulated solution; only the final file write can fail.
func (s *Solver) SolveImage(ctx context.Context, imagePath string, questionNumber int) (*Solution, error) {
	latex, source := s.solve(ctx, imagePath, questionNumber)

	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	filename := fmt.Sprintf("Q%03d_%s.tex", questionNumber, base)
	path := filepath.Join(s.latexDir, filename)

	if err := os.MkdirAll(s.latexDir, 0755); err != nil {
		return nil, fmt.Errorf("creating latex dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(latex), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	return &Solution{
		QuestionNumber: questionNumber,
		Latex:          latex,
		Source:         source,
		Filename:       filename,
		Path:           path,
	}, nil
}

// SolveAll solves images in order, numbering questions from 1. A failure
// to write one solution skips that image only.
func (s *Solver) SolveAll(ctx context.Context, imagePaths []string) []Solution {
	solutions := make([]Solution, 0, len(imagePaths))
	for i, path := range imagePaths {
		sol, err := s.SolveImage(ctx, path, i+1)
		if err != nil {
			slog.Warn("solver: skipping image", "path", path, "error", err)
			continue
		}
		solutions = append(solutions, *sol)
	}
	return solutions
}

func (s *Solver) solve(ctx context.Context, imagePath string, questionNumber int) (string, Source) {
	if s.provider == nil {
		return simulateSolution(questionNumber), SourceSimulated
	}

	img, err := os.ReadFile(imagePath)
	if err != nil {
		slog.Warn("solver: cannot read image, simulating", "path", imagePath, "error", err)
		return simulateSolution(questionNumber), SourceSimulated
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.Generate(callCtx, llm.GenerateRequest{
		Model:       s.model,
		Prompt:      solvePrompt(questionNumber),
		Images:      [][]byte{img},
		Temperature: 0.1,
		TopP:        0.9,
		NumPredict:  4000,
	})
	if err != nil {
		slog.Warn("solver: vision call failed, simulating",
			"question", questionNumber, "error", err)
		return simulateSolution(questionNumber), SourceSimulated
	}
	if strings.TrimSpace(resp) == "" {
		slog.Warn("solver: empty vision response, simulating", "question", questionNumber)
		return simulateSolution(questionNumber), SourceSimulated
	}

	return resp, SourceModel
}
