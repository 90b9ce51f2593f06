// Package bank persists extracted questions and their solutions in a
// SQLite question bank, with sentence embeddings for cross-run duplicate
// detection.
package bank

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// Run represents a row in the runs table.
type Run struct {
	ID                 int64  `json:"id"`
	PDFPath            string `json:"pdf_path"`
	QuestionsFound     int    `json:"questions_found"`
	QuestionsExtracted int    `json:"questions_extracted"`
	ReportPath         string `json:"report_path"`
	ViewerPath         string `json:"viewer_path"`
	CreatedAt          string `json:"created_at"`
}

// Question represents a row in the questions table.
type Question struct {
	ID             int64  `json:"id"`
	RunID          int64  `json:"run_id"`
	SequenceNumber int    `json:"sequence_number"`
	ExternalID     string `json:"external_id"`
	Page           int    `json:"page"`
	Sentence       string `json:"sentence"`
	SentenceSource string `json:"sentence_source"`
	ImageFile      string `json:"image_file"`
}

// Solution represents a row in the solutions table.
type Solution struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Latex      string `json:"latex"`
	Source     string `json:"source"`
	Model      string `json:"model"`
}

// Similar is one hit from a semantic duplicate search.
type Similar struct {
	QuestionID     int64   `json:"question_id"`
	RunID          int64   `json:"run_id"`
	SequenceNumber int     `json:"sequence_number"`
	Sentence       string  `json:"sentence"`
	Score          float64 `json:"score"`
}

// Store wraps the SQLite database for all exambank persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including the sqlite-vec virtual table.
func New(dbPath string, embeddingDim int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL(embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun records a processing run and returns its ID.
func (s *Store) CreateRun(ctx context.Context, r Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (pdf_path, questions_found, questions_extracted, report_path, viewer_path)
		VALUES (?, ?, ?, ?, ?)
	`, r.PDFPath, r.QuestionsFound, r.QuestionsExtracted, r.ReportPath, r.ViewerPath)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertQuestion stores one extracted question and returns its ID.
func (s *Store) InsertQuestion(ctx context.Context, q Question) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO questions (run_id, sequence_number, external_id, page, sentence, sentence_source, image_file)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.RunID, q.SequenceNumber, q.ExternalID, q.Page, q.Sentence, q.SentenceSource, q.ImageFile)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertSolution stores a solution for a question.
func (s *Store) InsertSolution(ctx context.Context, sol Solution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO solutions (question_id, latex, source, model)
		VALUES (?, ?, ?, ?)
	`, sol.QuestionID, sol.Latex, sol.Source, sol.Model)
	return err
}

// InsertEmbedding stores a sentence embedding for a question.
func (s *Store) InsertEmbedding(ctx context.Context, questionID int64, embedding []float32) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO vec_questions (question_id, embedding) VALUES (?, ?)",
		questionID, serializeFloat32(embedding))
	return err
}

// SimilarQuestions performs a KNN search over question-sentence
// embeddings, returning the top-k nearest questions across all runs.
func (s *Store) SimilarQuestions(ctx context.Context, queryEmbedding []float32, k int) ([]Similar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.question_id, v.distance,
			q.run_id, q.sequence_number, q.sentence
		FROM vec_questions v
		JOIN questions q ON q.id = v.question_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(queryEmbedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Similar
	for rows.Next() {
		var r Similar
		var distance float64
		if err := rows.Scan(&r.QuestionID, &distance,
			&r.RunID, &r.SequenceNumber, &r.Sentence); err != nil {
			return nil, err
		}
		// Convert distance to similarity score (1 - distance for cosine)
		r.Score = 1.0 - distance
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListQuestions returns all questions of a run in sequence order.
func (s *Store) ListQuestions(ctx context.Context, runID int64) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, sequence_number, external_id, page, sentence, sentence_source, image_file
		FROM questions
		WHERE run_id = ?
		ORDER BY sequence_number
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.RunID, &q.SequenceNumber, &q.ExternalID,
			&q.Page, &q.Sentence, &q.SentenceSource, &q.ImageFile); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetSolution returns the stored solution for a question, if any.
func (s *Store) GetSolution(ctx context.Context, questionID int64) (*Solution, error) {
	sol := &Solution{}
	var model sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, latex, source, model
		FROM solutions WHERE question_id = ?
	`, questionID).Scan(&sol.ID, &sol.QuestionID, &sol.Latex, &sol.Source, &model)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sol.Model = model.String
	return sol, nil
}

func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
