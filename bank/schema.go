package bank

import "fmt"

// schemaSQL returns the DDL for all tables. embeddingDim controls the
// vec0 virtual table dimension.
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
-- One row per PDF-processing run
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY,
    pdf_path TEXT NOT NULL,
    questions_found INTEGER NOT NULL DEFAULT 0,
    questions_extracted INTEGER NOT NULL DEFAULT 0,
    report_path TEXT,
    viewer_path TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Extracted questions, one per successful crop
CREATE TABLE IF NOT EXISTS questions (
    id INTEGER PRIMARY KEY,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    sequence_number INTEGER NOT NULL,
    external_id TEXT NOT NULL,
    page INTEGER NOT NULL,
    sentence TEXT NOT NULL,
    sentence_source TEXT NOT NULL,
    image_file TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Solutions produced by the vision solver
CREATE TABLE IF NOT EXISTS solutions (
    id INTEGER PRIMARY KEY,
    question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    latex TEXT NOT NULL,
    source TEXT NOT NULL,
    model TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Question-sentence embeddings via sqlite-vec, for cross-run duplicate
-- detection
CREATE VIRTUAL TABLE IF NOT EXISTS vec_questions USING vec0(
    question_id INTEGER PRIMARY KEY,
    embedding float[%d]
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_questions_run ON questions(run_id);
CREATE INDEX IF NOT EXISTS idx_questions_sequence ON questions(sequence_number);
CREATE INDEX IF NOT EXISTS idx_solutions_question ON solutions(question_id);
CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(pdf_path);
`, embeddingDim)
}
