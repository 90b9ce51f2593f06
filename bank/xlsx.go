package bank

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var xlsxHeader = []string{
	"Run", "PDF", "Question", "External ID", "Page",
	"Sentence", "Sentence Source", "Image File", "Solution Source", "Solver Model",
}

// ExportXLSX writes the full question bank (all runs, joined with their
// solutions where present) to a spreadsheet at path.
func (s *Store) ExportXLSX(ctx context.Context, path string) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.run_id, r.pdf_path, q.sequence_number, q.external_id, q.page,
			q.sentence, q.sentence_source, q.image_file,
			COALESCE(sol.source, ''), COALESCE(sol.model, '')
		FROM questions q
		JOIN runs r ON r.id = q.run_id
		LEFT JOIN solutions sol ON sol.question_id = q.id
		ORDER BY q.run_id, q.sequence_number
	`)
	if err != nil {
		return fmt.Errorf("querying question bank: %w", err)
	}
	defer rows.Close()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Questions"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, name := range xlsxHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, name)
	}

	rowNum := 2
	for rows.Next() {
		var runID int64
		var pdfPath, externalID, sentence, source, imageFile, solSource, solModel string
		var sequence, page int
		if err := rows.Scan(&runID, &pdfPath, &sequence, &externalID, &page,
			&sentence, &source, &imageFile, &solSource, &solModel); err != nil {
			return fmt.Errorf("scanning question row: %w", err)
		}

		values := []any{runID, pdfPath, sequence, externalID, page,
			sentence, source, imageFile, solSource, solModel}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			f.SetCellValue(sheet, cell, v)
		}
		rowNum++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating question rows: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
