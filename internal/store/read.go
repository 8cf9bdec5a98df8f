package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

// Cells reads every cell for the sheet into a cell map.
func (s *Store) Cells(ctx context.Context, sheetID string) (grid.CellMap, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, value, formula, is_formula, row_num, col_id, updated_at
		FROM cells
		WHERE sheet_id = ?
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("read cells: %w", err)
	}
	defer rows.Close()

	cells := grid.CellMap{}
	for rows.Next() {
		rec, err := scanCell(rows, sheetID)
		if err != nil {
			return nil, fmt.Errorf("read cells: %w", err)
		}
		cells[rec.ID] = rec.Cell()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cells: %w", err)
	}
	return cells, nil
}

// CellRecords reads every cell row for the sheet, timestamps included.
// Used where update times matter (echo rejection, diagnostics).
func (s *Store) CellRecords(ctx context.Context, sheetID string) ([]CellRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, value, formula, is_formula, row_num, col_id, updated_at
		FROM cells
		WHERE sheet_id = ?
		ORDER BY id
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("read cell records: %w", err)
	}
	defer rows.Close()

	var recs []CellRecord
	for rows.Next() {
		rec, err := scanCell(rows, sheetID)
		if err != nil {
			return nil, fmt.Errorf("read cell records: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cell records: %w", err)
	}
	return recs, nil
}

// Columns reads the sheet's column definitions ordered by position.
func (s *Store) Columns(ctx context.Context, sheetID string) ([]grid.Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, type, formula, read_only, dropdown_options, updated_at
		FROM columns
		WHERE sheet_id = ?
		ORDER BY position
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	defer rows.Close()

	var cols []grid.Column
	for rows.Next() {
		var (
			rec       ColumnRecord
			formula   sql.NullString
			options   sql.NullString
			updatedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Label, &rec.Type, &formula, &rec.ReadOnly, &options, &updatedAt); err != nil {
			return nil, fmt.Errorf("read columns: %w", err)
		}
		rec.Formula = formula.String
		rec.DropdownOptions, err = unmarshalOptions(options)
		if err != nil {
			return nil, fmt.Errorf("read columns: %w", err)
		}
		cols = append(cols, rec.Column())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return cols, nil
}

// ArchivedRows reads the sheet's archived-row set in ascending order.
func (s *Store) ArchivedRows(ctx context.Context, sheetID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_number FROM archived_rows
		WHERE sheet_id = ?
		ORDER BY row_number
	`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("read archived rows: %w", err)
	}
	defer rows.Close()

	var archived []int
	for rows.Next() {
		var row int
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("read archived rows: %w", err)
		}
		archived = append(archived, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read archived rows: %w", err)
	}
	return archived, nil
}

// scanCell reads one cells row. The formula column may be NULL.
func scanCell(rows *sql.Rows, sheetID string) (CellRecord, error) {
	var (
		rec       CellRecord
		formula   sql.NullString
		updatedAt string
	)
	if err := rows.Scan(&rec.ID, &rec.Value, &formula, &rec.IsFormula, &rec.RowNum, &rec.ColID, &updatedAt); err != nil {
		return CellRecord{}, err
	}
	rec.SheetID = sheetID
	rec.Formula = formula.String

	t, err := parseTime(updatedAt)
	if err != nil {
		return CellRecord{}, err
	}
	rec.UpdatedAt = t
	return rec, nil
}
