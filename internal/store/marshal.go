package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

// CellRecord is the database row shape for a cell.
type CellRecord struct {
	ID        string    `json:"id"`
	SheetID   string    `json:"sheet_id"`
	Value     string    `json:"value"`
	Formula   string    `json:"formula,omitempty"`
	IsFormula bool      `json:"is_formula"`
	RowNum    int       `json:"row_num"`
	ColID     string    `json:"col_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cell converts the record to the in-memory cell shape.
func (r CellRecord) Cell() grid.Cell {
	return grid.Cell{
		ID:        r.ID,
		Value:     r.Value,
		Formula:   r.Formula,
		IsFormula: r.IsFormula,
		Row:       r.RowNum,
		Column:    r.ColID,
	}
}

// CellRecordOf converts an in-memory cell to its row shape.
// UpdatedAt is stamped by the write, not here.
func CellRecordOf(cell grid.Cell, sheetID string) CellRecord {
	return CellRecord{
		ID:        cell.ID,
		SheetID:   sheetID,
		Value:     cell.Value,
		Formula:   cell.Formula,
		IsFormula: cell.IsFormula,
		RowNum:    cell.Row,
		ColID:     cell.Column,
	}
}

// ColumnRecord is the database row shape for a column definition.
type ColumnRecord struct {
	ID              string    `json:"id"`
	SheetID         string    `json:"sheet_id"`
	Label           string    `json:"label"`
	Type            string    `json:"type"`
	Formula         string    `json:"formula,omitempty"`
	ReadOnly        bool      `json:"read_only"`
	DropdownOptions []string  `json:"dropdown_options,omitempty"`
	Position        int       `json:"position"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Column converts the record to the in-memory column shape.
func (r ColumnRecord) Column() grid.Column {
	return grid.Column{
		ID:              r.ID,
		Label:           r.Label,
		Type:            grid.ColumnType(r.Type),
		ReadOnly:        r.ReadOnly,
		DropdownOptions: r.DropdownOptions,
		Formula:         r.Formula,
	}
}

// ColumnRecordOf converts an in-memory column to its row shape.
func ColumnRecordOf(col grid.Column, sheetID string, position int) ColumnRecord {
	return ColumnRecord{
		ID:              col.ID,
		SheetID:         sheetID,
		Label:           col.Label,
		Type:            string(col.Type),
		Formula:         col.Formula,
		ReadOnly:        col.ReadOnly,
		DropdownOptions: col.DropdownOptions,
		Position:        position,
	}
}

// marshalOptions serializes dropdown options to the JSON column.
// A column without options stores NULL, not "[]".
func marshalOptions(options []string) (sql.NullString, error) {
	if options == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal dropdown options: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalOptions is the inverse of marshalOptions.
func unmarshalOptions(raw sql.NullString) ([]string, error) {
	if !raw.Valid {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal([]byte(raw.String), &options); err != nil {
		return nil, fmt.Errorf("unmarshal dropdown options: %w", err)
	}
	return options, nil
}

// formatTime stores timestamps as RFC 3339 text with nanoseconds, which
// sorts lexicographically and round-trips exactly.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime is the inverse of formatTime.
func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
