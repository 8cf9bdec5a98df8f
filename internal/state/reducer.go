package state

import (
	"strings"

	"github.com/tandemgrid/tandemgrid/internal/formula"
	"github.com/tandemgrid/tandemgrid/internal/grid"
)

// Reduce applies one action to the state and returns the successor.
//
// Pure and total: the input state is never mutated, unknown action kinds
// return it unchanged, and malformed payloads (bad cell IDs) are no-ops.
// History snapshots are appended here and only here, per the push rule
// on grid.Action.PushesHistory.
func Reduce(s State, a grid.Action) State {
	switch a.Kind {

	case grid.ActionUpdateCell:
		next, ok := applyCellWrite(s.Sheet, a)
		if !ok {
			return s
		}
		return pushHistory(s, next)

	case grid.ActionUpdateCellExternal:
		// Same write path, but remote-origin edits must not create
		// local undo entries.
		next, ok := applyCellWrite(s.Sheet, a)
		if !ok {
			return s
		}
		return replaceSheet(s, next)

	case grid.ActionArchiveRows:
		next := s.Sheet.Clone()
		for _, row := range a.Rows {
			next.ArchivedRows[row] = struct{}{}
		}
		return pushHistory(s, next)

	case grid.ActionUnarchiveRows:
		next := s.Sheet.Clone()
		for _, row := range a.Rows {
			delete(next.ArchivedRows, row)
		}
		return pushHistory(s, next)

	case grid.ActionSortByColumn:
		next := s.Sheet.Clone()
		sorted := sortRows(next.Cells, a.ColumnID, a.Ascending)
		next.Cells = Recalculate(sorted, next.Columns)
		return pushHistory(s, next)

	case grid.ActionDeleteSelected:
		next := s.Sheet.Clone()
		for id := range s.Sheet.SelectedCells {
			if cell, ok := next.Cells[id]; ok {
				cell.Value = ""
				next.Cells[id] = cell
			}
		}
		next.SelectedCells = grid.NewCellSet()
		return pushHistory(s, next)

	case grid.ActionSelectCells:
		next := s.Sheet.Clone()
		next.SelectedCells = grid.NewCellSet(a.CellIDs...)
		return replaceSheet(s, next)

	case grid.ActionDeselectCells:
		next := s.Sheet.Clone()
		for _, id := range a.CellIDs {
			delete(next.SelectedCells, id)
		}
		return replaceSheet(s, next)

	case grid.ActionStartEditing:
		next := s.Sheet.Clone()
		next.EditingCell = a.CellID
		return replaceSheet(s, next)

	case grid.ActionStopEditing:
		next := s.Sheet.Clone()
		next.EditingCell = ""
		return replaceSheet(s, next)

	case grid.ActionUndo:
		return undo(s)

	case grid.ActionRedo:
		return redo(s)

	case grid.ActionAddColumn:
		next := s.Sheet.Clone()
		next.Columns = append(next.Columns, a.Column.Clone())
		return pushHistory(s, next)

	case grid.ActionDeleteColumn:
		next := s.Sheet.Clone()
		cols := next.Columns[:0]
		for _, col := range next.Columns {
			if col.ID != a.ColumnID {
				cols = append(cols, col)
			}
		}
		next.Columns = cols
		for id, cell := range next.Cells {
			if cell.Column == a.ColumnID {
				delete(next.Cells, id)
			}
		}
		return pushHistory(s, next)

	case grid.ActionRenameColumn:
		next := s.Sheet.Clone()
		for i := range next.Columns {
			if next.Columns[i].ID == a.ColumnID {
				next.Columns[i].Label = a.Label
			}
		}
		return pushHistory(s, next)

	case grid.ActionToggleColumnLock:
		next := s.Sheet.Clone()
		for i := range next.Columns {
			if next.Columns[i].ID == a.ColumnID {
				next.Columns[i].ReadOnly = !next.Columns[i].ReadOnly
			}
		}
		return pushHistory(s, next)

	case grid.ActionSetColumnFormula:
		return pushHistory(s, applyColumnFormula(s.Sheet, a.ColumnID, a.Formula))

	case grid.ActionToggleArchivedView:
		next := s.Sheet.Clone()
		next.ShowArchivedRows = !next.ShowArchivedRows
		return replaceSheet(s, next)

	case grid.ActionLoadCells:
		next := s.Sheet.Clone()
		next.Cells = a.Cells.Clone()
		return replaceSheet(s, next)

	case grid.ActionLoadColumns:
		next := s.Sheet.Clone()
		next.Columns = grid.CloneColumns(a.Columns)
		return replaceSheet(s, next)

	case grid.ActionLoadArchivedRows:
		next := s.Sheet.Clone()
		next.ArchivedRows = grid.NewRowSet(a.Rows...)
		return replaceSheet(s, next)
	}

	return s
}

// replaceSheet swaps the sheet without touching history.
func replaceSheet(s State, next grid.SheetState) State {
	return State{Sheet: next, history: s.history, historyIndex: s.historyIndex}
}

// applyCellWrite handles UPDATE_CELL and UPDATE_CELL_EXTERNAL: parse the
// ID, interpret a leading "=" as a formula definition, evaluate, write
// the cell, and recompute every formula column. Returns ok=false for a
// malformed cell ID (caller treats the action as a no-op).
func applyCellWrite(sheet grid.SheetState, a grid.Action) (grid.SheetState, bool) {
	column, row, err := grid.ParseCellID(a.CellID)
	if err != nil {
		return grid.SheetState{}, false
	}

	value := a.Value
	expr := a.Formula
	isFormula := a.IsFormula
	if !isFormula && strings.HasPrefix(value, "=") {
		expr = strings.TrimPrefix(value, "=")
		isFormula = true
	}
	if isFormula && expr != "" {
		// Evaluation failure keeps the raw input as the displayed value.
		if result, ok := formula.Evaluate(expr, row, sheet.Cells); ok {
			value = result
		}
	}

	next := sheet.Clone()
	next.Cells[a.CellID] = grid.Cell{
		ID:        a.CellID,
		Value:     value,
		Formula:   expr,
		IsFormula: isFormula,
		Row:       row,
		Column:    column,
	}
	next.Cells = Recalculate(next.Cells, next.Columns)
	return next, true
}

// applyColumnFormula sets or clears a column formula.
//
// Setting evaluates the formula for rows 1..MaxFormulaRows and
// materializes the results. Clearing reverts the column to text and
// strips formula metadata from its cells while preserving each cell's
// last computed value as a plain value.
func applyColumnFormula(sheet grid.SheetState, columnID, expr string) grid.SheetState {
	next := sheet.Clone()

	for i := range next.Columns {
		if next.Columns[i].ID != columnID {
			continue
		}
		if expr != "" {
			next.Columns[i].Type = grid.ColumnFormula
			next.Columns[i].Formula = expr
		} else {
			next.Columns[i].Type = grid.ColumnText
			next.Columns[i].Formula = ""
		}
	}

	for row := 1; row <= MaxFormulaRows; row++ {
		id := grid.MakeCellID(columnID, row)
		if expr != "" {
			value, ok := formula.Evaluate(expr, row, next.Cells)
			if !ok {
				continue
			}
			next.Cells[id] = grid.Cell{
				ID:        id,
				Value:     value,
				Formula:   expr,
				IsFormula: true,
				Row:       row,
				Column:    columnID,
			}
		} else if cell, ok := next.Cells[id]; ok && cell.IsFormula {
			next.Cells[id] = grid.Cell{
				ID:     id,
				Value:  cell.Value,
				Row:    row,
				Column: columnID,
			}
		}
	}

	// Other formula columns may read this one; re-derive them all.
	next.Cells = Recalculate(next.Cells, next.Columns)
	return next
}
