package syncer

import (
	"reflect"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

// sheetDiff captures the remote writes implied by jumping between two
// settled states.
type sheetDiff struct {
	columns         []columnChange
	removedColumns  []string
	archivedChanged bool
	cells           []grid.Cell
}

type columnChange struct {
	col      grid.Column
	position int
}

// diffSheets compares two settled states field by field.
//
// Cells that exist only in before are emitted as empty-value cells:
// the remote record is cleared rather than deleted, matching the
// reducer's own non-destructive clear semantics.
func diffSheets(before, after grid.SheetState) sheetDiff {
	var d sheetDiff

	beforeCols := make(map[string]grid.Column, len(before.Columns))
	for _, col := range before.Columns {
		beforeCols[col.ID] = col
	}
	afterCols := make(map[string]struct{}, len(after.Columns))
	for position, col := range after.Columns {
		afterCols[col.ID] = struct{}{}
		prev, existed := beforeCols[col.ID]
		if !existed || !reflect.DeepEqual(prev, col) {
			d.columns = append(d.columns, columnChange{col: col, position: position})
		}
	}
	for _, col := range before.Columns {
		if _, kept := afterCols[col.ID]; !kept {
			d.removedColumns = append(d.removedColumns, col.ID)
		}
	}

	d.archivedChanged = !before.ArchivedRows.Equal(after.ArchivedRows)

	for id, cell := range after.Cells {
		prev, existed := before.Cells[id]
		if !existed || prev.Value != cell.Value || prev.Formula != cell.Formula {
			d.cells = append(d.cells, cell)
		}
	}
	for id, cell := range before.Cells {
		if _, kept := after.Cells[id]; !kept {
			cleared := grid.Cell{ID: id, Row: cell.Row, Column: cell.Column}
			d.cells = append(d.cells, cleared)
		}
	}

	return d
}
