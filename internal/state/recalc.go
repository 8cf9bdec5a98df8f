package state

import (
	"github.com/tandemgrid/tandemgrid/internal/formula"
	"github.com/tandemgrid/tandemgrid/internal/grid"
)

// Recalculate re-derives every cell belonging to a formula column, for
// every row that has any data in any column. This is a full column
// recompute rather than an incremental one - acceptable because the grid
// size is bounded - and it is idempotent: running it twice over an
// unchanged map yields identical results.
//
// Evaluation reads the pre-recalc cell map throughout, so formula
// columns never observe each other's fresh outputs within one pass.
func Recalculate(cells grid.CellMap, columns []grid.Column) grid.CellMap {
	out := cells.Clone()

	for _, col := range columns {
		if col.Type != grid.ColumnFormula || col.Formula == "" {
			continue
		}
		for row := range cells.Rows() {
			value, ok := formula.Evaluate(col.Formula, row, cells)
			if !ok {
				// Unevaluable: leave the cell as previously computed.
				continue
			}
			id := grid.MakeCellID(col.ID, row)
			out[id] = grid.Cell{
				ID:        id,
				Value:     value,
				Formula:   col.Formula,
				IsFormula: true,
				Row:       row,
				Column:    col.ID,
			}
		}
	}

	return out
}
