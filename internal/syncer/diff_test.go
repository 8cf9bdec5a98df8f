package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

func TestDiffSheetsNoChange(t *testing.T) {
	sheet := grid.SeedState()

	d := diffSheets(sheet, sheet.Clone())

	assert.Empty(t, d.columns)
	assert.Empty(t, d.removedColumns)
	assert.False(t, d.archivedChanged)
	assert.Empty(t, d.cells)
}

func TestDiffSheetsChangedCell(t *testing.T) {
	before := grid.SeedState()
	after := before.Clone()
	after.Cells["A1"] = grid.Cell{ID: "A1", Value: "999", Row: 1, Column: "A"}

	d := diffSheets(before, after)

	require.Len(t, d.cells, 1)
	assert.Equal(t, "999", d.cells[0].Value)
}

func TestDiffSheetsRemovedCellBecomesCleared(t *testing.T) {
	before := grid.SeedState()
	after := before.Clone()
	delete(after.Cells, "A1")

	d := diffSheets(before, after)

	require.Len(t, d.cells, 1)
	assert.Equal(t, "A1", d.cells[0].ID)
	assert.Equal(t, "", d.cells[0].Value)
	assert.Equal(t, 1, d.cells[0].Row)
	assert.Equal(t, "A", d.cells[0].Column)
}

func TestDiffSheetsColumnChanges(t *testing.T) {
	before := grid.SeedState()
	after := before.Clone()
	after.Columns[0].Label = "Renamed"
	after.Columns = append(after.Columns, grid.Column{ID: "F", Label: "New", Type: grid.ColumnText})

	d := diffSheets(before, after)

	require.Len(t, d.columns, 2)
	assert.Equal(t, "A", d.columns[0].col.ID)
	assert.Equal(t, 0, d.columns[0].position)
	assert.Equal(t, "F", d.columns[1].col.ID)
	assert.Equal(t, 5, d.columns[1].position)
}

func TestDiffSheetsRemovedColumn(t *testing.T) {
	before := grid.SeedState()
	after := before.Clone()
	after.Columns = after.Columns[1:]
	for id, cell := range after.Cells {
		if cell.Column == "A" {
			delete(after.Cells, id)
		}
	}

	d := diffSheets(before, after)

	assert.Equal(t, []string{"A"}, d.removedColumns)
	// The cascade-deleted cells surface as cleared cells.
	assert.Len(t, d.cells, 3)
}

func TestDiffSheetsArchivedRows(t *testing.T) {
	before := grid.SeedState()
	after := before.Clone()
	after.ArchivedRows = grid.NewRowSet(2)

	d := diffSheets(before, after)
	assert.True(t, d.archivedChanged)

	same := diffSheets(after, after.Clone())
	assert.False(t, same.archivedChanged)
}

func TestDiffSheetsIgnoresTransientState(t *testing.T) {
	before := grid.SeedState()
	after := before.Clone()
	after.SelectedCells = grid.NewCellSet("A1")
	after.EditingCell = "A1"

	d := diffSheets(before, after)

	assert.Empty(t, d.cells)
	assert.Empty(t, d.columns)
	assert.False(t, d.archivedChanged)
}
