package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

func TestNewSeedsHistory(t *testing.T) {
	s := New(grid.SeedState())

	assert.Equal(t, 1, s.HistoryLen())
	assert.Equal(t, 0, s.HistoryIndex())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestNewGuardsNilCollections(t *testing.T) {
	s := New(grid.SheetState{})

	require.NotNil(t, s.Sheet.Cells)
	require.NotNil(t, s.Sheet.ArchivedRows)
	require.NotNil(t, s.Sheet.SelectedCells)
}

func TestNewRecalculatesFormulaColumns(t *testing.T) {
	sheet := grid.SheetState{
		Cells: grid.CellMap{
			"A1": {ID: "A1", Value: "4", Row: 1, Column: "A"},
		},
		Columns: []grid.Column{
			{ID: "A", Label: "A", Type: grid.ColumnNumber},
			{ID: "B", Label: "B", Type: grid.ColumnFormula, Formula: "A*2"},
		},
	}

	s := New(sheet)

	require.Contains(t, s.Sheet.Cells, "B1")
	assert.Equal(t, "8", s.Sheet.Cells["B1"].Value)
	assert.True(t, s.Sheet.Cells["B1"].IsFormula)
}

func TestNewDoesNotAliasInput(t *testing.T) {
	sheet := grid.SeedState()
	s := New(sheet)

	sheet.Cells["A1"] = grid.Cell{ID: "A1", Value: "mutated", Row: 1, Column: "A"}
	assert.Equal(t, "100", s.Sheet.Cells["A1"].Value)
}

func TestSeedMatchesDefaultLayout(t *testing.T) {
	s := Seed()

	assert.Len(t, s.Sheet.Columns, 5)
	assert.Equal(t, "100", s.Sheet.Cells["A1"].Value)
	assert.True(t, s.Sheet.ShowArchivedRows)
}
