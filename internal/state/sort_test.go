package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

func TestSortByColumnNumericDescending(t *testing.T) {
	s := Seed()

	s = Reduce(s, grid.SortByColumn("A", false))

	assert.Equal(t, "300", s.Sheet.Cells["A1"].Value)
	assert.Equal(t, "200", s.Sheet.Cells["A2"].Value)
	assert.Equal(t, "100", s.Sheet.Cells["A3"].Value)

	// Whole rows move together, not just the sorted column.
	assert.Equal(t, "Inactive", s.Sheet.Cells["C1"].Value)
	assert.Equal(t, "Test note 3", s.Sheet.Cells["D1"].Value)
}

func TestSortByColumnAscendingIsIdempotent(t *testing.T) {
	s := Seed()

	once := Reduce(s, grid.SortByColumn("A", true))
	twice := Reduce(once, grid.SortByColumn("A", true))

	assert.Equal(t, once.Sheet.Cells, twice.Sheet.Cells)
}

func TestSortRekeysCellIDs(t *testing.T) {
	cells := grid.CellMap{
		"A2": {ID: "A2", Value: "1", Row: 2, Column: "A"},
		"A5": {ID: "A5", Value: "2", Row: 5, Column: "A"},
		"B5": {ID: "B5", Value: "x", Row: 5, Column: "B"},
	}

	out := sortRows(cells, "A", true)

	// Sparse row numbers compact to 1..N.
	require.Len(t, out, 3)
	assert.Equal(t, "1", out["A1"].Value)
	assert.Equal(t, "2", out["A2"].Value)
	assert.Equal(t, "x", out["B2"].Value)
	assert.Equal(t, 2, out["B2"].Row)
	assert.NotContains(t, out, "A5")
}

func TestSortLexicographicFallback(t *testing.T) {
	cells := grid.CellMap{
		"D1": {ID: "D1", Value: "banana", Row: 1, Column: "D"},
		"D2": {ID: "D2", Value: "apple", Row: 2, Column: "D"},
		"D3": {ID: "D3", Value: "cherry", Row: 3, Column: "D"},
	}

	out := sortRows(cells, "D", true)

	assert.Equal(t, "apple", out["D1"].Value)
	assert.Equal(t, "banana", out["D2"].Value)
	assert.Equal(t, "cherry", out["D3"].Value)
}

func TestSortTiesKeepOriginalOrder(t *testing.T) {
	cells := grid.CellMap{
		"A1": {ID: "A1", Value: "5", Row: 1, Column: "A"},
		"B1": {ID: "B1", Value: "first", Row: 1, Column: "B"},
		"A2": {ID: "A2", Value: "5", Row: 2, Column: "A"},
		"B2": {ID: "B2", Value: "second", Row: 2, Column: "B"},
	}

	out := sortRows(cells, "A", false)

	assert.Equal(t, "first", out["B1"].Value)
	assert.Equal(t, "second", out["B2"].Value)
}

func TestSortRecomputesFormulaColumns(t *testing.T) {
	s := Seed()
	s = Reduce(s, grid.SetColumnFormula("E", "A*2"))
	require.Equal(t, "200", s.Sheet.Cells["E1"].Value)

	s = Reduce(s, grid.SortByColumn("A", false))

	// A1 is now 300, so E1 must follow the relocated source value.
	assert.Equal(t, "600", s.Sheet.Cells["E1"].Value)
}

func TestSortPushesHistory(t *testing.T) {
	s := Seed()
	s = Reduce(s, grid.SortByColumn("A", false))
	require.Equal(t, "300", s.Sheet.Cells["A1"].Value)

	s = Reduce(s, grid.Undo())
	assert.Equal(t, "100", s.Sheet.Cells["A1"].Value)
}
