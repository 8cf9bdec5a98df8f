package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetStateCloneIsIndependent(t *testing.T) {
	original := SeedState()
	original.ArchivedRows = NewRowSet(2)
	original.SelectedCells = NewCellSet("A1", "B1")

	clone := original.Clone()

	// Mutating the clone must never reach the original.
	clone.Cells["A1"] = Cell{ID: "A1", Value: "mutated", Row: 1, Column: "A"}
	clone.Columns[0].Label = "mutated"
	clone.Columns[2].DropdownOptions[0] = "mutated"
	clone.ArchivedRows[9] = struct{}{}
	clone.SelectedCells["Z9"] = struct{}{}

	assert.Equal(t, "100", original.Cells["A1"].Value)
	assert.Equal(t, "Column A", original.Columns[0].Label)
	assert.Equal(t, "Active", original.Columns[2].DropdownOptions[0])
	assert.False(t, original.ArchivedRows.Contains(9))
	assert.NotContains(t, original.SelectedCells, "Z9")
}

func TestCellMapRows(t *testing.T) {
	cells := CellMap{
		"A1": {ID: "A1", Row: 1, Column: "A"},
		"B1": {ID: "B1", Row: 1, Column: "B"},
		"A5": {ID: "A5", Row: 5, Column: "A"},
	}

	rows := cells.Rows()
	assert.Len(t, rows, 2)
	assert.Contains(t, rows, 1)
	assert.Contains(t, rows, 5)
}

func TestRowSetSorted(t *testing.T) {
	s := NewRowSet(9, 1, 5, 3)
	assert.Equal(t, []int{1, 3, 5, 9}, s.Sorted())
	assert.Empty(t, NewRowSet().Sorted())
}

func TestRowSetEqual(t *testing.T) {
	assert.True(t, NewRowSet(1, 2).Equal(NewRowSet(2, 1)))
	assert.False(t, NewRowSet(1, 2).Equal(NewRowSet(1)))
	assert.False(t, NewRowSet(1, 2).Equal(NewRowSet(1, 3)))
	assert.True(t, NewRowSet().Equal(NewRowSet()))
}

func TestPushesHistory(t *testing.T) {
	pushing := []Action{
		UpdateCell("A1", "1"),
		ArchiveRows(1),
		UnarchiveRows(1),
		SortByColumn("A", true),
		DeleteSelectedCells(),
		AddColumn(Column{ID: "F"}),
		DeleteColumn("F"),
		RenameColumn("A", "x"),
		ToggleColumnLock("A"),
		SetColumnFormula("E", "A+B"),
	}
	for _, a := range pushing {
		assert.True(t, a.PushesHistory(), string(a.Kind))
	}

	transient := []Action{
		UpdateCellExternal("A1", "1", "", false),
		SelectCells("A1"),
		DeselectCells("A1"),
		StartEditing("A1"),
		StopEditing(),
		Undo(),
		Redo(),
		ToggleArchivedRowsVisibility(),
		LoadCells(CellMap{}),
		LoadColumns(nil),
		LoadArchivedRows(nil),
	}
	for _, a := range transient {
		assert.False(t, a.PushesHistory(), string(a.Kind))
	}
}

func TestSeedStateShape(t *testing.T) {
	st := SeedState()

	require.Len(t, st.Columns, 5)
	assert.Equal(t, "A", st.Columns[0].ID)
	assert.Equal(t, ColumnDropdown, st.Columns[2].Type)
	assert.Equal(t, []string{"Active", "Inactive", "Pending"}, st.Columns[2].DropdownOptions)

	assert.Len(t, st.Cells, 9)
	assert.Equal(t, "100", st.Cells["A1"].Value)
	assert.True(t, st.ShowArchivedRows)
	assert.Empty(t, st.ArchivedRows)
}

func TestSeedReturnsFreshCopies(t *testing.T) {
	a := SeedColumns()
	a[2].DropdownOptions[0] = "mutated"
	b := SeedColumns()
	assert.Equal(t, "Active", b[2].DropdownOptions[0])

	c1 := SeedCells()
	c1["A1"] = Cell{ID: "A1", Value: "mutated"}
	c2 := SeedCells()
	assert.Equal(t, "100", c2["A1"].Value)
}
