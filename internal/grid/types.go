package grid

// ColumnType enumerates the column kinds.
type ColumnType string

const (
	// ColumnText holds free-form text.
	ColumnText ColumnType = "text"
	// ColumnNumber holds numeric text; no validation is enforced at the model level.
	ColumnNumber ColumnType = "number"
	// ColumnDropdown restricts values to the column's DropdownOptions.
	ColumnDropdown ColumnType = "dropdown"
	// ColumnFormula derives every cell from the column's shared Formula.
	// Cells in a formula column carry cached evaluator output, not user input.
	ColumnFormula ColumnType = "formula"
)

// Cell is a single addressable value.
//
// INVARIANT: ID == Column + strconv.Itoa(Row). A cell is relocated by
// re-keying (sort reassigns rows), never by mutating ID independently.
type Cell struct {
	ID        string `json:"id"`
	Value     string `json:"value"`
	Formula   string `json:"formula,omitempty"`
	IsFormula bool   `json:"isFormula,omitempty"`
	Row       int    `json:"row"`
	Column    string `json:"column"`
}

// CellMap is the sparse cell store keyed by cell ID.
// Absence of a key means "empty cell" - there are no tombstones.
type CellMap map[string]Cell

// Clone returns a deep copy of the map. Cell values are plain data,
// so a per-entry copy is sufficient.
func (m CellMap) Clone() CellMap {
	out := make(CellMap, len(m))
	for id, c := range m {
		out[id] = c
	}
	return out
}

// Rows returns the set of row numbers that have data in any column.
func (m CellMap) Rows() map[int]struct{} {
	rows := make(map[int]struct{})
	for _, c := range m {
		rows[c.Row] = struct{}{}
	}
	return rows
}

// Column is a typed column definition. Columns form an ordered sequence;
// position matters for display and for ID generation scanning.
//
// INVARIANTS:
//   - ID is unique among the sheet's columns
//   - Type == ColumnDropdown iff DropdownOptions is non-nil
//   - Type == ColumnFormula iff Formula is non-empty
type Column struct {
	ID              string     `json:"id"`
	Label           string     `json:"label"`
	Type            ColumnType `json:"type"`
	ReadOnly        bool       `json:"readOnly,omitempty"`
	DropdownOptions []string   `json:"dropdownOptions,omitempty"`
	Formula         string     `json:"formula,omitempty"`
}

// Clone returns a deep copy (DropdownOptions is the only reference field).
func (c Column) Clone() Column {
	out := c
	if c.DropdownOptions != nil {
		out.DropdownOptions = append([]string(nil), c.DropdownOptions...)
	}
	return out
}

// CloneColumns deep-copies an ordered column sequence.
func CloneColumns(cols []Column) []Column {
	if cols == nil {
		return nil
	}
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = c.Clone()
	}
	return out
}

// RowSet is a set of row numbers (archived rows, selected rows).
type RowSet map[int]struct{}

// NewRowSet builds a set from the given row numbers.
func NewRowSet(rows ...int) RowSet {
	s := make(RowSet, len(rows))
	for _, r := range rows {
		s[r] = struct{}{}
	}
	return s
}

// Clone returns a copy of the set.
func (s RowSet) Clone() RowSet {
	out := make(RowSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}

// Contains reports membership.
func (s RowSet) Contains(row int) bool {
	_, ok := s[row]
	return ok
}

// Sorted returns the rows in ascending order. Used for serialization
// so persisted snapshots are deterministic.
func (s RowSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Equal reports whether two sets hold the same rows.
func (s RowSet) Equal(other RowSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Contains(r) {
			return false
		}
	}
	return true
}

// CellSet is a set of cell IDs (the transient selection).
type CellSet map[string]struct{}

// NewCellSet builds a set from the given cell IDs.
func NewCellSet(ids ...string) CellSet {
	s := make(CellSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Clone returns a copy of the set.
func (s CellSet) Clone() CellSet {
	out := make(CellSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// SheetState is the aggregate mutated exclusively through the reducer.
//
// Cells, Columns, ArchivedRows and ShowArchivedRows are the persistent
// slices. SelectedCells and EditingCell are transient: structurally part
// of the state, excluded from meaningful history diffing, never persisted.
type SheetState struct {
	Cells            CellMap  `json:"cells"`
	Columns          []Column `json:"columns"`
	ArchivedRows     RowSet   `json:"archivedRows"`
	ShowArchivedRows bool     `json:"showArchivedRows"`

	SelectedCells CellSet `json:"-"`
	EditingCell   string  `json:"-"`
}

// Clone deep-copies the whole aggregate, transient fields included.
// History snapshots rely on this being a true copy with no sharing.
func (s SheetState) Clone() SheetState {
	return SheetState{
		Cells:            s.Cells.Clone(),
		Columns:          CloneColumns(s.Columns),
		ArchivedRows:     s.ArchivedRows.Clone(),
		ShowArchivedRows: s.ShowArchivedRows,
		SelectedCells:    s.SelectedCells.Clone(),
		EditingCell:      s.EditingCell,
	}
}
