package grid

// ActionKind discriminates the action union. String values double as the
// wire/log names for each action.
type ActionKind string

const (
	ActionUpdateCell         ActionKind = "UPDATE_CELL"
	ActionUpdateCellExternal ActionKind = "UPDATE_CELL_EXTERNAL"
	ActionArchiveRows        ActionKind = "ARCHIVE_ROWS"
	ActionUnarchiveRows      ActionKind = "UNARCHIVE_ROWS"
	ActionSortByColumn       ActionKind = "SORT_BY_COLUMN"
	ActionDeleteSelected     ActionKind = "DELETE_SELECTED_CELLS"
	ActionSelectCells        ActionKind = "SELECT_CELLS"
	ActionDeselectCells      ActionKind = "DESELECT_CELLS"
	ActionStartEditing       ActionKind = "START_EDITING_CELL"
	ActionStopEditing        ActionKind = "STOP_EDITING_CELL"
	ActionUndo               ActionKind = "UNDO"
	ActionRedo               ActionKind = "REDO"
	ActionAddColumn          ActionKind = "ADD_COLUMN"
	ActionDeleteColumn       ActionKind = "DELETE_COLUMN"
	ActionRenameColumn       ActionKind = "RENAME_COLUMN"
	ActionToggleColumnLock   ActionKind = "TOGGLE_COLUMN_LOCK"
	ActionSetColumnFormula   ActionKind = "SET_COLUMN_FORMULA"
	ActionToggleArchivedView ActionKind = "TOGGLE_ARCHIVED_ROWS_VISIBILITY"
	ActionLoadCells          ActionKind = "LOAD_DATA"
	ActionLoadColumns        ActionKind = "LOAD_COLUMNS"
	ActionLoadArchivedRows   ActionKind = "LOAD_ARCHIVED_ROWS"
)

// Action is the tagged union dispatched to the reducer. Kind selects
// which payload fields are meaningful; unused fields stay zero.
//
// Use the constructors below rather than building literals - they keep
// the payload shape tied to the kind.
type Action struct {
	Kind ActionKind

	// Cell payloads (UPDATE_CELL, UPDATE_CELL_EXTERNAL).
	CellID    string
	Value     string
	Formula   string
	IsFormula bool

	// Row payloads (ARCHIVE_ROWS, UNARCHIVE_ROWS, LOAD_ARCHIVED_ROWS).
	Rows []int

	// Selection payloads (SELECT_CELLS, DESELECT_CELLS, START_EDITING_CELL).
	CellIDs []string

	// Column payloads.
	Column    Column // ADD_COLUMN
	ColumnID  string // DELETE/RENAME/TOGGLE_LOCK/SET_FORMULA/SORT
	Label     string // RENAME_COLUMN
	Ascending bool   // SORT_BY_COLUMN

	// Bulk payloads (LOAD_DATA, LOAD_COLUMNS).
	Cells   CellMap
	Columns []Column
}

// PushesHistory reports whether the action appends a history snapshot.
// Exactly the user-intent-bearing actions push; transient view actions,
// externally-sourced updates and bulk loads never do. UNDO and REDO move
// within history without appending.
func (a Action) PushesHistory() bool {
	switch a.Kind {
	case ActionUpdateCell, ActionArchiveRows, ActionUnarchiveRows,
		ActionSortByColumn, ActionDeleteSelected, ActionAddColumn,
		ActionDeleteColumn, ActionRenameColumn, ActionToggleColumnLock,
		ActionSetColumnFormula:
		return true
	}
	return false
}

// UpdateCell builds a local cell edit. A value beginning with "=" is
// interpreted by the reducer as a formula definition.
func UpdateCell(cellID, value string) Action {
	return Action{Kind: ActionUpdateCell, CellID: cellID, Value: value}
}

// UpdateCellExternal builds a remote-origin cell write. Identical to
// UpdateCell in effect except it never creates a local undo entry.
func UpdateCellExternal(cellID, value, formula string, isFormula bool) Action {
	return Action{
		Kind:      ActionUpdateCellExternal,
		CellID:    cellID,
		Value:     value,
		Formula:   formula,
		IsFormula: isFormula,
	}
}

// ArchiveRows flags rows as archived (set union).
func ArchiveRows(rows ...int) Action {
	return Action{Kind: ActionArchiveRows, Rows: rows}
}

// UnarchiveRows removes rows from the archived set (set difference).
func UnarchiveRows(rows ...int) Action {
	return Action{Kind: ActionUnarchiveRows, Rows: rows}
}

// SortByColumn reorders all rows by the given column's values.
func SortByColumn(columnID string, ascending bool) Action {
	return Action{Kind: ActionSortByColumn, ColumnID: columnID, Ascending: ascending}
}

// DeleteSelectedCells clears the value of every selected cell.
func DeleteSelectedCells() Action {
	return Action{Kind: ActionDeleteSelected}
}

// SelectCells replaces the selection set (single-click semantics).
func SelectCells(cellIDs ...string) Action {
	return Action{Kind: ActionSelectCells, CellIDs: cellIDs}
}

// DeselectCells removes the given cells from the selection set.
func DeselectCells(cellIDs ...string) Action {
	return Action{Kind: ActionDeselectCells, CellIDs: cellIDs}
}

// StartEditing marks a cell as the editing cursor target.
func StartEditing(cellID string) Action {
	return Action{Kind: ActionStartEditing, CellID: cellID}
}

// StopEditing clears the editing cursor.
func StopEditing() Action {
	return Action{Kind: ActionStopEditing}
}

// Undo steps one snapshot back in history. No-op at the left boundary.
func Undo() Action { return Action{Kind: ActionUndo} }

// Redo steps one snapshot forward in history. No-op at the right boundary.
func Redo() Action { return Action{Kind: ActionRedo} }

// AddColumn appends a column to the ordered sequence.
func AddColumn(col Column) Action {
	return Action{Kind: ActionAddColumn, Column: col}
}

// DeleteColumn removes a column and cascade-deletes its cells.
func DeleteColumn(columnID string) Action {
	return Action{Kind: ActionDeleteColumn, ColumnID: columnID}
}

// RenameColumn patches a column's label.
func RenameColumn(columnID, label string) Action {
	return Action{Kind: ActionRenameColumn, ColumnID: columnID, Label: label}
}

// ToggleColumnLock flips a column's read-only flag.
func ToggleColumnLock(columnID string) Action {
	return Action{Kind: ActionToggleColumnLock, ColumnID: columnID}
}

// SetColumnFormula sets or clears a column formula. A non-empty formula
// turns the column into a formula column and materializes derived cells;
// an empty formula reverts it to text, keeping last computed values.
func SetColumnFormula(columnID, formula string) Action {
	return Action{Kind: ActionSetColumnFormula, ColumnID: columnID, Formula: formula}
}

// ToggleArchivedRowsVisibility flips the archived-row display flag.
func ToggleArchivedRowsVisibility() Action {
	return Action{Kind: ActionToggleArchivedView}
}

// LoadCells bulk-replaces the cell map (sync hydration / catch-up).
func LoadCells(cells CellMap) Action {
	return Action{Kind: ActionLoadCells, Cells: cells}
}

// LoadColumns bulk-replaces the column sequence.
func LoadColumns(cols []Column) Action {
	return Action{Kind: ActionLoadColumns, Columns: cols}
}

// LoadArchivedRows bulk-replaces the archived-row set.
func LoadArchivedRows(rows []int) Action {
	return Action{Kind: ActionLoadArchivedRows, Rows: rows}
}
