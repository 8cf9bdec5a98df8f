package state

import (
	"github.com/tandemgrid/tandemgrid/internal/grid"
)

// MaxFormulaRows bounds the rows materialized when a column formula is
// set. Matches the visible grid size.
const MaxFormulaRows = 50

// State is the reducer aggregate: the sheet plus its history stack.
//
// INVARIANTS:
//   - history[historyIndex] is the last externally-settled snapshot
//   - 0 <= historyIndex <= len(history)-1 whenever history is non-empty
//   - len(history) <= MaxHistory (FIFO eviction of the oldest entries)
type State struct {
	Sheet grid.SheetState

	history      []grid.SheetState
	historyIndex int
}

// New creates the process-initial state from a sheet snapshot: formula
// columns are computed and the result is pre-seeded into history[0], so
// the first user undo returns to the true initial state rather than an
// empty slot.
func New(sheet grid.SheetState) State {
	sheet = sheet.Clone()
	if sheet.Cells == nil {
		sheet.Cells = grid.CellMap{}
	}
	if sheet.ArchivedRows == nil {
		sheet.ArchivedRows = grid.NewRowSet()
	}
	if sheet.SelectedCells == nil {
		sheet.SelectedCells = grid.NewCellSet()
	}
	sheet.Cells = Recalculate(sheet.Cells, sheet.Columns)

	return State{
		Sheet:        sheet,
		history:      []grid.SheetState{sheet.Clone()},
		historyIndex: 0,
	}
}

// Seed creates the default state used when nothing was persisted.
func Seed() State {
	return New(grid.SeedState())
}

// HistoryLen returns the number of retained snapshots.
func (s State) HistoryLen() int { return len(s.history) }

// HistoryIndex returns the cursor into the snapshot stack.
func (s State) HistoryIndex() int { return s.historyIndex }

// CanUndo reports whether an UNDO would move the cursor.
func (s State) CanUndo() bool { return s.historyIndex > 0 }

// CanRedo reports whether a REDO would move the cursor.
func (s State) CanRedo() bool { return s.historyIndex < len(s.history)-1 }
