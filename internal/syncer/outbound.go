package syncer

import (
	"context"

	"github.com/tandemgrid/tandemgrid/internal/grid"
	"github.com/tandemgrid/tandemgrid/internal/store"
)

// Forward mirrors a settled local action to the remote store. The
// before/after sheets bracket the reduction; diff-driven kinds (undo,
// redo, sort) derive their writes from the states rather than the
// action payload, because one such action can jump multiple logical
// changes at once.
//
// Remote failures are logged and dropped: local state is authoritative,
// there is no retry queue, and the next mutation of the same entity
// naturally re-attempts the write.
func (c *Coordinator) Forward(ctx context.Context, a grid.Action, before, after grid.SheetState) {
	if !c.Initialized() {
		c.logger.Debug("outbound sync skipped: not initialized", "action", a.Kind)
		return
	}

	switch a.Kind {

	case grid.ActionUpdateCell:
		cell, ok := after.Cells[a.CellID]
		if !ok {
			return
		}
		c.syncCell(ctx, cell)

	case grid.ActionDeleteSelected:
		// The reducer cleared these in after; mirror each as an
		// empty-value upsert (records are retained, not removed).
		for id := range before.SelectedCells {
			if cell, ok := after.Cells[id]; ok {
				c.syncCell(ctx, cell)
			}
		}

	case grid.ActionArchiveRows, grid.ActionUnarchiveRows:
		c.syncArchivedRows(ctx, after.ArchivedRows)

	case grid.ActionAddColumn, grid.ActionRenameColumn,
		grid.ActionToggleColumnLock, grid.ActionSetColumnFormula:
		for position, col := range after.Columns {
			if col.ID == columnIDOf(a) {
				c.syncColumn(ctx, col, position)
				break
			}
		}

	case grid.ActionDeleteColumn:
		c.markOutbound()
		if err := c.store.DeleteColumn(ctx, c.sheetID, a.ColumnID, c.origin); err != nil {
			c.logger.Error("remote column delete failed", "column", a.ColumnID, "error", err)
		}

	case grid.ActionUndo, grid.ActionRedo, grid.ActionSortByColumn:
		c.syncDiff(ctx, before, after)
	}
}

// columnIDOf extracts the affected column ID from a column action.
// ADD_COLUMN carries the whole column, the rest carry the ID.
func columnIDOf(a grid.Action) string {
	if a.Kind == grid.ActionAddColumn {
		return a.Column.ID
	}
	return a.ColumnID
}

// syncCell upserts one cell, stamping the suppression window and the
// cell's last-write clock first so the echo is recognizably ours.
func (c *Coordinator) syncCell(ctx context.Context, cell grid.Cell) {
	c.markOutbound(cell.ID)
	rec := store.CellRecordOf(cell, c.sheetID)
	if err := c.store.UpsertCell(ctx, rec, c.origin); err != nil {
		c.logger.Error("remote cell upsert failed", "cell", cell.ID, "error", err)
	}
}

// syncColumn upserts one column definition at its display position.
func (c *Coordinator) syncColumn(ctx context.Context, col grid.Column, position int) {
	c.markOutbound()
	rec := store.ColumnRecordOf(col, c.sheetID, position)
	if err := c.store.UpsertColumn(ctx, rec, c.origin); err != nil {
		c.logger.Error("remote column upsert failed", "column", col.ID, "error", err)
	}
}

// syncArchivedRows mirrors the complete archived set (replace-all, not
// a diff - the set is small and bounded).
func (c *Coordinator) syncArchivedRows(ctx context.Context, archived grid.RowSet) {
	c.markOutbound()
	if err := c.store.ReplaceArchivedRows(ctx, c.sheetID, archived.Sorted(), c.origin); err != nil {
		c.logger.Error("remote archived-row sync failed", "sheet", c.sheetID, "error", err)
	}
}

// syncDiff mirrors whatever changed between two settled states: column
// upserts and deletes, the archived set when different, cell upserts
// for new/changed cells, and empty-value upserts for cells that
// disappeared (their remote records are cleared, not deleted).
func (c *Coordinator) syncDiff(ctx context.Context, before, after grid.SheetState) {
	d := diffSheets(before, after)

	for _, change := range d.columns {
		c.syncColumn(ctx, change.col, change.position)
	}
	for _, columnID := range d.removedColumns {
		c.markOutbound()
		if err := c.store.DeleteColumn(ctx, c.sheetID, columnID, c.origin); err != nil {
			c.logger.Error("remote column delete failed", "column", columnID, "error", err)
		}
	}
	if d.archivedChanged {
		c.syncArchivedRows(ctx, after.ArchivedRows)
	}
	for _, cell := range d.cells {
		c.syncCell(ctx, cell)
	}
}
