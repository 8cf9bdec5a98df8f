package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestUpsertCellRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cell := grid.Cell{ID: "A1", Value: "100", Row: 1, Column: "A"}
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(cell, "default"), "test-origin"))

	cells, err := s.Cells(ctx, "default")
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, cell, cells["A1"])
}

func TestUpsertCellOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := grid.Cell{ID: "A1", Value: "100", Row: 1, Column: "A"}
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(first, "default"), ""))

	second := grid.Cell{ID: "A1", Value: "2.5", Formula: "B1/100", IsFormula: true, Row: 1, Column: "A"}
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(second, "default"), ""))

	cells, err := s.Cells(ctx, "default")
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, second, cells["A1"])
}

func TestCellsAreScopedBySheet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cell := grid.Cell{ID: "A1", Value: "one", Row: 1, Column: "A"}
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(cell, "one"), ""))

	cells, err := s.Cells(ctx, "two")
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestUpsertColumnRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cols := grid.SeedColumns()
	for i, col := range cols {
		require.NoError(t, s.UpsertColumn(ctx, ColumnRecordOf(col, "default", i), ""))
	}

	got, err := s.Columns(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, cols, got)
}

func TestColumnsOrderedByPosition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Insert out of order; position must win over insertion order.
	require.NoError(t, s.UpsertColumn(ctx, ColumnRecordOf(grid.Column{ID: "B", Label: "B", Type: grid.ColumnText}, "default", 1), ""))
	require.NoError(t, s.UpsertColumn(ctx, ColumnRecordOf(grid.Column{ID: "A", Label: "A", Type: grid.ColumnText}, "default", 0), ""))

	got, err := s.Columns(ctx, "default")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
}

func TestDeleteColumnCascadesToCells(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertColumn(ctx, ColumnRecordOf(grid.Column{ID: "A", Label: "A", Type: grid.ColumnNumber}, "default", 0), ""))
	require.NoError(t, s.UpsertColumn(ctx, ColumnRecordOf(grid.Column{ID: "B", Label: "B", Type: grid.ColumnNumber}, "default", 1), ""))
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(grid.Cell{ID: "A1", Value: "1", Row: 1, Column: "A"}, "default"), ""))
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(grid.Cell{ID: "A2", Value: "2", Row: 2, Column: "A"}, "default"), ""))
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(grid.Cell{ID: "B1", Value: "3", Row: 1, Column: "B"}, "default"), ""))

	require.NoError(t, s.DeleteColumn(ctx, "default", "A", ""))

	cols, err := s.Columns(ctx, "default")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "B", cols[0].ID)

	cells, err := s.Cells(ctx, "default")
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Contains(t, cells, "B1")
}

func TestReplaceArchivedRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceArchivedRows(ctx, "default", []int{1, 3}, ""))

	rows, err := s.ArchivedRows(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, rows)

	// Replace wholesale, not merge.
	require.NoError(t, s.ReplaceArchivedRows(ctx, "default", []int{3, 5}, ""))

	rows, err = s.ArchivedRows(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, rows)

	require.NoError(t, s.ReplaceArchivedRows(ctx, "default", nil, ""))

	rows, err = s.ArchivedRows(ctx, "default")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWritesPublishChangeEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	events, cancel := s.Notifier().Subscribe("default")
	defer cancel()

	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(grid.Cell{ID: "A1", Value: "1", Row: 1, Column: "A"}, "default"), "me"))

	ev := <-events
	assert.Equal(t, EntityCell, ev.Entity)
	assert.Equal(t, ChangeInsert, ev.Kind)
	assert.Equal(t, "me", ev.Origin)
	require.NotNil(t, ev.Cell)
	assert.Equal(t, "A1", ev.Cell.ID)
	assert.Equal(t, "1", ev.Cell.Value)
	assert.False(t, ev.CommittedAt.IsZero())

	// Second write to the same cell is an update, not an insert.
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(grid.Cell{ID: "A1", Value: "2", Row: 1, Column: "A"}, "default"), "me"))

	ev = <-events
	assert.Equal(t, ChangeUpdate, ev.Kind)
	assert.Equal(t, "2", ev.Cell.Value)
}

func TestDeleteColumnPublishesCascadeEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertColumn(ctx, ColumnRecordOf(grid.Column{ID: "A", Label: "A", Type: grid.ColumnNumber}, "default", 0), ""))
	require.NoError(t, s.UpsertCell(ctx, CellRecordOf(grid.Cell{ID: "A1", Value: "1", Row: 1, Column: "A"}, "default"), ""))

	events, cancel := s.Notifier().Subscribe("default")
	defer cancel()

	require.NoError(t, s.DeleteColumn(ctx, "default", "A", "me"))

	first := <-events
	assert.Equal(t, EntityColumn, first.Entity)
	assert.Equal(t, ChangeDelete, first.Kind)
	require.NotNil(t, first.Column)
	assert.Equal(t, "A", first.Column.ID)

	second := <-events
	assert.Equal(t, EntityCell, second.Entity)
	assert.Equal(t, ChangeDelete, second.Kind)
	require.NotNil(t, second.Cell)
	assert.Equal(t, "A1", second.Cell.ID)
}

func TestReplaceArchivedRowsPublishesDiff(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceArchivedRows(ctx, "default", []int{1, 2}, ""))

	events, cancel := s.Notifier().Subscribe("default")
	defer cancel()

	// 1 stays, 2 leaves, 3 arrives: exactly two events.
	require.NoError(t, s.ReplaceArchivedRows(ctx, "default", []int{1, 3}, "me"))

	deleted := <-events
	assert.Equal(t, EntityArchivedRow, deleted.Entity)
	assert.Equal(t, ChangeDelete, deleted.Kind)
	assert.Equal(t, 2, deleted.Row)

	inserted := <-events
	assert.Equal(t, ChangeInsert, inserted.Kind)
	assert.Equal(t, 3, inserted.Row)

	select {
	case ev := <-events:
		t.Fatalf("unexpected extra event: %+v", ev)
	default:
	}
}
