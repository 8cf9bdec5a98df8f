package store

import (
	"context"
	"fmt"
	"time"
)

// timeNow is indirected for tests that need deterministic timestamps.
var timeNow = time.Now

// UpsertCell writes a cell record, overwriting any prior version
// (last-write-wins). The origin tags the resulting change event so the
// writer can recognize its own echo.
func (s *Store) UpsertCell(ctx context.Context, rec CellRecord, origin string) error {
	rec.UpdatedAt = timeNow().UTC()

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM cells WHERE id = ? AND sheet_id = ?)
	`, rec.ID, rec.SheetID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("upsert cell %s: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cells (id, sheet_id, value, formula, is_formula, row_num, col_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, sheet_id) DO UPDATE SET
			value = excluded.value,
			formula = excluded.formula,
			is_formula = excluded.is_formula,
			row_num = excluded.row_num,
			col_id = excluded.col_id,
			updated_at = excluded.updated_at
	`,
		rec.ID,
		rec.SheetID,
		rec.Value,
		nullIfEmpty(rec.Formula),
		rec.IsFormula,
		rec.RowNum,
		rec.ColID,
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert cell %s: %w", rec.ID, err)
	}

	kind := ChangeInsert
	if exists {
		kind = ChangeUpdate
	}
	s.notifier.Publish(ChangeEvent{
		Entity:      EntityCell,
		Kind:        kind,
		SheetID:     rec.SheetID,
		Origin:      origin,
		Cell:        &rec,
		CommittedAt: rec.UpdatedAt,
	})
	return nil
}

// UpsertColumn writes a column definition, overwriting any prior version.
func (s *Store) UpsertColumn(ctx context.Context, rec ColumnRecord, origin string) error {
	rec.UpdatedAt = timeNow().UTC()

	options, err := marshalOptions(rec.DropdownOptions)
	if err != nil {
		return fmt.Errorf("upsert column %s: %w", rec.ID, err)
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM columns WHERE id = ? AND sheet_id = ?)
	`, rec.ID, rec.SheetID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("upsert column %s: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO columns (id, sheet_id, label, type, formula, read_only, dropdown_options, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, sheet_id) DO UPDATE SET
			label = excluded.label,
			type = excluded.type,
			formula = excluded.formula,
			read_only = excluded.read_only,
			dropdown_options = excluded.dropdown_options,
			position = excluded.position,
			updated_at = excluded.updated_at
	`,
		rec.ID,
		rec.SheetID,
		rec.Label,
		rec.Type,
		nullIfEmpty(rec.Formula),
		rec.ReadOnly,
		options,
		rec.Position,
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert column %s: %w", rec.ID, err)
	}

	kind := ChangeInsert
	if exists {
		kind = ChangeUpdate
	}
	s.notifier.Publish(ChangeEvent{
		Entity:      EntityColumn,
		Kind:        kind,
		SheetID:     rec.SheetID,
		Origin:      origin,
		Column:      &rec,
		CommittedAt: rec.UpdatedAt,
	})
	return nil
}

// DeleteColumn removes a column definition and cascade-deletes every
// cell belonging to it. Emits one column delete event plus one cell
// delete event per removed cell.
func (s *Store) DeleteColumn(ctx context.Context, sheetID, columnID, origin string) error {
	// Collect the cascade victims before deleting so events carry ids.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, row_num FROM cells WHERE sheet_id = ? AND col_id = ?
	`, sheetID, columnID)
	if err != nil {
		return fmt.Errorf("delete column %s: %w", columnID, err)
	}
	var victims []CellRecord
	for rows.Next() {
		rec := CellRecord{SheetID: sheetID, ColID: columnID}
		if err := rows.Scan(&rec.ID, &rec.RowNum); err != nil {
			rows.Close()
			return fmt.Errorf("delete column %s: %w", columnID, err)
		}
		victims = append(victims, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("delete column %s: %w", columnID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete column %s: begin tx: %w", columnID, err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM columns WHERE id = ? AND sheet_id = ?
	`, columnID, sheetID); err != nil {
		return fmt.Errorf("delete column %s: %w", columnID, err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cells WHERE sheet_id = ? AND col_id = ?
	`, sheetID, columnID); err != nil {
		return fmt.Errorf("delete column %s: cascade cells: %w", columnID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete column %s: commit: %w", columnID, err)
	}

	now := timeNow().UTC()
	s.notifier.Publish(ChangeEvent{
		Entity:      EntityColumn,
		Kind:        ChangeDelete,
		SheetID:     sheetID,
		Origin:      origin,
		Column:      &ColumnRecord{ID: columnID, SheetID: sheetID},
		CommittedAt: now,
	})
	for i := range victims {
		s.notifier.Publish(ChangeEvent{
			Entity:      EntityCell,
			Kind:        ChangeDelete,
			SheetID:     sheetID,
			Origin:      origin,
			Cell:        &victims[i],
			CommittedAt: now,
		})
	}
	return nil
}

// ReplaceArchivedRows replaces the sheet's archived-row set wholesale:
// delete all, insert the new complete set. Not a diff - the set is small
// and bounded, and replace-all is the simplest correct write. Events are
// still emitted per-row from the old/new difference.
func (s *Store) ReplaceArchivedRows(ctx context.Context, sheetID string, archived []int, origin string) error {
	previous, err := s.ArchivedRows(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("replace archived rows: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace archived rows: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM archived_rows WHERE sheet_id = ?
	`, sheetID); err != nil {
		return fmt.Errorf("replace archived rows: delete: %w", err)
	}
	for _, row := range archived {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO archived_rows (sheet_id, row_number) VALUES (?, ?)
		`, sheetID, row); err != nil {
			return fmt.Errorf("replace archived rows: insert row %d: %w", row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace archived rows: commit: %w", err)
	}

	now := timeNow().UTC()
	next := make(map[int]struct{}, len(archived))
	for _, row := range archived {
		next[row] = struct{}{}
	}
	prev := make(map[int]struct{}, len(previous))
	for _, row := range previous {
		prev[row] = struct{}{}
	}

	for _, row := range previous {
		if _, kept := next[row]; !kept {
			s.notifier.Publish(ChangeEvent{
				Entity:      EntityArchivedRow,
				Kind:        ChangeDelete,
				SheetID:     sheetID,
				Origin:      origin,
				Row:         row,
				CommittedAt: now,
			})
		}
	}
	for _, row := range archived {
		if _, had := prev[row]; !had {
			s.notifier.Publish(ChangeEvent{
				Entity:      EntityArchivedRow,
				Kind:        ChangeInsert,
				SheetID:     sheetID,
				Origin:      origin,
				Row:         row,
				CommittedAt: now,
			})
		}
	}
	return nil
}

// nullIfEmpty maps "" to NULL for optional text columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
