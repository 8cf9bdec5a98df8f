// Package localstore persists the sheet snapshot to an embedded
// key-value store so state survives process restarts. It is the local
// half of the persistence bridge; the remote half lives in
// internal/store.
//
// BadgerDB gives low-latency local writes without a server process.
// One sheet occupies one key; the value is the JSON snapshot layout
// shared with every other client of the sheet.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

const keyPrefix = "sheet/"

// Config holds configuration for the local store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory.
	Path string

	// InMemory disables disk persistence. Used by tests.
	InMemory bool

	// SyncWrites forces fsync on every write. Snapshots are small and
	// rewritten on every mutation, so the durability is worth it.
	SyncWrites bool
}

// Snapshot is the persisted subset of sheet state, keyed by a fixed
// per-sheet storage key. Transient selection/editing state is excluded.
type Snapshot struct {
	Cells            grid.CellMap  `json:"cells"`
	ArchivedRows     []int         `json:"archivedRows"`
	Columns          []grid.Column `json:"columns"`
	ShowArchivedRows bool          `json:"showArchivedRows"`
}

// SnapshotOf extracts the persistable slices from a sheet. Archived rows
// serialize sorted so identical states produce identical bytes.
func SnapshotOf(sheet grid.SheetState) Snapshot {
	return Snapshot{
		Cells:            sheet.Cells,
		ArchivedRows:     sheet.ArchivedRows.Sorted(),
		Columns:          sheet.Columns,
		ShowArchivedRows: sheet.ShowArchivedRows,
	}
}

// Sheet rebuilds a full sheet state from the snapshot, with empty
// transient fields.
func (s Snapshot) Sheet() grid.SheetState {
	cells := s.Cells
	if cells == nil {
		cells = grid.CellMap{}
	}
	return grid.SheetState{
		Cells:            cells,
		Columns:          s.Columns,
		ArchivedRows:     grid.NewRowSet(s.ArchivedRows...),
		ShowArchivedRows: s.ShowArchivedRows,
		SelectedCells:    grid.NewCellSet(),
	}
}

// Store wraps a BadgerDB instance holding sheet snapshots.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open creates or opens the local store.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil) // badger's own logging is noisy; we log at this layer

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes the sheet's snapshot under its fixed key, replacing any
// previous snapshot wholesale.
func (s *Store) Save(sheetID string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot for sheet %s: %w", sheetID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+sheetID), data)
	})
	if err != nil {
		return fmt.Errorf("save snapshot for sheet %s: %w", sheetID, err)
	}
	return nil
}

// Load reads the sheet's snapshot. The second return value is false when
// no snapshot exists (a fresh sheet, not an error).
func (s *Store) Load(sheetID string) (Snapshot, bool, error) {
	var snap Snapshot
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + sheetID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot for sheet %s: %w", sheetID, err)
	}
	return snap, found, nil
}
