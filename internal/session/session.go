// Package session binds the reducer, the local persistence bridge and
// the sync coordinator into the single dispatch entry point exposed to
// the presentation layer.
//
// All reducer transitions are serialized through one mutex: local
// actions and translated remote actions apply strictly in dispatch
// order, and each transition is atomic with respect to the others.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tandemgrid/tandemgrid/internal/grid"
	"github.com/tandemgrid/tandemgrid/internal/localstore"
	"github.com/tandemgrid/tandemgrid/internal/state"
	"github.com/tandemgrid/tandemgrid/internal/syncer"
)

// Forwarder mirrors settled local actions to the remote store.
// Implemented by syncer.Coordinator.
type Forwarder interface {
	Forward(ctx context.Context, a grid.Action, before, after grid.SheetState)
}

// Config assembles a Session.
type Config struct {
	SheetID string

	// Local is the persistence bridge for reload survival. Optional;
	// without it the session is memory-only.
	Local *localstore.Store

	Logger *slog.Logger
}

// Session owns the canonical local state for one sheet.
type Session struct {
	sheetID string
	local   *localstore.Store
	logger  *slog.Logger

	mu        sync.Mutex
	st        state.State
	forwarder Forwarder
}

// New creates a session, restoring the persisted local snapshot when
// one exists and seeding defaults otherwise. The initial snapshot is
// pre-seeded into history so the first undo returns to it.
func New(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		sheetID: cfg.SheetID,
		local:   cfg.Local,
		logger:  logger,
	}

	if cfg.Local != nil {
		snap, found, err := cfg.Local.Load(cfg.SheetID)
		if err != nil {
			// A damaged cache is not fatal; fall back to defaults.
			logger.Error("local snapshot load failed, seeding defaults",
				"sheet", cfg.SheetID, "error", err)
		} else if found {
			s.st = state.New(snap.Sheet())
			logger.Info("restored local snapshot",
				"sheet", cfg.SheetID, "cells", len(snap.Cells))
			return s, nil
		}
	}

	s.st = state.Seed()
	return s, nil
}

// AttachForwarder wires the outbound sync path. Called after the
// coordinator is constructed (it needs the session as its Applier).
func (s *Session) AttachForwarder(f Forwarder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwarder = f
}

// Dispatch applies a local action: reduce, persist locally, forward to
// the remote store. The pre/post states bracket the reduction so
// diff-driven sync (undo/redo/sort) sees exactly what changed.
func (s *Session) Dispatch(ctx context.Context, a grid.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.st.Sheet
	s.st = state.Reduce(s.st, a)
	s.persist(a)

	if s.forwarder != nil {
		s.forwarder.Forward(ctx, a, before, s.st.Sheet)
	}
}

// Apply routes a translated remote action through the reducer without
// forwarding it back outbound. Implements syncer.Applier.
func (s *Session) Apply(a grid.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st = state.Reduce(s.st, a)
	s.persist(a)
}

// Sheet returns a deep copy of the current sheet state.
func (s *Session) Sheet() grid.SheetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Sheet.Clone()
}

// State returns the current aggregate (sheet plus history cursor).
func (s *Session) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// persist writes the sheet snapshot to the local store. Selection and
// editing-cursor actions change nothing persistable and are skipped.
func (s *Session) persist(a grid.Action) {
	if s.local == nil {
		return
	}
	switch a.Kind {
	case grid.ActionSelectCells, grid.ActionDeselectCells,
		grid.ActionStartEditing, grid.ActionStopEditing:
		return
	}
	if err := s.local.Save(s.sheetID, localstore.SnapshotOf(s.st.Sheet)); err != nil {
		s.logger.Error("local snapshot save failed", "sheet", s.sheetID, "error", err)
	}
}

var _ syncer.Applier = (*Session)(nil)
