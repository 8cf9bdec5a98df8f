// Package syncer keeps the local reducer state consistent with the
// shared remote store across concurrent clients.
//
// The coordinator mirrors history-pushing local actions outward and
// translates inbound change events into external reducer actions, under
// a last-write-wins policy. Feedback loops are suppressed two ways: an
// origin ID stamped on every outbound write (deterministic self-echo
// rejection) and a short suppression window plus per-cell last-write
// clocks (a heuristic debounce for cross-client races, not a causal
// ordering mechanism - rare lost updates under truly concurrent edits
// are accepted).
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tandemgrid/tandemgrid/internal/grid"
	"github.com/tandemgrid/tandemgrid/internal/store"
)

// DefaultSuppressionWindow is how long inbound events are discarded
// after an outbound write. Must exceed plausible round-trip echo
// latency.
const DefaultSuppressionWindow = 150 * time.Millisecond

// Applier receives translated remote actions. Implemented by the
// session, which routes them through the reducer without re-forwarding
// them outbound.
type Applier interface {
	Apply(a grid.Action)
}

// Source delivers a sheet's change events. Implemented by
// store.Notifier for in-process use and by feed.Client for remote
// subscriptions.
type Source interface {
	Subscribe(sheetID string) (<-chan store.ChangeEvent, func())
}

// Config assembles a Coordinator.
type Config struct {
	Store   *store.Store
	Source  Source
	SheetID string
	Applier Applier

	// Origin identifies this coordinator's writes. Defaults to a fresh
	// UUID per coordinator.
	Origin string

	// Window is the echo-suppression window. Defaults to
	// DefaultSuppressionWindow.
	Window time.Duration

	Logger *slog.Logger

	// Now is indirected for tests. Defaults to time.Now.
	Now func() time.Time
}

// Coordinator bridges the reducer and the remote store.
// Lifecycle: New -> Start (hydrate, then consume events) -> Dispose.
type Coordinator struct {
	store   *store.Store
	source  Source
	sheetID string
	origin  string
	applier Applier
	window  time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu            sync.Mutex
	initialized   bool
	disposed      bool
	suppressUntil time.Time
	lastCellWrite map[string]time.Time

	cancel func()
	done   chan struct{}
}

// New builds a coordinator in the init state. Start must be called
// before it does anything.
func New(cfg Config) *Coordinator {
	origin := cfg.Origin
	if origin == "" {
		origin = uuid.NewString()
	}
	window := cfg.Window
	if window <= 0 {
		window = DefaultSuppressionWindow
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Coordinator{
		store:         cfg.Store,
		source:        cfg.Source,
		sheetID:       cfg.SheetID,
		origin:        origin,
		applier:       cfg.Applier,
		window:        window,
		logger:        logger,
		now:           now,
		lastCellWrite: make(map[string]time.Time),
		done:          make(chan struct{}),
	}
}

// Origin returns the coordinator's write identity.
func (c *Coordinator) Origin() string { return c.origin }

// Initialized reports whether hydration has completed. Outbound sync is
// suppressed until it has; local mutations before that are not queued -
// the next natural edit re-syncs the entity.
func (c *Coordinator) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Start subscribes to the change source, hydrates local state from the
// remote snapshot, and begins consuming inbound events until the
// context is cancelled or Dispose is called.
func (c *Coordinator) Start(ctx context.Context) error {
	events, cancel := c.source.Subscribe(c.sheetID)
	c.cancel = cancel

	if err := c.hydrate(ctx); err != nil {
		// Local state stays authoritative; remote convergence is
		// deferred to the next successful sync.
		c.logger.Error("hydration failed", "sheet", c.sheetID, "error", err)
	}

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	c.logger.Info("sync coordinator initialized", "sheet", c.sheetID, "origin", c.origin)

	go c.consume(ctx, events)
	return nil
}

// Dispose tears the coordinator down: unsubscribes from the change
// source and waits for the consumer goroutine to drain. Safe to call
// once Start has returned.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
	c.logger.Info("sync coordinator disposed", "sheet", c.sheetID)
}

// hydrate fetches the full remote snapshot and bulk-loads it into the
// reducer. Empty collections are skipped so a fresh remote store does
// not clobber seeded local defaults.
func (c *Coordinator) hydrate(ctx context.Context) error {
	cells, err := c.store.Cells(ctx, c.sheetID)
	if err != nil {
		return err
	}
	columns, err := c.store.Columns(ctx, c.sheetID)
	if err != nil {
		return err
	}
	archived, err := c.store.ArchivedRows(ctx, c.sheetID)
	if err != nil {
		return err
	}

	if len(cells) > 0 {
		c.applier.Apply(grid.LoadCells(cells))
	}
	if len(columns) > 0 {
		c.applier.Apply(grid.LoadColumns(columns))
	}
	if len(archived) > 0 {
		c.applier.Apply(grid.LoadArchivedRows(archived))
	}

	c.logger.Info("hydrated from remote store",
		"sheet", c.sheetID,
		"cells", len(cells),
		"columns", len(columns),
		"archived_rows", len(archived),
	)
	return nil
}

// consume processes inbound events until the channel closes or the
// context is cancelled.
func (c *Coordinator) consume(ctx context.Context, events <-chan store.ChangeEvent) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(ctx, ev)
		}
	}
}

// handleEvent applies one inbound change event, or drops it per the
// suppression rules.
func (c *Coordinator) handleEvent(ctx context.Context, ev store.ChangeEvent) {
	if ev.Origin == c.origin {
		// Deterministic self-echo rejection.
		return
	}

	c.mu.Lock()
	suppressed := c.now().Before(c.suppressUntil)
	c.mu.Unlock()
	if suppressed {
		c.logger.Debug("inbound event dropped: suppression window",
			"sheet", c.sheetID, "entity", ev.Entity, "kind", ev.Kind)
		return
	}

	switch ev.Entity {
	case store.EntityCell:
		c.handleCellEvent(ev)

	case store.EntityColumn:
		// Collections are small; re-fetch beats incremental patching.
		columns, err := c.store.Columns(ctx, c.sheetID)
		if err != nil {
			c.logger.Error("column re-fetch failed", "sheet", c.sheetID, "error", err)
			return
		}
		c.applier.Apply(grid.LoadColumns(columns))

	case store.EntityArchivedRow:
		archived, err := c.store.ArchivedRows(ctx, c.sheetID)
		if err != nil {
			c.logger.Error("archived-row re-fetch failed", "sheet", c.sheetID, "error", err)
			return
		}
		c.applier.Apply(grid.LoadArchivedRows(archived))
	}
}

// handleCellEvent translates a remote cell insert/update into an
// external cell write. Deletes only occur as column-cascade side
// effects, which the accompanying column event already covers, so they
// are ignored here rather than resurrecting cleared cells.
func (c *Coordinator) handleCellEvent(ev store.ChangeEvent) {
	if ev.Kind == store.ChangeDelete || ev.Cell == nil {
		return
	}

	c.mu.Lock()
	lastLocal, known := c.lastCellWrite[ev.Cell.ID]
	c.mu.Unlock()
	if known && !ev.CommittedAt.After(lastLocal) {
		c.logger.Debug("inbound cell event dropped: not newer than local write",
			"cell", ev.Cell.ID,
			"event_time", ev.CommittedAt,
			"last_local", lastLocal,
		)
		return
	}

	c.applier.Apply(grid.UpdateCellExternal(
		ev.Cell.ID,
		ev.Cell.Value,
		ev.Cell.Formula,
		ev.Cell.IsFormula,
	))
}

// markOutbound stamps the suppression window before a write. Cell IDs,
// when given, also update the per-cell last-write clocks.
func (c *Coordinator) markOutbound(cellIDs ...string) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suppressUntil = now.Add(c.window)
	for _, id := range cellIDs {
		c.lastCellWrite[id] = now
	}
}
