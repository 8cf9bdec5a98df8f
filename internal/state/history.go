package state

import "github.com/tandemgrid/tandemgrid/internal/grid"

// MaxHistory caps the snapshot stack. Oldest entries are evicted first
// so memory stays bounded regardless of session length.
const MaxHistory = 50

// pushHistory appends the post-mutation sheet as a new snapshot.
//
// Any redo tail beyond the cursor is truncated first: a new edit after
// an undo forks history linearly, it does not branch. The returned state
// carries the mutated sheet with the cursor at the new tip.
func pushHistory(s State, next grid.SheetState) State {
	// Copy-on-write: never mutate the slice shared with the input state.
	kept := s.history[:s.historyIndex+1]
	history := make([]grid.SheetState, len(kept), len(kept)+1)
	copy(history, kept)
	history = append(history, next.Clone())

	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}

	return State{
		Sheet:        next,
		history:      history,
		historyIndex: len(history) - 1,
	}
}

// undo moves the cursor one snapshot back and restores it verbatim.
// The history slice itself is unchanged. No-op at the left boundary.
func undo(s State) State {
	if s.historyIndex <= 0 {
		return s
	}
	target := s.historyIndex - 1
	return State{
		Sheet:        s.history[target].Clone(),
		history:      s.history,
		historyIndex: target,
	}
}

// redo is symmetric to undo: one snapshot forward, boundary no-op.
func redo(s State) State {
	if s.historyIndex >= len(s.history)-1 {
		return s
	}
	target := s.historyIndex + 1
	return State{
		Sheet:        s.history[target].Clone(),
		history:      s.history,
		historyIndex: target,
	}
}
