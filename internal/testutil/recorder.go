package testutil

import (
	"sync"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

// ActionRecorder captures reducer actions delivered to it. It stands in
// for the session when a test only cares about what the coordinator
// decided to apply.
type ActionRecorder struct {
	mu      sync.Mutex
	actions []grid.Action
}

// Apply records the action.
func (r *ActionRecorder) Apply(a grid.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

// Actions returns a copy of everything recorded so far.
func (r *ActionRecorder) Actions() []grid.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]grid.Action(nil), r.actions...)
}

// Len returns the number of recorded actions.
func (r *ActionRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

// Reset discards everything recorded so far.
func (r *ActionRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}
