package store

import (
	"log/slog"
	"sync"
	"time"
)

// EntityKind tags a change event with the collection it touched.
type EntityKind string

const (
	EntityCell        EntityKind = "cell"
	EntityColumn      EntityKind = "column"
	EntityArchivedRow EntityKind = "archived_row"
)

// ChangeKind tags a change event with the mutation type.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is one committed mutation of the shared store. Exactly one
// of Cell, Column or Row is meaningful, selected by Entity.
//
// Origin carries the writing coordinator's identity so consumers can
// reject their own echo deterministically instead of relying solely on
// the timing window.
type ChangeEvent struct {
	Entity      EntityKind    `json:"entity"`
	Kind        ChangeKind    `json:"kind"`
	SheetID     string        `json:"sheet_id"`
	Origin      string        `json:"origin,omitempty"`
	Cell        *CellRecord   `json:"cell,omitempty"`
	Column      *ColumnRecord `json:"column,omitempty"`
	Row         int           `json:"row,omitempty"`
	CommittedAt time.Time     `json:"committed_at"`
}

// subscriberBuffer is the per-subscriber channel depth. A subscriber
// that falls further behind loses events (logged), it does not block
// the writer.
const subscriberBuffer = 64

// Notifier is the per-sheet change-notification hub. Writers publish
// committed events; each subscriber receives every event for its sheet
// in publish order.
type Notifier struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan ChangeEvent // sheetID -> subscriber id -> channel
	nextID int
	closed bool
}

// NewNotifier creates an empty hub.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]chan ChangeEvent)}
}

// Subscribe registers a consumer for one sheet's events. The returned
// cancel function unsubscribes and closes the channel; it is safe to
// call more than once.
func (n *Notifier) Subscribe(sheetID string) (<-chan ChangeEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan ChangeEvent, subscriberBuffer)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	id := n.nextID
	n.nextID++
	if n.subs[sheetID] == nil {
		n.subs[sheetID] = make(map[int]chan ChangeEvent)
	}
	n.subs[sheetID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if sheet, ok := n.subs[sheetID]; ok {
				if _, ok := sheet[id]; ok {
					delete(sheet, id)
					close(ch)
				}
			}
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its sheet.
// Non-blocking: a full subscriber channel drops the event with a logged
// warning rather than stalling the write path.
func (n *Notifier) Publish(ev ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	for _, ch := range n.subs[ev.SheetID] {
		select {
		case ch <- ev:
		default:
			slog.Warn("change event dropped: slow subscriber",
				"sheet", ev.SheetID,
				"entity", ev.Entity,
				"kind", ev.Kind,
			)
		}
	}
}

// Close shuts the hub down and closes every subscriber channel.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for _, sheet := range n.subs {
		for id, ch := range sheet {
			close(ch)
			delete(sheet, id)
		}
	}
}
