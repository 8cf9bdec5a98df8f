package feed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandemgrid/tandemgrid/internal/store"
)

func TestSheetIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/sheets/default/feed", "default"},
		{"/sheets/my-sheet/feed", "my-sheet"},
		{"/sheets//feed", ""},
		{"/sheets/default", ""},
		{"/sheets/a/b/feed", ""},
		{"/other/default/feed", ""},
		{"/sheets/default/feed/extra", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, sheetIDFromPath(tt.path))
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	data := []byte(`{
		"entity": "cell",
		"kind": "update",
		"sheet_id": "default",
		"origin": "abc",
		"cell": {"id": "A1", "sheet_id": "default", "value": "42", "is_formula": false, "row_num": 1, "col_id": "A", "updated_at": "2026-01-02T03:04:05Z"},
		"committed_at": "2026-01-02T03:04:05Z"
	}`)

	ev, err := decodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, store.EntityCell, ev.Entity)
	assert.Equal(t, store.ChangeUpdate, ev.Kind)
	assert.Equal(t, "abc", ev.Origin)
	require.NotNil(t, ev.Cell)
	assert.Equal(t, "42", ev.Cell.Value)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := decodeEvent([]byte("not json"))
	assert.Error(t, err)
}

func TestFeedRelaysEventsEndToEnd(t *testing.T) {
	notifier := store.NewNotifier()
	defer notifier.Close()

	srv := httptest.NewServer(NewServer(notifier, nil).Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client := NewClient(wsURL, nil)
	defer client.Close()

	events, cancel := client.Subscribe("default")
	defer cancel()

	// The subscription handshake races the publish; wait for the
	// server-side subscriber to appear before publishing.
	require.Eventually(t, func() bool {
		notifier.Publish(store.ChangeEvent{
			Entity:  store.EntityArchivedRow,
			Kind:    store.ChangeInsert,
			SheetID: "default",
			Row:     1,
		})
		select {
		case <-events:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	notifier.Publish(store.ChangeEvent{
		Entity:  store.EntityCell,
		Kind:    store.ChangeUpdate,
		SheetID: "default",
		Origin:  "someone",
		Cell:    &store.CellRecord{ID: "A1", SheetID: "default", Value: "42"},
	})

	// Drain handshake-era archived-row events until the cell arrives.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Entity != store.EntityCell {
				continue
			}
			assert.Equal(t, "someone", ev.Origin)
			require.NotNil(t, ev.Cell)
			assert.Equal(t, "42", ev.Cell.Value)
			return
		case <-deadline:
			t.Fatal("event never arrived over the feed")
		}
	}
}

func TestFeedScopesBySheet(t *testing.T) {
	notifier := store.NewNotifier()
	defer notifier.Close()

	srv := httptest.NewServer(NewServer(notifier, nil).Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client := NewClient(wsURL, nil)
	defer client.Close()

	events, cancel := client.Subscribe("other")
	defer cancel()

	time.Sleep(50 * time.Millisecond) // let the subscription settle
	notifier.Publish(store.ChangeEvent{
		Entity:  store.EntityCell,
		Kind:    store.ChangeInsert,
		SheetID: "default",
	})

	select {
	case ev := <-events:
		t.Fatalf("event leaked across sheets: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientDialFailureYieldsClosedChannel(t *testing.T) {
	client := NewClient("ws://127.0.0.1:1", nil)
	defer client.Close()

	events, cancel := client.Subscribe("default")
	defer cancel()

	_, open := <-events
	assert.False(t, open)
}

func TestFeedRejectsUnknownPaths(t *testing.T) {
	notifier := store.NewNotifier()
	defer notifier.Close()

	srv := httptest.NewServer(NewServer(notifier, nil).Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/sheets/default")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}
