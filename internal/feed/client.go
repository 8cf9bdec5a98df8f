package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tandemgrid/tandemgrid/internal/store"
)

// Client subscribes to a remote feed server and replays its frames as
// change events. It satisfies syncer.Source, so a coordinator can
// consume a remote store's feed exactly as it would an in-process
// notifier.
type Client struct {
	baseURL string // e.g. "ws://localhost:8432"
	logger  *slog.Logger

	mu     sync.Mutex
	conns  []*websocket.Conn
	closed bool
}

// NewClient creates a feed client for the given websocket base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: baseURL, logger: logger}
}

// Subscribe dials the sheet's feed endpoint and delivers decoded events
// until the connection drops or the cancel function is called. A dial
// failure yields an immediately-closed channel; the caller's next sync
// cycle can retry by resubscribing.
func (c *Client) Subscribe(sheetID string) (<-chan store.ChangeEvent, func()) {
	events := make(chan store.ChangeEvent, subscriberBufferClient)

	endpoint, err := url.JoinPath(c.baseURL, "sheets", sheetID, "feed")
	if err != nil {
		c.logger.Error("feed url invalid", "base", c.baseURL, "error", err)
		close(events)
		return events, func() {}
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		c.logger.Error("feed dial failed", "endpoint", endpoint, "error", err)
		close(events)
		return events, func() {}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		close(events)
		return events, func() {}
	}
	c.conns = append(c.conns, conn)
	c.mu.Unlock()

	go func() {
		defer close(events)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					c.logger.Warn("feed read failed", "sheet", sheetID, "error", err)
				}
				return
			}
			ev, err := decodeEvent(data)
			if err != nil {
				c.logger.Warn("feed frame undecodable", "sheet", sheetID, "error", err)
				continue
			}
			events <- ev
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { conn.Close() })
	}
	return events, cancel
}

// Close drops every open subscription.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	for _, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close feed connection: %w", err)
		}
	}
	c.conns = nil
	return firstErr
}

const subscriberBufferClient = 64
