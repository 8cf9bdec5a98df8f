// Package feed carries change events between processes over websocket.
//
// The server relays a store's notification hub to subscribed clients;
// the client side turns inbound frames back into change events for a
// sync coordinator. The feed is transport only: suppression and
// conflict decisions stay in the coordinator.
package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tandemgrid/tandemgrid/internal/store"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes one sheet store's change events at
// GET /sheets/{sheetID}/feed.
type Server struct {
	notifier *store.Notifier
	logger   *slog.Logger
}

// NewServer wraps a notification hub.
func NewServer(notifier *store.Notifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{notifier: notifier, logger: logger}
}

// Handler returns the HTTP handler for the feed endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sheets/", s.handleFeed)
	return mux
}

// handleFeed upgrades the connection and relays the sheet's events
// until either side goes away.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	sheetID := sheetIDFromPath(r.URL.Path)
	if sheetID == "" {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.notifier.Subscribe(sheetID)
	defer cancel()

	s.logger.Info("feed subscriber connected", "sheet", sheetID, "remote", r.RemoteAddr)

	// Reader goroutine: we never expect client frames, but reading is
	// required to notice the peer closing and to service pong frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			s.logger.Info("feed subscriber disconnected", "sheet", sheetID)
			return

		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case ev, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "store closed"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Warn("feed write failed", "sheet", sheetID, "error", err)
				return
			}
		}
	}
}

// sheetIDFromPath extracts {sheetID} from /sheets/{sheetID}/feed.
func sheetIDFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/sheets/")
	if !ok {
		return ""
	}
	sheetID, ok := strings.CutSuffix(rest, "/feed")
	if !ok || sheetID == "" || strings.Contains(sheetID, "/") {
		return ""
	}
	return sheetID
}

// decodeEvent parses one wire frame back into a change event.
func decodeEvent(data []byte) (store.ChangeEvent, error) {
	var ev store.ChangeEvent
	err := json.Unmarshal(data, &ev)
	return ev, err
}
