// Package ws is the WebSocket boundary of a match host. It owns client
// sessions and the handshake with the tick loop: joins and disconnects are
// handed over through channels and applied on the tick goroutine, commands
// go straight into the world's inbox, snapshots fan out to every session.
package ws

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"islandwar/internal/game"
	"islandwar/internal/protocol"
)

const sendBuffer = 16

// Join is a pending join request. The tick loop resolves it by sending the
// assigned player id on Reply.
type Join struct {
	Name  string
	Reply chan game.PlayerID
}

// Hub accepts connections and tracks live sessions. It never touches the
// world directly; everything crosses over via Joins/Leaves and the inbox.
type Hub struct {
	world *game.World
	log   *slog.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*session]struct{}
	closed   bool

	joins  chan Join
	leaves chan game.PlayerID
}

func NewHub(w *game.World, log *slog.Logger) *Hub {
	return &Hub{
		world: w,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: make(map[*session]struct{}),
		joins:    make(chan Join, 8),
		leaves:   make(chan game.PlayerID, 8),
	}
}

// Joins exposes pending join requests for the tick loop to drain.
func (h *Hub) Joins() <-chan Join { return h.joins }

// Leaves exposes disconnect notifications for the tick loop to drain.
func (h *Hub) Leaves() <-chan game.PlayerID { return h.leaves }

// ServeHTTP upgrades the connection and runs the session until it drops.
func (h *Hub) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "err", err)
		return
	}
	s := &session{hub: h, conn: conn, send: make(chan protocol.ServerMsg, sendBuffer), player: game.NeutralPlayer}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.sessions[s] = struct{}{}
	h.mu.Unlock()

	go s.writeLoop()
	s.readLoop()
}

// Broadcast queues a message to every session, dropping it for clients whose
// send buffer is full. A stalled reader never stalls the tick loop.
func (h *Hub) Broadcast(msg protocol.ServerMsg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		select {
		case s.send <- msg:
		default:
			h.log.Warn("dropping frame for slow client", "player", s.player)
		}
	}
}

// drop runs on the session's read goroutine, the only writer of s.send, so
// closing the channel here can never race a concurrent reply.
func (h *Hub) drop(s *session) {
	h.mu.Lock()
	_, live := h.sessions[s]
	delete(h.sessions, s)
	closed := h.closed
	h.mu.Unlock()
	if !live {
		return
	}
	close(s.send)
	if s.player != game.NeutralPlayer && !closed {
		h.leaves <- s.player
	}
}

// Close tears down the transport, typically at match end. Only the
// connections are closed here: each read loop notices its broken
// connection, returns, and drops its own session, keeping send-channel
// closure on the goroutine that still writes to it.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()
	for _, s := range sessions {
		_ = s.conn.Close()
	}
}
