package ws

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"islandwar/internal/game"
	"islandwar/internal/protocol"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(game.NewTestWorld(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// A client hammering the connection while the hub tears down must not
// crash the host: Close only closes connections, and each session closes
// its own send channel from its read loop.
func TestCloseDuringClientTraffic(t *testing.T) {
	h, srv := newTestHub(t)
	conn := dial(t, srv)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if err := conn.WriteJSON(protocol.ClientMsg{Type: protocol.MsgPing, Seq: i}); err != nil {
				return
			}
		}
	}()
	time.Sleep(5 * time.Millisecond)
	h.Close()
	<-done
}

func TestDisconnectSignalsLeave(t *testing.T) {
	h, srv := newTestHub(t)
	conn := dial(t, srv)

	go func() {
		j := <-h.Joins()
		j.Reply <- 0
	}()
	if err := conn.WriteJSON(protocol.ClientMsg{Type: protocol.MsgJoin, Name: "obs"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	var welcome protocol.ServerMsg
	if err := conn.ReadJSON(&welcome); err != nil || welcome.Type != protocol.MsgWelcome {
		t.Fatalf("welcome = %+v, err = %v", welcome, err)
	}

	_ = conn.Close()
	select {
	case pid := <-h.Leaves():
		if pid != 0 {
			t.Fatalf("leave for player %d, want 0", pid)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no leave after disconnect")
	}
}
