package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"islandwar/internal/game"
	"islandwar/internal/protocol"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	maxMsgSize = 16 << 10
)

// session is one connected client. The read loop parses and validates
// inbound messages; the write loop serializes the send channel.
type session struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan protocol.ServerMsg
	player game.PlayerID
}

func (s *session) readLoop() {
	defer func() {
		s.hub.drop(s)
		_ = s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg protocol.ClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(protocol.ErrorMsg(0, err))
			continue
		}
		s.handle(msg)
	}
}

func (s *session) handle(msg protocol.ClientMsg) {
	switch msg.Type {
	case protocol.MsgPing:
		s.reply(protocol.ServerMsg{Type: protocol.MsgPong, Seq: msg.Seq})

	case protocol.MsgJoin:
		if s.player != game.NeutralPlayer {
			s.reply(protocol.ErrorMsg(msg.Seq, fmt.Errorf("already joined")))
			return
		}
		reply := make(chan game.PlayerID, 1)
		s.hub.joins <- Join{Name: msg.Name, Reply: reply}
		s.player = <-reply // resolved by the tick loop
		s.reply(protocol.Welcome(s.player, "", s.hub.world.Tun.TickMs))

	case protocol.MsgCommand:
		if s.player == game.NeutralPlayer {
			s.reply(protocol.ErrorMsg(msg.Seq, fmt.Errorf("join first")))
			return
		}
		cmd, err := protocol.DecodeCommand(s.player, msg.Cmd)
		if err != nil {
			s.reply(protocol.ErrorMsg(msg.Seq, err))
			return
		}
		s.hub.world.Submit(cmd)

	default:
		s.reply(protocol.ErrorMsg(msg.Seq, fmt.Errorf("unknown message type %q", msg.Type)))
	}
}

// reply queues a direct response, dropping it if the client is stalled.
func (s *session) reply(msg protocol.ServerMsg) {
	select {
	case s.send <- msg:
	default:
	}
}

func (s *session) writeLoop() {
	ping := time.NewTicker(pongWait / 3)
	defer ping.Stop()
	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				_ = s.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
