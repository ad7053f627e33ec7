package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/janpfeifer/GoMemory/internal/engine"
	"github.com/janpfeifer/GoMemory/internal/game"
	"k8s.io/klog/v2"
)

// HandleWS upgrades the connection and drives the game from the client's messages.
func (s *ServerState) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		klog.Errorf("HandleWS: accept failed: %v", err)
		return
	}
	defer conn.CloseNow()

	c := s.hub.register(conn)
	defer s.hub.unregister(c)
	s.hub.sendTo(c, game.MsgTypeState, game.StateMessage{Board: s.Engine.Board()})

	ctx := r.Context()
	for {
		var msg game.WsMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			klog.V(1).Infof("Client %s: read error: %v", c.id, err)
			return
		}
		s.handleMessage(ctx, c, msg)
	}
}

func (s *ServerState) handleMessage(ctx context.Context, c *client, msg game.WsMessage) {
	p, err := msg.Parse()
	if err != nil {
		klog.Warningf("Client %s: failed to parse %s message: %v", c.id, msg.Type, err)
		s.hub.sendTo(c, game.MsgTypeError, game.ErrorMessage{Message: "malformed message"})
		return
	}

	switch m := p.(type) {
	case *game.SelectMessage:
		if !s.Engine.Select(m.CardID) {
			klog.V(2).Infof("Client %s: select %d ignored", c.id, m.CardID)
		}

	case *game.ResetMessage:
		err := s.Engine.Reset(ctx, m.Grid)
		switch {
		case errors.Is(err, engine.ErrInvalidGrid):
			s.hub.sendTo(c, game.MsgTypeError, game.ErrorMessage{Message: err.Error()})
			return
		case err != nil:
			klog.Errorf("Client %s: reset to %s not saved: %v", c.id, m.Grid, err)
		}
		s.hub.broadcast(game.MsgTypeState, game.StateMessage{Board: s.Engine.Board()})

	default:
		klog.Warningf("Client %s: unexpected message type %s", c.id, msg.Type)
	}
}
