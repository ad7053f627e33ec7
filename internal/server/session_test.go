package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/janpfeifer/GoMemory/internal/game"
)

// findPair returns two card ids holding the same icon, and one that differs from the first.
func findPair(t *testing.T, s game.GameState) (a, b, other int) {
	t.Helper()
	a, b, other = -1, -1, -1
	for i, c := range s.Cards {
		for j := i + 1; j < len(s.Cards); j++ {
			if !c.Selectable() || !s.Cards[j].Selectable() {
				continue
			}
			if s.Cards[j].Icon == c.Icon && a == -1 {
				a, b = i, j
			}
		}
	}
	for i, c := range s.Cards {
		if a != -1 && c.Icon != s.Cards[a].Icon {
			other = i
			break
		}
	}
	if a == -1 || other == -1 {
		t.Fatalf("No usable cards in %v", s)
	}
	return a, b, other
}

func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType game.MessageType) any {
	t.Helper()
	for {
		var msg game.WsMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("Failed to read %s: %v", msgType, err)
		}
		if msg.Type != msgType {
			continue
		}
		p, err := msg.Parse()
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", msgType, err)
		}
		return p
	}
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType game.MessageType, payload any) {
	t.Helper()
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		t.Fatalf("Failed to send %s: %v", msgType, err)
	}
}

func TestGameWebsocket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := startServer(t, testConfig())
	conn, _, err := websocket.Dial(ctx, "ws://"+s.Address+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	defer conn.CloseNow()

	stateMsg := readUntil(ctx, t, conn, game.MsgTypeState).(*game.StateMessage)
	if len(stateMsg.Board.Cards) != 6 {
		t.Fatalf("Expected 6 cards, got %d", len(stateMsg.Board.Cards))
	}
	for _, c := range stateMsg.Board.Cards {
		if c.Icon != game.HiddenIcon {
			t.Fatalf("Face-down icon leaked to the client: %+v", c)
		}
	}

	a, b, other := findPair(t, s.Engine.State())

	// Mismatch first.
	send(ctx, t, conn, game.MsgTypeSelect, game.SelectMessage{CardID: a})
	send(ctx, t, conn, game.MsgTypeSelect, game.SelectMessage{CardID: other})
	readUntil(ctx, t, conn, game.MsgTypeMismatch)
	readUntil(ctx, t, conn, game.MsgTypeConcealed)
	readUntil(ctx, t, conn, game.MsgTypeConcealed)

	// Then the match.
	send(ctx, t, conn, game.MsgTypeSelect, game.SelectMessage{CardID: a})
	revealed := readUntil(ctx, t, conn, game.MsgTypeRevealed).(*game.RevealedMessage)
	if revealed.CardID != a {
		t.Fatalf("Expected card %d revealed, got %d", a, revealed.CardID)
	}
	send(ctx, t, conn, game.MsgTypeSelect, game.SelectMessage{CardID: b})
	match := readUntil(ctx, t, conn, game.MsgTypeMatch).(*game.MatchMessage)
	if match.Score != 1 || match.MatchCount != 1 {
		t.Fatalf("Unexpected match message: %+v", match)
	}

	// A new grid is broadcast as a full state.
	send(ctx, t, conn, game.MsgTypeReset, game.ResetMessage{Grid: game.GridSpec{Columns: 3, Rows: 3}})
	stateMsg = readUntil(ctx, t, conn, game.MsgTypeState).(*game.StateMessage)
	if len(stateMsg.Board.Cards) != 9 || stateMsg.Board.Score != 0 {
		t.Fatalf("Unexpected board after reset: %+v", stateMsg.Board)
	}

	// Invalid grids are reported to the sender only.
	send(ctx, t, conn, game.MsgTypeReset, game.ResetMessage{Grid: game.GridSpec{Columns: 0, Rows: 3}})
	readUntil(ctx, t, conn, game.MsgTypeError)
	if got := s.Engine.State().Grid; got != (game.GridSpec{Columns: 3, Rows: 3}) {
		t.Fatalf("Invalid reset changed the grid to %v", got)
	}
}

func TestGameWebsocketBroadcast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := startServer(t, testConfig())
	dial := func() *websocket.Conn {
		conn, _, err := websocket.Dial(ctx, "ws://"+s.Address+"/ws", nil)
		if err != nil {
			t.Fatalf("Dial error: %v", err)
		}
		readUntil(ctx, t, conn, game.MsgTypeState)
		return conn
	}
	conn1 := dial()
	defer conn1.CloseNow()
	conn2 := dial()
	defer conn2.CloseNow()

	a, _, _ := findPair(t, s.Engine.State())
	send(ctx, t, conn1, game.MsgTypeSelect, game.SelectMessage{CardID: a})

	// The other view sees the reveal too, with the icon.
	revealed := readUntil(ctx, t, conn2, game.MsgTypeRevealed).(*game.RevealedMessage)
	if revealed.CardID != a || revealed.Icon != s.Engine.State().Cards[a].Icon {
		t.Fatalf("Unexpected reveal: %+v", revealed)
	}
}

func TestGameWebsocketRejectsOversizedReset(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := startServer(t, testConfig())
	conn, _, err := websocket.Dial(ctx, "ws://"+s.Address+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	defer conn.CloseNow()
	readUntil(ctx, t, conn, game.MsgTypeState)

	before := s.Engine.State().Order()
	for _, grid := range []game.GridSpec{
		{Columns: game.MaxCards + 1, Rows: 1},
		{Columns: 1 << 20, Rows: 1 << 20},
	} {
		send(ctx, t, conn, game.MsgTypeReset, game.ResetMessage{Grid: grid})
		readUntil(ctx, t, conn, game.MsgTypeError)
	}

	got := s.Engine.State()
	if got.Grid != (game.GridSpec{Columns: 3, Rows: 2}) || len(got.Cards) != 6 {
		t.Fatalf("Oversized reset changed the game: %v", got)
	}
	for i, icon := range got.Order() {
		if icon != before[i] {
			t.Fatalf("Oversized reset reshuffled the deck: %v vs %v", got.Order(), before)
		}
	}
}
