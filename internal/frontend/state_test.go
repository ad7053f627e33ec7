package frontend

import (
	"testing"

	"github.com/janpfeifer/GoMemory/internal/game"
)

func mustMessage(t *testing.T, msgType game.MessageType, payload any) game.WsMessage {
	t.Helper()
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		t.Fatalf("NewWsMessage: %v", err)
	}
	return msg
}

func TestHandleMessageTracksBoard(t *testing.T) {
	s := &GlobalClientState{Listeners: map[string]func(){}}
	notified := 0
	s.Listeners["test"] = func() { notified++ }

	state := game.NewGameState(game.GridSpec{Columns: 2, Rows: 2}, []game.IconID{0, 1, 0, 1})
	s.handleMessage(mustMessage(t, game.MsgTypeState, game.StateMessage{Board: game.NewBoard(state, "idle")}))
	if s.Board == nil || len(s.Board.Cards) != 4 {
		t.Fatalf("Expected a 4-card board, got %+v", s.Board)
	}
	if s.Board.Cards[0].Icon != game.HiddenIcon {
		t.Fatalf("Face-down icons should be hidden, got %d", s.Board.Cards[0].Icon)
	}

	s.handleMessage(mustMessage(t, game.MsgTypeRevealed, game.RevealedMessage{CardID: 0, Icon: 0}))
	s.handleMessage(mustMessage(t, game.MsgTypeRevealed, game.RevealedMessage{CardID: 2, Icon: 0}))
	s.handleMessage(mustMessage(t, game.MsgTypeMatch, game.MatchMessage{Score: 1, MatchCount: 1}))
	if !s.Board.Cards[0].Matched || !s.Board.Cards[2].Matched || s.Board.Score != 1 {
		t.Fatalf("Match not applied: %+v", s.Board)
	}

	s.handleMessage(mustMessage(t, game.MsgTypeRevealed, game.RevealedMessage{CardID: 1, Icon: 1}))
	s.handleMessage(mustMessage(t, game.MsgTypeConcealed, game.ConcealedMessage{CardID: 1}))
	if c := s.Board.Cards[1]; c.Revealed || c.Icon != game.HiddenIcon {
		t.Fatalf("Conceal not applied: %+v", c)
	}

	s.handleMessage(mustMessage(t, game.MsgTypeComplete, game.CompleteMessage{FinalScore: 2}))
	if s.Board.Phase != "completed" || s.Board.Score != 2 {
		t.Fatalf("Completion not applied: %+v", s.Board)
	}
	if notified != 7 {
		t.Fatalf("Expected 7 notifications, got %d", notified)
	}
}

func TestHandleMessageIgnoresUnknownCards(t *testing.T) {
	s := &GlobalClientState{Listeners: map[string]func(){}}
	// No board yet: must not panic.
	s.handleMessage(mustMessage(t, game.MsgTypeRevealed, game.RevealedMessage{CardID: 3, Icon: 1}))
	s.handleMessage(mustMessage(t, game.MsgTypeError, game.ErrorMessage{Message: "boom"}))
	if s.Error != "boom" {
		t.Fatalf("Expected error to be recorded, got %q", s.Error)
	}
}
