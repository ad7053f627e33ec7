package game

import "testing"

func TestMessageParse(t *testing.T) {
	msg, err := NewWsMessage(MsgTypeReset, ResetMessage{Grid: GridSpec{Columns: 3, Rows: 4}})
	if err != nil {
		t.Fatalf("NewWsMessage: %v", err)
	}
	p, err := msg.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reset, ok := p.(*ResetMessage)
	if !ok {
		t.Fatalf("Expected *ResetMessage, got %T", p)
	}
	if reset.Grid.Cards() != 12 {
		t.Fatalf("Unexpected grid: %v", reset.Grid)
	}

	empty, _ := NewWsMessage(MsgTypeMismatch, nil)
	if _, err := empty.Parse(); err != nil {
		t.Fatalf("Empty payload should parse: %v", err)
	}

	unknown := WsMessage{Type: "bogus"}
	if _, err := unknown.Parse(); err == nil {
		t.Fatal("Expected error for unknown message type")
	}
}

func TestNewBoardHidesFaceDownIcons(t *testing.T) {
	s := NewGameState(GridSpec{Columns: 2, Rows: 1}, []IconID{4, 4})
	s.Cards[1].Reveal()
	b := NewBoard(s, "one_selected")
	if b.Cards[0].Icon != HiddenIcon {
		t.Fatalf("Face-down card leaked icon %d", b.Cards[0].Icon)
	}
	if b.Cards[1].Icon != 4 {
		t.Fatalf("Revealed card should show its icon, got %d", b.Cards[1].Icon)
	}
	if s.Cards[0].Icon != 4 {
		t.Fatal("NewBoard must not modify the game state")
	}
}
