package frontend

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// GlobalClientState manages the connection and the board as last seen from the server.
type GlobalClientState struct {
	Board *game.Board
	Error string
	Conn  *websocket.Conn

	// Banner is a short message about the last judgment ("Match!", ...).
	Banner       string
	SoundEnabled bool

	// Listeners for state updates
	Listeners map[string]func()
}

var State *GlobalClientState

func InitState() {
	if State == nil {
		klog.V(1).Infof("InitState: creating new state (was nil)")
		State = &GlobalClientState{
			Listeners:    make(map[string]func()),
			SoundEnabled: true,
		}
	} else {
		klog.V(1).Infof("InitState: state already exists")
	}
}

func (s *GlobalClientState) ToggleSound() {
	s.SoundEnabled = !s.SoundEnabled
	klog.Infof("ToggleSound: SoundEnabled is now %v", s.SoundEnabled)
	s.Notify()
}

// PlaySound plays a sound effect, fire and forget.
func (s *GlobalClientState) PlaySound(url string) {
	if app.IsServer || !s.SoundEnabled {
		return
	}
	audio := app.Window().Get("document").Call("createElement", "audio")
	audio.Set("src", url)
	promise := audio.Call("play")
	if promise.Truthy() {
		promise.Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
			klog.Errorf("PlaySound: Failed to play %s: %v", url, args[0])
			return nil
		}))
	}
}

func (s *GlobalClientState) Notify() {
	klog.V(1).Infof("GlobalClientState: Notifying %d listeners", len(s.Listeners))
	for _, l := range s.Listeners {
		if l != nil {
			l()
		}
	}
}

// ConnectWS connects to the server; the server answers with the full board.
func (s *GlobalClientState) ConnectWS() error {
	if s.Conn != nil {
		klog.Infof("ConnectWS: Closing existing connection")
		s.Conn.CloseNow()
	}

	wsURL := fmt.Sprintf("ws://%s/ws", app.Window().URL().Host)
	klog.Infof("ConnectWS: Connecting to %s", wsURL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		klog.Errorf("ConnectWS: Dial failed: %v", err)
		return fmt.Errorf("dial failed: %w", err)
	}
	s.Conn = conn
	go s.readLoop(conn)
	return nil
}

func (s *GlobalClientState) readLoop(conn *websocket.Conn) {
	ctx := context.Background()
	klog.Infof("readLoop: started")
	for {
		var msg game.WsMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			klog.Errorf("readLoop: WS read error: %v", err)
			break
		}
		s.handleMessage(msg)
	}
}

// handleMessage applies one server message to the local board.
func (s *GlobalClientState) handleMessage(msg game.WsMessage) {
	p, err := msg.Parse()
	if err != nil {
		klog.Errorf("handleMessage: Failed to parse %s message: %v", msg.Type, err)
		return
	}

	switch m := p.(type) {
	case *game.StateMessage:
		klog.Infof("handleMessage: New board %s", m.Board.Grid)
		board := m.Board
		s.Board = &board
		s.Banner = ""
		s.Error = ""

	case *game.RevealedMessage:
		if c := s.card(m.CardID); c != nil {
			c.Revealed = true
			c.Icon = m.Icon
		}
		s.PlaySound("/web/sounds/flip.mp3")

	case *game.ConcealedMessage:
		if c := s.card(m.CardID); c != nil {
			c.Revealed = false
			c.Icon = game.HiddenIcon
		}

	case *game.MatchMessage:
		if s.Board != nil {
			// The only face-up unmatched cards are the pair just judged.
			for i := range s.Board.Cards {
				if c := &s.Board.Cards[i]; c.Revealed && !c.Matched {
					c.Matched = true
				}
			}
			s.Board.Score = m.Score
			s.Board.MatchCount = m.MatchCount
		}
		s.Banner = "Match!"
		s.PlaySound("/web/sounds/match.mp3")

	case *game.MismatchMessage:
		s.Banner = "Try again"
		s.PlaySound("/web/sounds/mismatch.mp3")

	case *game.CompleteMessage:
		if s.Board != nil {
			s.Board.Phase = "completed"
			s.Board.Score = m.FinalScore
		}
		s.Banner = fmt.Sprintf("Finished with %d points!", m.FinalScore)
		s.PlaySound("/web/sounds/finish.mp3")

	case *game.ErrorMessage:
		s.Error = m.Message
	}
	s.Notify()
}

func (s *GlobalClientState) card(id int) *game.Card {
	if s.Board == nil || id < 0 || id >= len(s.Board.Cards) {
		return nil
	}
	return &s.Board.Cards[id]
}

func (s *GlobalClientState) send(msgType game.MessageType, payload any) {
	if s.Conn == nil {
		return
	}
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		klog.Errorf("send: Failed to create %s message: %v", msgType, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	if err := wsjson.Write(ctx, s.Conn, msg); err != nil {
		klog.Errorf("send: Failed to send %s message: %v", msgType, err)
	}
}

// SendSelect asks the server to turn card id face-up.
func (s *GlobalClientState) SendSelect(id int) {
	s.send(game.MsgTypeSelect, game.SelectMessage{CardID: id})
}

// SendReset asks the server for a new game with the given grid.
func (s *GlobalClientState) SendReset(grid game.GridSpec) {
	s.send(game.MsgTypeReset, game.ResetMessage{Grid: grid})
}
