package game

import (
	"encoding/json"
	"fmt"
)

// Message type for WebSocket communication between client and server.
type MessageType string

const (
	MsgTypeSelect    MessageType = "select"    // Client selects a card
	MsgTypeReset     MessageType = "reset"     // Client starts a new grid
	MsgTypeState     MessageType = "state"     // Server sends the full board
	MsgTypeRevealed  MessageType = "revealed"  // Server: a card turned face-up
	MsgTypeConcealed MessageType = "concealed" // Server: a card turned face-down
	MsgTypeMatch     MessageType = "match"     // Server: a pair was matched
	MsgTypeMismatch  MessageType = "mismatch"  // Server: the two cards differ
	MsgTypeComplete  MessageType = "complete"  // Server: all pairs matched
	MsgTypeError     MessageType = "error"     // Server sends an error message
)

// WsMessage represents a WebSocket message.
type WsMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewWsMessage creates a new WsMessage with a marshaled payload.
func NewWsMessage(msgType MessageType, payload any) (WsMessage, error) {
	if payload == nil {
		return WsMessage{Type: msgType}, nil
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return WsMessage{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return WsMessage{
		Type:    msgType,
		Payload: payloadBytes,
	}, nil
}

// Parse unmarshals the message payload into one of the message types (SelectMessage, StateMessage, etc.)
func (m *WsMessage) Parse() (any, error) {
	var target any
	switch m.Type {
	case MsgTypeSelect:
		target = &SelectMessage{}
	case MsgTypeReset:
		target = &ResetMessage{}
	case MsgTypeState:
		target = &StateMessage{}
	case MsgTypeRevealed:
		target = &RevealedMessage{}
	case MsgTypeConcealed:
		target = &ConcealedMessage{}
	case MsgTypeMatch:
		target = &MatchMessage{}
	case MsgTypeMismatch:
		target = &MismatchMessage{}
	case MsgTypeComplete:
		target = &CompleteMessage{}
	case MsgTypeError:
		target = &ErrorMessage{}
	default:
		return nil, fmt.Errorf("unknown message type: %s", m.Type)
	}

	if len(m.Payload) == 0 {
		return target, nil
	}

	err := json.Unmarshal(m.Payload, target)
	return target, err
}

// SelectMessage is the payload for MsgTypeSelect
type SelectMessage struct {
	CardID int `json:"card_id"`
}

// ResetMessage is the payload for MsgTypeReset
type ResetMessage struct {
	Grid GridSpec `json:"grid"`
}

// HiddenIcon is sent in place of the icon of a face-down card.
const HiddenIcon IconID = -1

// Board is what a client is allowed to see of a GameState.
type Board struct {
	Grid       GridSpec `json:"grid"`
	Cards      []Card   `json:"cards"`
	Score      int      `json:"score"`
	MatchCount int      `json:"match_count"`
	Phase      string   `json:"phase"`
}

// NewBoard builds the client view of s, hiding the icons of face-down cards.
func NewBoard(s GameState, phase string) Board {
	cards := make([]Card, len(s.Cards))
	for i, c := range s.Cards {
		if !c.Revealed {
			c.Icon = HiddenIcon
		}
		cards[i] = c
	}
	return Board{
		Grid:       s.Grid,
		Cards:      cards,
		Score:      s.Score,
		MatchCount: s.MatchCount,
		Phase:      phase,
	}
}

// StateMessage is the payload for MsgTypeState
type StateMessage struct {
	Board Board `json:"board"`
}

// RevealedMessage is the payload for MsgTypeRevealed
type RevealedMessage struct {
	CardID int    `json:"card_id"`
	Icon   IconID `json:"icon"`
}

// ConcealedMessage is the payload for MsgTypeConcealed
type ConcealedMessage struct {
	CardID int `json:"card_id"`
}

// MatchMessage is the payload for MsgTypeMatch
type MatchMessage struct {
	Score      int `json:"score"`
	MatchCount int `json:"match_count"`
}

// MismatchMessage: empty.
type MismatchMessage struct{}

// CompleteMessage is the payload for MsgTypeComplete
type CompleteMessage struct {
	FinalScore int `json:"final_score"`
}

// ErrorMessage is the payload for MsgTypeError
type ErrorMessage struct {
	Message string `json:"message"`
}
