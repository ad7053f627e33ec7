package game

import (
	"fmt"
	"strings"
)

// IconID identifies an icon by its index in the Catalog.
type IconID int

// Catalog is the ordered, read-only pool of icons used to populate pairs.
type Catalog []IconID

// NewCatalog returns a catalog with the icons 0..size-1.
func NewCatalog(size int) (Catalog, error) {
	if size <= 0 {
		return nil, fmt.Errorf("catalog size must be positive, got %d", size)
	}
	catalog := make(Catalog, size)
	for i := range catalog {
		catalog[i] = IconID(i)
	}
	return catalog, nil
}

// GridSpec is the shape of a board: Columns*Rows cards.
type GridSpec struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// MaxCards bounds the number of cards on a board.
const MaxCards = 1024

// Valid reports whether both dimensions are positive and the board holds at
// most MaxCards cards. The bound is checked without computing Columns*Rows,
// which could overflow.
func (g GridSpec) Valid() bool {
	return g.Columns > 0 && g.Rows > 0 && g.Columns <= MaxCards/g.Rows
}

// Cards is the total number of card slots in the grid.
func (g GridSpec) Cards() int {
	return g.Columns * g.Rows
}

// Pairs is the number of pairs needed to complete the grid.
// For odd grids the extra card is never part of a pair.
func (g GridSpec) Pairs() int {
	return g.Cards() / 2
}

func (g GridSpec) String() string {
	return fmt.Sprintf("%dx%d", g.Columns, g.Rows)
}

// Card is a single grid cell.
type Card struct {
	ID       int    `json:"id"`       // Slot index, stable for one grid generation
	Icon     IconID `json:"icon"`     // Hidden icon
	Revealed bool   `json:"revealed"` // Currently face-up
	Matched  bool   `json:"matched"`  // Permanently paired
}

// GameState is the full mutable state of one game.
type GameState struct {
	Grid       GridSpec
	Cards      []Card
	MatchCount int
	Score      int
	MatchedIDs map[int]struct{}
}

// NewGameState lays out fresh face-down cards following the given icon order.
func NewGameState(grid GridSpec, order []IconID) GameState {
	cards := make([]Card, len(order))
	for i, icon := range order {
		cards[i] = Card{ID: i, Icon: icon}
	}
	return GameState{
		Grid:       grid,
		Cards:      cards,
		MatchedIDs: make(map[int]struct{}),
	}
}

// Clone returns a deep copy, safe to hand out of the engine.
func (s GameState) Clone() GameState {
	clone := s
	clone.Cards = append([]Card(nil), s.Cards...)
	clone.MatchedIDs = make(map[int]struct{}, len(s.MatchedIDs))
	for id := range s.MatchedIDs {
		clone.MatchedIDs[id] = struct{}{}
	}
	return clone
}

// Order returns the icon of every card in grid order.
func (s GameState) Order() []IconID {
	order := make([]IconID, len(s.Cards))
	for i, c := range s.Cards {
		order[i] = c.Icon
	}
	return order
}

func (s GameState) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game %s: score=%d, matches=%d/%d, cards: ", s.Grid, s.Score, s.MatchCount, s.Grid.Pairs())
	for _, c := range s.Cards {
		switch {
		case c.Matched:
			fmt.Fprintf(&sb, "[%d] ", c.Icon)
		case c.Revealed:
			fmt.Fprintf(&sb, "(%d) ", c.Icon)
		default:
			sb.WriteString("## ")
		}
	}
	return sb.String()
}
