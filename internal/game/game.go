package game

import "time"

// Version of the game.
// Bumping this number will eventually make clients reload the WASM.
var Version = "v0.1.0"

// SettleDelay is the default wait between the second selection and the match
// judgment, long enough for the flip animation to play.
var SettleDelay = 300 * time.Millisecond

// DefaultGrid is the board used when there is no saved game.
var DefaultGrid = GridSpec{Columns: 3, Rows: 2}

// Grids offered by the menu.
var Grids = []GridSpec{
	{Columns: 3, Rows: 2},
	{Columns: 3, Rows: 3},
	{Columns: 3, Rows: 4},
}
