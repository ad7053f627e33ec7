package engine

import "github.com/janpfeifer/GoMemory/internal/game"

// Notifier receives the engine's signals for rendering, audio and UI.
//
// Methods are called with the engine lock held, on whichever goroutine caused
// the change (a Select caller or the settle timer). They must not call back
// into the Engine synchronously.
type Notifier interface {
	CardRevealed(id int, icon game.IconID)
	CardConcealed(id int)
	Matched(score, matchCount int)
	Mismatched()
	GameCompleted(finalScore int)
}

// NopNotifier ignores every signal.
type NopNotifier struct{}

func (NopNotifier) CardRevealed(int, game.IconID) {}
func (NopNotifier) CardConcealed(int)             {}
func (NopNotifier) Matched(int, int)              {}
func (NopNotifier) Mismatched()                   {}
func (NopNotifier) GameCompleted(int)             {}

// Notifiers fans every signal out to each notifier in order.
type Notifiers []Notifier

func (ns Notifiers) CardRevealed(id int, icon game.IconID) {
	for _, n := range ns {
		n.CardRevealed(id, icon)
	}
}

func (ns Notifiers) CardConcealed(id int) {
	for _, n := range ns {
		n.CardConcealed(id)
	}
}

func (ns Notifiers) Matched(score, matchCount int) {
	for _, n := range ns {
		n.Matched(score, matchCount)
	}
}

func (ns Notifiers) Mismatched() {
	for _, n := range ns {
		n.Mismatched()
	}
}

func (ns Notifiers) GameCompleted(finalScore int) {
	for _, n := range ns {
		n.GameCompleted(finalScore)
	}
}
