// Package engine implements the selection/match state machine of the game.
//
// An Engine owns one GameState. Players reveal two cards per turn with
// Select; after a settle delay the pair is judged: matching cards stay
// face-up and score, others are turned back. The state is saved after every
// change that should survive a restart, and cleared once the game is won.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/janpfeifer/GoMemory/internal/random"
	"github.com/janpfeifer/GoMemory/internal/snapshot"
	"github.com/looplab/fsm"
	"k8s.io/klog/v2"
)

var (
	ErrEmptyCatalog    = errors.New("empty icon catalog")
	ErrInvalidGrid     = errors.New("invalid grid")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Phase of the selection state machine.
type Phase string

const (
	Idle        Phase = "idle"
	OneSelected Phase = "one_selected"
	Evaluating  Phase = "evaluating"
	Completed   Phase = "completed"
)

const (
	eventFirst    = "select_first"
	eventSecond   = "select_second"
	eventResolve  = "resolve"
	eventComplete = "complete"
)

// saveTimeout caps a single write to the snapshot store.
const saveTimeout = 2 * time.Second

const noCard = -1

// Engine is the game's single owner of state. It is safe for concurrent use,
// but behaves as one logical actor: calls are serialized.
type Engine struct {
	mu sync.Mutex

	catalog     game.Catalog
	rng         *rand.Rand
	scoring     ScoringRule
	notifier    Notifier
	store       SnapshotStore
	settleDelay time.Duration

	machine       *fsm.FSM
	state         game.GameState
	first, second int
	streak        int

	// generation invalidates judgments scheduled for a replaced state.
	generation uint64
	pending    *time.Timer
}

// New creates an Engine without a game; call Reset, Restore or Resume next.
func New(catalog game.Catalog, opts ...Option) (*Engine, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	e := &Engine{
		catalog:     slices.Clone(catalog),
		scoring:     DefaultScoring,
		notifier:    NopNotifier{},
		settleDelay: game.SettleDelay,
		first:       noCard,
		second:      noCard,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		rng, err := random.NewUnseeded()
		if err != nil {
			return nil, fmt.Errorf("seed shuffle: %w", err)
		}
		e.rng = rng
	}
	e.machine = fsm.NewFSM(
		string(Idle),
		fsm.Events{
			{Name: eventFirst, Src: []string{string(Idle)}, Dst: string(OneSelected)},
			{Name: eventSecond, Src: []string{string(OneSelected)}, Dst: string(Evaluating)},
			{Name: eventResolve, Src: []string{string(Evaluating)}, Dst: string(Idle)},
			{Name: eventComplete, Src: []string{string(Evaluating)}, Dst: string(Completed)},
		},
		fsm.Callbacks{},
	)
	return e, nil
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase()
}

// State returns a copy of the current game state.
func (e *Engine) State() game.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Board returns the client view of the current game.
func (e *Engine) Board() game.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return game.NewBoard(e.state, string(e.phase()))
}

// Reset discards the current game and deals a new one of the given shape.
// The fresh game is in place even when saving it fails; the error is returned
// so the caller can report it.
func (e *Engine) Reset(ctx context.Context, grid game.GridSpec) error {
	if !grid.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidGrid, grid)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	deck := game.BuildDeck(grid.Cards(), e.catalog, e.rng)
	e.replace(game.NewGameState(grid, deck), Idle)
	klog.Infof("New game %s with %d pairs", grid, grid.Pairs())
	return e.save(ctx)
}

// Restore rebuilds the game from a snapshot without reshuffling.
// Out-of-range icon indices and card ids are dropped; if the remaining icon
// order does not fill the grid, the snapshot is rejected with ErrInvalidSnapshot.
func (e *Engine) Restore(snap snapshot.Snapshot) error {
	grid := game.GridSpec{Columns: snap.Columns, Rows: snap.Rows}
	if !grid.Valid() {
		return fmt.Errorf("%w: grid %s", ErrInvalidSnapshot, grid)
	}
	order := make([]game.IconID, 0, len(snap.Order))
	for _, idx := range snap.Order {
		if idx < 0 || idx >= len(e.catalog) {
			klog.V(1).Infof("Restore: dropping icon index %d", idx)
			continue
		}
		order = append(order, e.catalog[idx])
	}
	if len(order) != grid.Cards() {
		return fmt.Errorf("%w: %d icons for a %s grid", ErrInvalidSnapshot, len(order), grid)
	}

	state := game.NewGameState(grid, order)
	for _, id := range snap.Matched {
		if id < 0 || id >= len(state.Cards) {
			klog.V(1).Infof("Restore: dropping matched id %d", id)
			continue
		}
		state.Cards[id].Match()
		state.MatchedIDs[id] = struct{}{}
	}
	state.Score = snap.Score
	state.MatchCount = len(state.MatchedIDs) / 2
	if state.MatchCount != snap.MatchCount {
		klog.Warningf("Restore: saved match count %d disagrees with %d matched cards, using %d",
			snap.MatchCount, len(state.MatchedIDs), state.MatchCount)
	}

	phase := Idle
	if grid.Pairs() > 0 && state.MatchCount >= grid.Pairs() {
		phase = Completed
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.replace(state, phase)
	klog.Infof("Restored game %s: score=%d, matches=%d/%d", grid, state.Score, state.MatchCount, grid.Pairs())
	return nil
}

// Resume restores the saved game if there is a usable one, and otherwise
// starts a fresh game with the fallback grid.
func (e *Engine) Resume(ctx context.Context, fallback game.GridSpec) error {
	if e.store != nil {
		snap, ok, err := e.store.Load(ctx)
		switch {
		case err != nil:
			klog.Errorf("Resume: failed to load saved game: %v", err)
		case ok:
			err := e.Restore(snap)
			if err == nil {
				return nil
			}
			klog.Warningf("Resume: discarding saved game: %v", err)
		}
	}
	return e.Reset(ctx, fallback)
}

// Select is the player's pick of card id. It returns whether the selection
// was accepted; picks of revealed or matched cards, unknown ids, and any pick
// while a pair is being judged or after completion are ignored.
func (e *Engine) Select(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id < 0 || id >= len(e.state.Cards) {
		return false
	}
	card := &e.state.Cards[id]
	if !card.Selectable() {
		return false
	}

	switch e.phase() {
	case Idle:
		e.reveal(card)
		e.first = id
		e.transition(eventFirst)
		return true

	case OneSelected:
		e.reveal(card)
		e.second = id
		e.transition(eventSecond)
		gen := e.generation
		e.pending = time.AfterFunc(e.settleDelay, func() {
			e.judge(gen)
		})
		return true

	default:
		klog.V(2).Infof("Select(%d) ignored in phase %s", id, e.phase())
		return false
	}
}

// Close cancels any pending judgment. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending()
}

// judge runs once per pair, when the settle delay elapses.
func (e *Engine) judge(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation || e.phase() != Evaluating {
		klog.V(1).Infof("Dropping stale judgment (generation %d, now %d)", gen, e.generation)
		return
	}
	e.pending = nil
	a, b := &e.state.Cards[e.first], &e.state.Cards[e.second]
	e.first, e.second = noCard, noCard

	if a.Icon != b.Icon {
		e.streak = 0
		e.notifier.Mismatched()
		for _, c := range []*game.Card{a, b} {
			if c.Conceal() {
				e.notifier.CardConcealed(c.ID)
			}
		}
		e.transition(eventResolve)
		return
	}

	e.streak++
	e.state.MatchCount++
	points := e.scoring.Points(ScoreContext{
		Score:      e.state.Score,
		MatchCount: e.state.MatchCount,
		TotalPairs: e.state.Grid.Pairs(),
		Streak:     e.streak,
	})
	e.state.Score += max(points, 0)
	for _, c := range []*game.Card{a, b} {
		c.Match()
		e.state.MatchedIDs[c.ID] = struct{}{}
	}
	e.notifier.Matched(e.state.Score, e.state.MatchCount)

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := e.save(ctx); err != nil {
		klog.Errorf("Failed to save game after match: %v", err)
	}

	if e.state.MatchCount < e.state.Grid.Pairs() {
		e.transition(eventResolve)
		return
	}
	e.transition(eventComplete)
	klog.Infof("Game %s completed with score %d", e.state.Grid, e.state.Score)
	e.notifier.GameCompleted(e.state.Score)
	if e.store != nil {
		if err := e.store.Clear(ctx); err != nil {
			klog.Errorf("Failed to clear saved game: %v", err)
		}
	}
}

func (e *Engine) phase() Phase {
	return Phase(e.machine.Current())
}

func (e *Engine) transition(event string) {
	if err := e.machine.Event(context.Background(), event); err != nil {
		// All callers check the phase first, so this is a bug.
		panic(fmt.Sprintf("engine: %s from %s: %v", event, e.machine.Current(), err))
	}
}

func (e *Engine) reveal(card *game.Card) {
	if card.Reveal() {
		e.notifier.CardRevealed(card.ID, card.Icon)
	}
}

// replace installs a new state, invalidating any pending judgment.
func (e *Engine) replace(state game.GameState, phase Phase) {
	e.cancelPending()
	e.state = state
	e.first, e.second = noCard, noCard
	e.streak = 0
	e.machine.SetState(string(phase))
}

func (e *Engine) cancelPending() {
	e.generation++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) save(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Save(ctx, e.snapshot())
}

func (e *Engine) snapshot() snapshot.Snapshot {
	matched := make([]int, 0, len(e.state.MatchedIDs))
	for id := range e.state.MatchedIDs {
		matched = append(matched, id)
	}
	slices.Sort(matched)
	order := make([]int, len(e.state.Cards))
	for i, c := range e.state.Cards {
		order[i] = e.catalogIndex(c.Icon)
	}
	return snapshot.Snapshot{
		Score:      e.state.Score,
		MatchCount: e.state.MatchCount,
		Columns:    e.state.Grid.Columns,
		Rows:       e.state.Grid.Rows,
		Matched:    matched,
		Order:      order,
	}
}

func (e *Engine) catalogIndex(icon game.IconID) int {
	return slices.Index(e.catalog, icon)
}
