package engine

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/janpfeifer/GoMemory/internal/snapshot"
)

// SnapshotStore persists the game between runs. *snapshot.Codec implements it.
type SnapshotStore interface {
	Save(ctx context.Context, s snapshot.Snapshot) error
	Load(ctx context.Context) (snapshot.Snapshot, bool, error)
	Clear(ctx context.Context) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the receiver of the engine's signals.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithStore enables persistence.
func WithStore(s SnapshotStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithScoring replaces the default one-point-per-pair rule.
func WithScoring(rule ScoringRule) Option {
	return func(e *Engine) {
		if rule != nil {
			e.scoring = rule
		}
	}
}

// WithSettleDelay sets the wait between the second selection and the judgment.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.settleDelay = d
		}
	}
}

// WithRand sets the shuffle source. Use a seeded source for reproducible decks.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}
