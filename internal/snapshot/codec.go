// Package snapshot converts a game in progress to and from a flat prefs.Store.
//
// Values are stored as strings under fixed keys. Lists are comma-joined
// integers and are decoded leniently: malformed tokens are dropped one by one
// instead of discarding the whole snapshot.
package snapshot

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/janpfeifer/GoMemory/internal/prefs"
	"k8s.io/klog/v2"
)

// Keys of the persisted layout. The presence of KeyScore marks a saved game.
const (
	KeyScore      = "Score"
	KeyMatchCount = "MatchCount"
	KeyColumns    = "Columns"
	KeyRows       = "Rows"
	KeyMatched    = "Matched"
	KeyOrder      = "Order"
)

// Keys lists every key written by Save.
var Keys = []string{KeyScore, KeyMatchCount, KeyColumns, KeyRows, KeyMatched, KeyOrder}

// Snapshot is the persisted form of a game.
type Snapshot struct {
	Score      int
	MatchCount int
	Columns    int
	Rows       int
	Matched    []int // Card ids, order does not matter
	Order      []int // Catalog index of each card, in grid order
}

// Equal compares two snapshots, treating Matched as a set.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Score != o.Score || s.MatchCount != o.MatchCount || s.Columns != o.Columns || s.Rows != o.Rows {
		return false
	}
	a, b := slices.Clone(s.Matched), slices.Clone(o.Matched)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b) && slices.Equal(s.Order, o.Order)
}

// Encode returns the key/value form of s.
func Encode(s Snapshot) map[string]string {
	return map[string]string{
		KeyScore:      strconv.Itoa(s.Score),
		KeyMatchCount: strconv.Itoa(s.MatchCount),
		KeyColumns:    strconv.Itoa(s.Columns),
		KeyRows:       strconv.Itoa(s.Rows),
		KeyMatched:    FormatIntList(s.Matched),
		KeyOrder:      FormatIntList(s.Order),
	}
}

// Decode rebuilds a snapshot from the values returned by get.
// It returns false when there is no saved game, or when a scalar field is
// missing, malformed or out of range.
func Decode(get func(key string) (string, bool)) (Snapshot, bool) {
	if _, ok := get(KeyScore); !ok {
		return Snapshot{}, false
	}
	var s Snapshot
	scalars := []struct {
		key string
		dst *int
		min int
	}{
		{KeyScore, &s.Score, 0},
		{KeyMatchCount, &s.MatchCount, 0},
		{KeyColumns, &s.Columns, 1},
		{KeyRows, &s.Rows, 1},
	}
	for _, f := range scalars {
		raw, ok := get(f.key)
		if !ok {
			klog.Warningf("snapshot: missing %s, ignoring saved game", f.key)
			return Snapshot{}, false
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || v < f.min {
			klog.Warningf("snapshot: bad %s=%q, ignoring saved game", f.key, raw)
			return Snapshot{}, false
		}
		*f.dst = v
	}
	matched, _ := get(KeyMatched)
	order, _ := get(KeyOrder)
	s.Matched = ParseIntList(matched)
	s.Order = ParseIntList(order)
	return s, true
}

// FormatIntList joins values with commas. An empty list is "".
func FormatIntList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// ParseIntList splits a comma-joined list, skipping tokens that are not integers.
func ParseIntList(raw string) []int {
	if strings.TrimSpace(raw) == "" {
		return []int{}
	}
	tokens := strings.Split(raw, ",")
	values := make([]int, 0, len(tokens))
	for _, token := range tokens {
		v, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			klog.V(1).Infof("snapshot: skipping malformed token %q", token)
			continue
		}
		values = append(values, v)
	}
	return values
}

// Codec saves and loads snapshots in a prefs.Store.
type Codec struct {
	store prefs.Store
}

// NewCodec returns a Codec backed by store.
func NewCodec(store prefs.Store) *Codec {
	return &Codec{store: store}
}

// Save writes every key of s in one batch.
func (c *Codec) Save(ctx context.Context, s Snapshot) error {
	if err := c.store.SetAll(ctx, Encode(s)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the saved snapshot, or false if there is none usable.
func (c *Codec) Load(ctx context.Context) (Snapshot, bool, error) {
	values := make(map[string]string, len(Keys))
	for _, key := range Keys {
		v, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
		}
		if ok {
			values[key] = v
		}
	}
	s, ok := Decode(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
	return s, ok, nil
}

// Clear removes the saved game.
func (c *Codec) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, Keys...); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
