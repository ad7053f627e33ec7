package snapshot

import (
	"context"
	"slices"
	"testing"

	"github.com/janpfeifer/GoMemory/internal/prefs"
)

func TestParseIntList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{"empty", "", []int{}},
		{"blank", "  ", []int{}},
		{"single", "4", []int{4}},
		{"several", "3,0,2", []int{3, 0, 2}},
		{"spaces", " 1, 2 ,3", []int{1, 2, 3}},
		{"malformed tokens skipped", "1,x,,2,3.5,-1", []int{1, 2, -1}},
		{"all malformed", "a,b", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIntList(tt.raw)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("ParseIntList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatIntList(t *testing.T) {
	if got := FormatIntList(nil); got != "" {
		t.Fatalf("FormatIntList(nil) = %q", got)
	}
	if got := FormatIntList([]int{5, 0, 12}); got != "5,0,12" {
		t.Fatalf("FormatIntList = %q", got)
	}
}

func TestDecode(t *testing.T) {
	valid := map[string]string{
		KeyScore: "2", KeyMatchCount: "2", KeyColumns: "3", KeyRows: "2",
		KeyMatched: "1,4,0,5", KeyOrder: "0,0,1,2,1,2",
	}
	tests := []struct {
		name   string
		change func(map[string]string)
		ok     bool
	}{
		{"valid", func(map[string]string) {}, true},
		{"no saved game", func(m map[string]string) { delete(m, KeyScore) }, false},
		{"missing rows", func(m map[string]string) { delete(m, KeyRows) }, false},
		{"zero columns", func(m map[string]string) { m[KeyColumns] = "0" }, false},
		{"malformed score", func(m map[string]string) { m[KeyScore] = "lots" }, false},
		{"negative match count", func(m map[string]string) { m[KeyMatchCount] = "-1" }, false},
		{"missing lists", func(m map[string]string) { delete(m, KeyMatched); delete(m, KeyOrder) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(map[string]string)
			for k, v := range valid {
				m[k] = v
			}
			tt.change(m)
			_, ok := Decode(func(key string) (string, bool) {
				v, ok := m[key]
				return v, ok
			})
			if ok != tt.ok {
				t.Fatalf("Decode ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	codec := NewCodec(store)

	if _, ok, err := codec.Load(ctx); err != nil || ok {
		t.Fatalf("Expected no saved game, got ok=%v err=%v", ok, err)
	}

	want := Snapshot{
		Score:      4,
		MatchCount: 2,
		Columns:    3,
		Rows:       3,
		Matched:    []int{8, 2, 5, 0},
		Order:      []int{0, 1, 0, 2, 3, 1, 2, 3, 0},
	}
	if err := codec.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := codec.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	if err := codec.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("Expected empty store after clear, got %d keys", store.Len())
	}
}

func TestCodecEmptyMatched(t *testing.T) {
	ctx := context.Background()
	codec := NewCodec(prefs.NewMemoryStore())
	want := Snapshot{Columns: 2, Rows: 1, Order: []int{0, 0}}
	if err := codec.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := codec.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(got.Matched) != 0 || !got.Equal(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
