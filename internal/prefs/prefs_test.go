package prefs

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Get(ctx, "Score"); err != nil || ok {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.SetAll(ctx, map[string]string{"Score": "3", "Rows": "2"}); err != nil {
		t.Fatalf("set all: %v", err)
	}
	v, ok, err := s.Get(ctx, "Score")
	if err != nil || !ok || v != "3" {
		t.Fatalf("Get(Score) = %q, %v, %v", v, ok, err)
	}
	if err := s.Delete(ctx, "Score", "Missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Expected 1 key left, got %d", s.Len())
	}
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	err := NewMemoryStore().SetAll(context.Background(), map[string]string{"": "x"})
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Expected ErrInvalidKey, got %v", err)
	}
}

func TestMemoryStoreHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewMemoryStore().Get(ctx, "Score"); err == nil {
		t.Fatal("Expected context error")
	}
}
