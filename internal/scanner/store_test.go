package scanner

import (
	"context"
	"testing"
)

func TestInMemoryStoreAppendAndLoad(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	entries, last, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 || last != 0 {
		t.Fatalf("expected empty cache, got %d entries, last=%d", len(entries), last)
	}

	if err := s.Append(ctx, []cacheEntry{{Index: 0, Ciphertext: "a"}, {Index: 1, Ciphertext: "b"}}, 2); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, last, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || last != 2 {
		t.Fatalf("expected 2 entries and last=2, got %d entries, last=%d", len(entries), last)
	}
}

func TestInMemoryStoreClear(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	s.Append(ctx, []cacheEntry{{Index: 0, Ciphertext: "a"}}, 1)
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	entries, last, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 || last != 0 {
		t.Fatalf("expected empty cache after clear, got %d entries, last=%d", len(entries), last)
	}
}

func TestInMemoryStoreLastFetchedIndexNeverRegresses(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	s.Append(ctx, nil, 10)
	s.Append(ctx, nil, 5)

	_, last, _ := s.Load(ctx)
	if last != 10 {
		t.Errorf("expected lastFetchedIndex to stay at the high-water mark 10, got %d", last)
	}
}
