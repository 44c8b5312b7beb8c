package memory

import (
	"context"
	"testing"

	"bagman/internal/catalog"
	"bagman/internal/catalog/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.TestStore(t, func(t *testing.T) catalog.Store {
		return NewStore()
	})
}

func TestGetAllReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Insert(ctx, catalog.Document{"name": "rec_a"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	docs, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	docs[0] = catalog.Document{"name": "mutated"}

	again, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if again[0]["name"] != "rec_a" {
		t.Fatal("mutating the returned slice leaked into the store")
	}
}

func TestDocumentsAreCopiedInAndOut(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	inserted := catalog.Document{
		"name":  "rec_a",
		"files": []any{map[string]any{"path": "a.mcap"}},
	}
	if err := s.Insert(ctx, inserted); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Mutating the caller's document after insert must not reach the store.
	inserted["name"] = "mutated"

	got, err := s.Get(ctx, "name", "rec_a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("record not found; insert aliased the caller's map")
	}

	// Mutating a returned document, including nested values, must not
	// reach the store either.
	got["name"] = "mutated"
	got["files"].([]any)[0].(map[string]any)["path"] = "evil.mcap"

	again, err := s.Get(ctx, "name", "rec_a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again == nil {
		t.Fatal("top-level mutation leaked into the store")
	}
	path := again["files"].([]any)[0].(map[string]any)["path"]
	if path != "a.mcap" {
		t.Fatalf("nested mutation leaked into the store: %v", path)
	}

	matches, err := s.Search(ctx, "name", "rec_a")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
}
