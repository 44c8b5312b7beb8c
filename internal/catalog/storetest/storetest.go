// Package storetest provides a shared conformance test suite for
// catalog.Store implementations. Each backend wires this suite to verify it
// satisfies the full contract with identical semantics: the file and memory
// backends run it in-process, the networked backends behind env-guarded
// integration tests.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"bagman/internal/catalog"
)

func doc(name string, start float64) catalog.Document {
	return catalog.Document{
		"name":       name,
		"path":       "/recordings/" + name,
		"start_time": start,
	}
}

// TestStore runs the full conformance suite against a Store implementation.
// newStore must return a fresh, provisioned, empty store for each sub-test.
func TestStore(t *testing.T, newStore func(t *testing.T) catalog.Store) {
	ctx := context.Background()

	t.Run("EmptyGetAll", func(t *testing.T) {
		s := newStore(t)
		docs, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("expected empty store, got %d records", len(docs))
		}
	})

	t.Run("InsertAndGet", func(t *testing.T) {
		s := newStore(t)
		if err := s.Insert(ctx, doc("rec_a", 100)); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		got, err := s.Get(ctx, "name", "rec_a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got == nil {
			t.Fatal("expected record, got nil")
		}
		if got["path"] != "/recordings/rec_a" {
			t.Errorf("path: expected %q, got %v", "/recordings/rec_a", got["path"])
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Get(ctx, "name", "nope")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil for missing record, got %+v", got)
		}
	})

	t.Run("ContainsGetAgreement", func(t *testing.T) {
		s := newStore(t)
		if err := s.Insert(ctx, doc("rec_a", 100)); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		for _, name := range []string{"rec_a", "rec_b"} {
			ok, err := s.Contains(ctx, "name", name)
			if err != nil {
				t.Fatalf("Contains(%q): %v", name, err)
			}
			got, err := s.Get(ctx, "name", name)
			if err != nil {
				t.Fatalf("Get(%q): %v", name, err)
			}
			if ok != (got != nil) {
				t.Errorf("Contains(%q)=%v disagrees with Get(%q)=%v", name, ok, name, got)
			}
		}
	})

	// Names with hyphens and spaces tokenize in analyzed text matching.
	// Exact-match semantics must not cross-match them.
	t.Run("ExactMatchOnly", func(t *testing.T) {
		s := newStore(t)
		for _, name := range []string{"run-2024-01-01", "run-2024-01-02", "run 2024"} {
			if err := s.Insert(ctx, doc(name, 1)); err != nil {
				t.Fatalf("Insert(%q): %v", name, err)
			}
		}

		matches, err := s.Search(ctx, "name", "run-2024-01-01")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected exactly 1 match, got %d", len(matches))
		}
		if matches[0]["name"] != "run-2024-01-01" {
			t.Errorf("matched wrong record: %v", matches[0]["name"])
		}

		ok, err := s.Contains(ctx, "name", "run")
		if err != nil {
			t.Fatalf("Contains: %v", err)
		}
		if ok {
			t.Error("Contains matched a token instead of the full value")
		}
	})

	t.Run("UpsertInsertsWhenMissing", func(t *testing.T) {
		s := newStore(t)
		if err := s.Upsert(ctx, doc("rec_a", 100), "name", "rec_a"); err != nil {
			t.Fatalf("Upsert: %v", err)
		}

		docs, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("expected 1 record, got %d", len(docs))
		}
	})

	t.Run("UpsertReplacesMatch", func(t *testing.T) {
		s := newStore(t)
		if err := s.Insert(ctx, doc("rec_a", 100)); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		updated := doc("rec_a", 200)
		updated["operator"] = "alice"
		if err := s.Upsert(ctx, updated, "name", "rec_a"); err != nil {
			t.Fatalf("Upsert: %v", err)
		}

		docs, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("upsert duplicated the record: got %d records", len(docs))
		}
		got, err := s.Get(ctx, "name", "rec_a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got["operator"] != "alice" {
			t.Errorf("operator: expected %q, got %v", "alice", got["operator"])
		}
	})

	t.Run("UpsertIdempotent", func(t *testing.T) {
		s := newStore(t)
		d := doc("rec_a", 100)
		for i := 0; i < 3; i++ {
			if err := s.Upsert(ctx, d, "name", "rec_a"); err != nil {
				t.Fatalf("Upsert #%d: %v", i+1, err)
			}
		}

		docs, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("expected exactly 1 record after repeated upserts, got %d", len(docs))
		}
	})

	t.Run("UpsertReplacesAfterTruncateReinsert", func(t *testing.T) {
		s := newStore(t)
		if err := s.Upsert(ctx, doc("rec_a", 100), "name", "rec_a"); err != nil {
			t.Fatalf("Upsert: %v", err)
		}

		// Rewrite the store the way a catalog resort does: fetch all,
		// truncate, bulk re-insert. The record's backend-side identity may
		// change in the process.
		docs, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if err := s.Truncate(ctx); err != nil {
			t.Fatalf("Truncate: %v", err)
		}
		if err := s.InsertMultiple(ctx, docs); err != nil {
			t.Fatalf("InsertMultiple: %v", err)
		}

		// Upserting the same key must still replace the re-inserted record,
		// never add a second copy.
		if err := s.Upsert(ctx, doc("rec_a", 200), "name", "rec_a"); err != nil {
			t.Fatalf("Upsert after reinsert: %v", err)
		}

		docs, err = s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("expected 1 record after upsert, got %d", len(docs))
		}
		if got, _ := docs[0]["start_time"].(float64); got != 200 {
			t.Errorf("start_time: expected 200, got %v", docs[0]["start_time"])
		}
	})

	t.Run("SearchReturnsAllMatches", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 3; i++ {
			d := doc(fmt.Sprintf("rec_%d", i), float64(i))
			d["vehicle"] = "v1"
			if err := s.Insert(ctx, d); err != nil {
				t.Fatalf("Insert: %v", err)
			}
		}
		d := doc("rec_other", 9)
		d["vehicle"] = "v2"
		if err := s.Insert(ctx, d); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		matches, err := s.Search(ctx, "vehicle", "v1")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(matches) != 3 {
			t.Fatalf("expected 3 matches, got %d", len(matches))
		}
	})

	t.Run("RemoveDeletesAllMatches", func(t *testing.T) {
		s := newStore(t)
		if err := s.Insert(ctx, doc("rec_a", 100)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := s.Insert(ctx, doc("rec_a", 200)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := s.Insert(ctx, doc("rec_b", 300)); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		if err := s.Remove(ctx, "name", "rec_a"); err != nil {
			t.Fatalf("Remove: %v", err)
		}

		docs, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("expected 1 record after remove, got %d", len(docs))
		}
		if docs[0]["name"] != "rec_b" {
			t.Errorf("wrong survivor: %v", docs[0]["name"])
		}
	})

	t.Run("TruncateKeepsStoreUsable", func(t *testing.T) {
		s := newStore(t)
		if err := s.Insert(ctx, doc("rec_a", 100)); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		if err := s.Truncate(ctx); err != nil {
			t.Fatalf("Truncate: %v", err)
		}

		docs, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll after truncate: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("expected empty store after truncate, got %d records", len(docs))
		}

		// Store structure must stay intact: writes still work.
		if err := s.Insert(ctx, doc("rec_b", 200)); err != nil {
			t.Fatalf("Insert after truncate: %v", err)
		}
		if err := s.IsConnected(ctx); err != nil {
			t.Fatalf("IsConnected after truncate: %v", err)
		}
	})

	t.Run("InsertMultiplePreservesOrder", func(t *testing.T) {
		s := newStore(t)
		var docs []catalog.Document
		for i := 0; i < 5; i++ {
			docs = append(docs, doc(fmt.Sprintf("rec_%d", i), float64(i)))
		}
		if err := s.InsertMultiple(ctx, docs); err != nil {
			t.Fatalf("InsertMultiple: %v", err)
		}

		got, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("expected 5 records, got %d", len(got))
		}
		for i, d := range got {
			want := fmt.Sprintf("rec_%d", i)
			if d["name"] != want {
				t.Errorf("record %d: expected %q, got %v", i, want, d["name"])
			}
		}
	})

	t.Run("InsertMultipleEmpty", func(t *testing.T) {
		s := newStore(t)
		if err := s.InsertMultiple(ctx, nil); err != nil {
			t.Fatalf("InsertMultiple(nil): %v", err)
		}
	})

	t.Run("ProvisionIdempotent", func(t *testing.T) {
		s := newStore(t)
		if err := s.Insert(ctx, doc("rec_a", 100)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if err := s.Provision(ctx); err != nil {
			t.Fatalf("Provision on provisioned store: %v", err)
		}

		docs, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("re-provision lost records: got %d", len(docs))
		}
	})

	t.Run("NumericKeyMatch", func(t *testing.T) {
		s := newStore(t)
		d := doc("rec_a", 100)
		if err := s.Insert(ctx, d); err != nil {
			t.Fatalf("Insert: %v", err)
		}

		// Records round-trip through JSON/BSON with numeric widening;
		// exact match on a numeric field must survive it.
		ok, err := s.Contains(ctx, "start_time", 100)
		if err != nil {
			t.Fatalf("Contains: %v", err)
		}
		if !ok {
			t.Error("int query did not match float64-stored value")
		}
	})
}
