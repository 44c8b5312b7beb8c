package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bagman/internal/catalog"
	"bagman/internal/catalog/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.TestStore(t, func(t *testing.T) catalog.Store {
		s := NewStore(filepath.Join(t.TempDir(), "catalog.json"))
		if err := s.Provision(context.Background()); err != nil {
			t.Fatalf("provision: %v", err)
		}
		return s
	})
}

func TestStoreNotProvisioned(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "catalog.json"))
	ctx := context.Background()

	if err := s.IsConnected(ctx); !errors.Is(err, catalog.ErrNotProvisioned) {
		t.Fatalf("expected ErrNotProvisioned, got %v", err)
	}
	if _, err := s.GetAll(ctx); !errors.Is(err, catalog.ErrNotProvisioned) {
		t.Fatalf("GetAll on missing file: expected ErrNotProvisioned, got %v", err)
	}
}

func TestStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	ctx := context.Background()

	s1 := NewStore(path)
	if err := s1.Provision(ctx); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := s1.Insert(ctx, catalog.Document{"name": "rec_a"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	s2 := NewStore(path)
	docs, err := s2.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(docs) != 1 || docs[0]["name"] != "rec_a" {
		t.Fatalf("expected rec_a from second instance, got %+v", docs)
	}
}

func TestStoreRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "records": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if _, err := s.GetAll(context.Background()); err == nil {
		t.Fatal("expected error for unsupported file version, got nil")
	}
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if err := s.IsConnected(context.Background()); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
