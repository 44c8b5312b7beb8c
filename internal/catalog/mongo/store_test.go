package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"

	"bagman/internal/catalog"
	"bagman/internal/catalog/storetest"
	"bagman/internal/logging"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeValue(t *testing.T) {
	raw := bson.M{
		"name": "rec_a",
		"files": primitive.A{
			bson.M{"path": "a.mcap", "size": int64(4)},
		},
		"nested": bson.D{{Key: "inner", Value: primitive.A{int32(1), int32(2)}}},
	}

	doc := normalizeMap(raw)

	files, ok := doc["files"].([]any)
	if !ok || len(files) != 1 {
		t.Fatalf("files = %T %v, want []any with one entry", doc["files"], doc["files"])
	}
	if _, ok := files[0].(map[string]any); !ok {
		t.Fatalf("file entry = %T, want map[string]any", files[0])
	}
	nested, ok := doc["nested"].(catalog.Document)
	if !ok {
		t.Fatalf("nested = %T, want catalog.Document", doc["nested"])
	}
	if _, ok := nested["inner"].([]any); !ok {
		t.Fatalf("inner = %T, want []any", nested["inner"])
	}
}

// TestStoreConformance runs the shared contract suite against a live
// server. Set BAGMAN_TEST_MONGODB_URI to enable, e.g.
//
//	BAGMAN_TEST_MONGODB_URI=mongodb://localhost:27017 go test ./internal/catalog/mongo/
func TestStoreConformance(t *testing.T) {
	uri := os.Getenv("BAGMAN_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("BAGMAN_TEST_MONGODB_URI not set")
	}

	storetest.TestStore(t, func(t *testing.T) catalog.Store {
		ctx := context.Background()
		name := fmt.Sprintf("bagman_test_%s", uuid.Must(uuid.NewV7()))

		s, err := NewStore(ctx, catalog.Config{URI: uri, Name: name}, logging.Discard())
		if err != nil {
			t.Fatalf("new store: %v", err)
		}
		if err := s.Provision(ctx); err != nil {
			t.Fatalf("provision: %v", err)
		}
		t.Cleanup(func() {
			_ = s.client.Database(name).Drop(ctx)
			_ = s.Close(ctx)
		})
		return s
	})
}
