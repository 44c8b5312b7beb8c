package elastic

import (
	"context"
	"fmt"
	"os"
	"testing"

	"bagman/internal/catalog"
	"bagman/internal/catalog/storetest"
	"bagman/internal/logging"

	"github.com/google/uuid"
)

func TestTermQueryStringTargetsRawSubfield(t *testing.T) {
	q := TermQuery("name", "run-2024-01-01")

	query := q["query"].(map[string]any)
	term := query["term"].(map[string]any)
	if _, ok := term["name.raw"]; !ok {
		t.Fatalf("string term query must target name.raw, got %v", term)
	}
	if _, ok := term["name"]; ok {
		t.Error("string term query must not target the analyzed field")
	}
}

func TestTermQueryNumericTargetsField(t *testing.T) {
	// Numeric fields are not analyzed and have no .raw subfield.
	q := TermQuery("start_time", 100)

	query := q["query"].(map[string]any)
	term := query["term"].(map[string]any)
	if _, ok := term["start_time"]; !ok {
		t.Fatalf("numeric term query must target the field itself, got %v", term)
	}
	if _, ok := term["start_time.raw"]; ok {
		t.Error("numeric term query must not append .raw")
	}
}

// TestStoreConformance runs the shared contract suite against a live
// cluster. Set BAGMAN_TEST_ELASTICSEARCH_URI to enable, e.g.
//
//	BAGMAN_TEST_ELASTICSEARCH_URI=http://localhost:9200 go test ./internal/catalog/elastic/
func TestStoreConformance(t *testing.T) {
	uri := os.Getenv("BAGMAN_TEST_ELASTICSEARCH_URI")
	if uri == "" {
		t.Skip("BAGMAN_TEST_ELASTICSEARCH_URI not set")
	}

	storetest.TestStore(t, func(t *testing.T) catalog.Store {
		ctx := context.Background()
		index := fmt.Sprintf("bagman-test-%s", uuid.Must(uuid.NewV7()))

		s, err := NewStore(catalog.Config{URI: uri, Name: index}, logging.Discard())
		if err != nil {
			t.Fatalf("new store: %v", err)
		}
		if err := s.Provision(ctx); err != nil {
			t.Fatalf("provision: %v", err)
		}
		t.Cleanup(func() {
			res, err := s.es.Indices.Delete([]string{index})
			if err == nil {
				res.Body.Close()
			}
			s.Close(ctx)
		})
		return s
	})
}
