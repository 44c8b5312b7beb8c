// Package elastic provides the search index catalog backend, backed by an
// Elasticsearch index.
//
// Exact-match correctness: Elasticsearch analyzes string fields by default,
// so a term query against the analyzed field can fuzzy-match tokenized
// values (a recording named "run-2024" would match "run"). Every exact-match
// operation here therefore targets a non-analyzed ".raw" keyword subfield.
// Provision creates the index with a dynamic template that gives every
// string field that subfield; an index that exists without it is reported
// as not provisioned rather than silently served with analyzed matches.
//
// Credentials are optional: DATABASE_USER/DATABASE_PASSWORD or
// DATABASE_API_KEY are read from the environment (after a best-effort .env
// load); absence falls back to an unauthenticated connection attempt.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"bagman/internal/catalog"
	"bagman/internal/logging"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/joho/godotenv"
)

const (
	defaultName = "bagman"

	// rawSuffix is the keyword subfield used for exact matches.
	rawSuffix = ".raw"

	// pageSize is the internal pagination window for full scans. The
	// contract has no result cap, so scans page with search_after until
	// exhausted.
	pageSize = 1000
)

// indexMapping gives every string field a non-analyzed .raw subfield.
const indexMapping = `{
  "mappings": {
    "dynamic_templates": [
      {
        "strings_with_raw": {
          "match_mapping_type": "string",
          "mapping": {
            "type": "text",
            "fields": {
              "raw": { "type": "keyword", "ignore_above": 1024 }
            }
          }
        }
      }
    ]
  }
}`

// Store is an Elasticsearch-backed catalog store.
type Store struct {
	es     *elasticsearch.Client
	index  string
	logger *slog.Logger
}

var _ catalog.Store = (*Store)(nil)

// NewStore builds a client for the cluster at cfg.URI. cfg.Name selects the
// index, defaulting to "bagman". The connection is verified lazily; use
// IsConnected to probe it.
func NewStore(cfg catalog.Config, logger *slog.Logger) (*Store, error) {
	logger = logging.Default(logger).With("component", "catalog", "backend", "elasticsearch")

	_ = godotenv.Load()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URI},
		Username:  os.Getenv("DATABASE_USER"),
		Password:  os.Getenv("DATABASE_PASSWORD"),
		APIKey:    os.Getenv("DATABASE_API_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("build elasticsearch client: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = defaultName
	}
	return &Store{es: es, index: name, logger: logger}, nil
}

// termField returns the field a term query must target for an exact match.
// String fields are analyzed, so they need the non-analyzed .raw subfield.
// Numeric fields are never analyzed and carry no subfield.
func termField(key string, value any) string {
	if _, ok := value.(string); ok {
		return key + rawSuffix
	}
	return key
}

// TermQuery builds the exact-match query body for key=value.
// Exported for the conformance and unit tests.
func TermQuery(key string, value any) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"term": map[string]any{
				termField(key, value): map[string]any{"value": value},
			},
		},
	}
}

func (s *Store) do(ctx context.Context, req esapi.Request) (*esapi.Response, error) {
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnreachable, err)
	}
	if res.IsError() {
		defer res.Body.Close()
		body, _ := io.ReadAll(res.Body)
		switch res.StatusCode {
		case 401, 403:
			return nil, fmt.Errorf("%w: %s", catalog.ErrUnauthorized, strings.TrimSpace(string(body)))
		case 404:
			return nil, fmt.Errorf("index %q: %w", s.index, catalog.ErrNotProvisioned)
		default:
			return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), strings.TrimSpace(string(body)))
		}
	}
	return res, nil
}

func encodeBody(body any) (*bytes.Reader, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	return bytes.NewReader(data), nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string           `json:"_id"`
			Source catalog.Document `json:"_source"`
			Sort   []any            `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// search runs one search request and decodes the hits.
func (s *Store) search(ctx context.Context, body map[string]any, size int) (*searchResponse, error) {
	reader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	res, err := s.do(ctx, esapi.SearchRequest{
		Index: []string{s.index},
		Body:  reader,
		Size:  &size,
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &out, nil
}

// scan pages through all hits of query (or all records for a nil query)
// in _doc order. The result-window cap never truncates results; pages are
// chained with search_after.
func (s *Store) scan(ctx context.Context, query map[string]any) ([]catalog.Document, error) {
	body := map[string]any{
		"sort": []any{"_doc"},
	}
	for k, v := range query {
		body[k] = v
	}
	if _, ok := body["query"]; !ok {
		body["query"] = map[string]any{"match_all": map[string]any{}}
	}

	var docs []catalog.Document
	for {
		out, err := s.search(ctx, body, pageSize)
		if err != nil {
			return nil, err
		}
		for _, hit := range out.Hits.Hits {
			docs = append(docs, hit.Source)
		}
		if len(out.Hits.Hits) < pageSize {
			return docs, nil
		}
		body["search_after"] = out.Hits.Hits[len(out.Hits.Hits)-1].Sort
	}
}

// GetAll returns every record, paginating internally.
func (s *Store) GetAll(ctx context.Context) ([]catalog.Document, error) {
	return s.scan(ctx, nil)
}

// Upsert replaces every record matching key=value with doc, or indexes doc
// fresh when none match. Matches are resolved by term query, not by document
// ID: bulk inserts hand records auto-generated IDs, so the ID cannot be
// assumed to encode the key.
func (s *Store) Upsert(ctx context.Context, doc catalog.Document, key string, value any) error {
	out, err := s.search(ctx, TermQuery(key, value), pageSize)
	if err != nil {
		return err
	}
	hits := out.Hits.Hits

	reader, err := encodeBody(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:   s.index,
		Body:    reader,
		Refresh: "true",
	}
	if len(hits) > 0 {
		req.DocumentID = hits[0].ID
	}
	res, err := s.do(ctx, req)
	if err != nil {
		return err
	}
	res.Body.Close()

	if len(hits) > 1 {
		ids := make([]string, 0, len(hits)-1)
		for _, h := range hits[1:] {
			ids = append(ids, h.ID)
		}
		return s.deleteByQuery(ctx, map[string]any{
			"query": map[string]any{"ids": map[string]any{"values": ids}},
		})
	}
	return nil
}

// Insert indexes doc with an auto-generated document ID.
func (s *Store) Insert(ctx context.Context, doc catalog.Document) error {
	reader, err := encodeBody(doc)
	if err != nil {
		return err
	}
	res, err := s.do(ctx, esapi.IndexRequest{
		Index:   s.index,
		Body:    reader,
		Refresh: "true",
	})
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// Contains counts exact matches for key=value.
func (s *Store) Contains(ctx context.Context, key string, value any) (bool, error) {
	reader, err := encodeBody(TermQuery(key, value))
	if err != nil {
		return false, err
	}
	res, err := s.do(ctx, esapi.CountRequest{
		Index: []string{s.index},
		Body:  reader,
	})
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode count response: %w", err)
	}
	return out.Count > 0, nil
}

// Get returns the first exact match for key=value, or (nil, nil).
func (s *Store) Get(ctx context.Context, key string, value any) (catalog.Document, error) {
	out, err := s.search(ctx, TermQuery(key, value), 1)
	if err != nil {
		return nil, err
	}
	if len(out.Hits.Hits) == 0 {
		return nil, nil
	}
	return out.Hits.Hits[0].Source, nil
}

// Search returns all exact matches for key=value.
func (s *Store) Search(ctx context.Context, key string, value any) ([]catalog.Document, error) {
	return s.scan(ctx, TermQuery(key, value))
}

// Remove deletes all exact matches for key=value.
func (s *Store) Remove(ctx context.Context, key string, value any) error {
	return s.deleteByQuery(ctx, TermQuery(key, value))
}

// Truncate deletes all records; the index and its mappings stay intact.
func (s *Store) Truncate(ctx context.Context) error {
	return s.deleteByQuery(ctx, map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
	})
}

func (s *Store) deleteByQuery(ctx context.Context, query map[string]any) error {
	reader, err := encodeBody(query)
	if err != nil {
		return err
	}
	refresh := true
	res, err := s.do(ctx, esapi.DeleteByQueryRequest{
		Index:   []string{s.index},
		Body:    reader,
		Refresh: &refresh,
	})
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// InsertMultiple bulk-indexes records. The bulk request body preserves
// order, which is what keeps the catalog's sorted order after a resort.
func (s *Store) InsertMultiple(ctx context.Context, docs []catalog.Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		buf.WriteString(`{"index":{}}` + "\n")
		line, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal bulk record: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	res, err := s.do(ctx, esapi.BulkRequest{
		Index:   s.index,
		Body:    &buf,
		Refresh: "true",
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if out.Errors {
		return fmt.Errorf("bulk insert reported item failures")
	}
	return nil
}

// Provision creates the index with the exact-match mapping if it does not
// exist yet.
func (s *Store) Provision(ctx context.Context) error {
	exists, err := s.indexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	res, err := s.do(ctx, esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  strings.NewReader(indexMapping),
	})
	if err != nil {
		return err
	}
	res.Body.Close()
	s.logger.Info("created index", "index", s.index)
	return nil
}

func (s *Store) indexExists(ctx context.Context) (bool, error) {
	res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("%w: %v", catalog.ErrUnreachable, err)
	}
	defer res.Body.Close()
	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	case 401, 403:
		return false, fmt.Errorf("%w: %s", catalog.ErrUnauthorized, res.Status())
	default:
		return false, fmt.Errorf("elasticsearch: %s", res.Status())
	}
}

// IsConnected pings the cluster, verifies the index exists, and verifies
// the natural key carries the non-analyzed subfield. An index without it
// would turn exact matches into analyzed matches, so it is reported as not
// provisioned instead of being used.
func (s *Store) IsConnected(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrUnreachable, err)
	}
	res.Body.Close()
	switch res.StatusCode {
	case 401, 403:
		return fmt.Errorf("%w: %s", catalog.ErrUnauthorized, res.Status())
	}

	exists, err := s.indexExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("index %q: %w", s.index, catalog.ErrNotProvisioned)
	}
	return s.checkRawMapping(ctx)
}

// checkRawMapping fails unless the index mapping provides the .raw keyword
// variant, either through the dynamic template or an explicit field mapping.
func (s *Store) checkRawMapping(ctx context.Context) error {
	res, err := s.do(ctx, esapi.IndicesGetMappingRequest{Index: []string{s.index}})
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var out map[string]struct {
		Mappings struct {
			DynamicTemplates []map[string]struct {
				Mapping struct {
					Fields map[string]any `json:"fields"`
				} `json:"mapping"`
			} `json:"dynamic_templates"`
			Properties map[string]struct {
				Fields map[string]any `json:"fields"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode mapping response: %w", err)
	}

	for _, idx := range out {
		for _, tmpl := range idx.Mappings.DynamicTemplates {
			for _, def := range tmpl {
				if _, ok := def.Mapping.Fields["raw"]; ok {
					return nil
				}
			}
		}
		if prop, ok := idx.Mappings.Properties[catalog.KeyName]; ok {
			if _, ok := prop.Fields["raw"]; ok {
				return nil
			}
		}
		// An empty index created by Provision has the template but no
		// properties yet; an index with string properties and no raw
		// subfield cannot serve exact matches.
		if len(idx.Mappings.Properties) == 0 && len(idx.Mappings.DynamicTemplates) == 0 {
			break
		}
	}
	return fmt.Errorf("index %q lacks a non-analyzed %q subfield for exact matches: %w",
		s.index, catalog.KeyName+rawSuffix, catalog.ErrNotProvisioned)
}

// Close is a no-op; the HTTP client holds no persistent connections that
// outlive requests.
func (s *Store) Close(ctx context.Context) error {
	return nil
}
