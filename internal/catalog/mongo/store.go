// Package mongo provides the networked document database catalog backend,
// backed by a MongoDB collection.
//
// Credentials are optional: DATABASE_USER and DATABASE_PASSWORD are read
// from the environment (after a best-effort .env load) at connection time;
// absence falls back to an unauthenticated connection attempt.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"bagman/internal/catalog"
	"bagman/internal/logging"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultName = "bagman"

// Store is a MongoDB-backed catalog store. One collection holds all records.
type Store struct {
	client *mongo.Client
	dbName string
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ catalog.Store = (*Store)(nil)

// NewStore connects to the MongoDB instance at cfg.URI and verifies the
// server is reachable. cfg.Name selects both database and collection,
// defaulting to "bagman".
func NewStore(ctx context.Context, cfg catalog.Config, logger *slog.Logger) (*Store, error) {
	logger = logging.Default(logger).With("component", "catalog", "backend", "mongodb")

	// Best effort; credentials may come from the real environment instead.
	_ = godotenv.Load()

	opts := options.Client().ApplyURI(cfg.URI)
	user, password := os.Getenv("DATABASE_USER"), os.Getenv("DATABASE_PASSWORD")
	if user != "" && password != "" {
		opts = opts.SetAuth(options.Credential{Username: user, Password: password})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w (%v)", catalog.ErrUnreachable, err)
	}

	name := cfg.Name
	if name == "" {
		name = defaultName
	}

	s := &Store{
		client: client,
		dbName: name,
		coll:   client.Database(name).Collection(name),
		logger: logger,
	}

	if err := s.ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps driver errors onto the catalog error taxonomy.
func classify(err error) error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// 13 Unauthorized, 18 AuthenticationFailed
		if cmdErr.Code == 13 || cmdErr.Code == 18 {
			return fmt.Errorf("%w: %v", catalog.ErrUnauthorized, err)
		}
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		return err
	}
	return fmt.Errorf("%w: %v", catalog.ErrUnreachable, err)
}

// GetAll returns every record. The driver cursor batches internally, so
// there is no result cap; the caller bounds the scan through ctx.
func (s *Store) GetAll(ctx context.Context) ([]catalog.Document, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, classify(err)
	}
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, classify(err)
	}

	docs := make([]catalog.Document, len(raw))
	for i, r := range raw {
		docs[i] = normalizeMap(r)
	}
	return docs, nil
}

// Upsert replaces the record matching key=value, or inserts doc.
func (s *Store) Upsert(ctx context.Context, doc catalog.Document, key string, value any) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{key: value}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return classify(err)
	}
	return nil
}

// Insert adds a record unconditionally.
func (s *Store) Insert(ctx context.Context, doc catalog.Document) error {
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return classify(err)
	}
	return nil
}

// Contains reports whether any record matches key=value.
func (s *Store) Contains(ctx context.Context, key string, value any) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{key: value}, options.Count().SetLimit(1))
	if err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

// Get returns the first record matching key=value, or (nil, nil).
func (s *Store) Get(ctx context.Context, key string, value any) (catalog.Document, error) {
	var raw bson.M
	err := s.coll.FindOne(ctx, bson.M{key: value},
		options.FindOne().SetProjection(bson.M{"_id": 0})).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return normalizeMap(raw), nil
}

// Search returns all records matching key=value.
func (s *Store) Search(ctx context.Context, key string, value any) ([]catalog.Document, error) {
	cur, err := s.coll.Find(ctx, bson.M{key: value}, options.Find().SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, classify(err)
	}
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, classify(err)
	}

	docs := make([]catalog.Document, len(raw))
	for i, r := range raw {
		docs[i] = normalizeMap(r)
	}
	return docs, nil
}

// Remove deletes all records matching key=value.
func (s *Store) Remove(ctx context.Context, key string, value any) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{key: value}); err != nil {
		return classify(err)
	}
	return nil
}

// Truncate deletes all records, keeping the collection.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return classify(err)
	}
	return nil
}

// InsertMultiple bulk-inserts records in order.
func (s *Store) InsertMultiple(ctx context.Context, docs []catalog.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]any, len(docs))
	for i, d := range docs {
		items[i] = d
	}
	if _, err := s.coll.InsertMany(ctx, items, options.InsertMany().SetOrdered(true)); err != nil {
		return classify(err)
	}
	return nil
}

// Provision ensures an index on the natural key. Collections themselves are
// created lazily by MongoDB on first write.
func (s *Store) Provision(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: catalog.KeyName, Value: 1}},
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// IsConnected pings the server and verifies the database is visible.
// A rejected listDatabases maps to ErrUnauthorized; a database that the
// server has never materialized maps to ErrNotProvisioned.
func (s *Store) IsConnected(ctx context.Context) error {
	if err := s.ping(ctx); err != nil {
		return err
	}

	names, err := s.client.ListDatabaseNames(ctx, bson.M{})
	if err != nil {
		return classify(err)
	}
	for _, n := range names {
		if n == s.dbName {
			return nil
		}
	}
	return fmt.Errorf("database %q: %w", s.dbName, catalog.ErrNotProvisioned)
}

// Close disconnects from the server.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// normalizeMap converts BSON decode types (bson.M, primitive.A) into plain
// JSON-shaped values so all backends hand callers the same document shape.
func normalizeMap(m bson.M) catalog.Document {
	doc := make(catalog.Document, len(m))
	for k, v := range m {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case bson.D:
		doc := make(catalog.Document, len(t))
		for _, e := range t {
			doc[e.Key] = normalizeValue(e.Value)
		}
		return doc
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
