package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/PromoScrape/internal/types"
)

// MongoStorage writes one document per extracted record to a MongoDB
// collection.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(result *types.Result) error {
	docs := mongoDocuments(result, time.Now().UTC())
	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("insert: %w", err)}
	}

	s.count += len(docs)
	s.logger.Debug("records stored in mongodb", "count", len(docs), "total", s.count)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_records", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoDocuments renders each record of result as a document. Absent text is
// stored as the sentinel, matching the CSV output.
func mongoDocuments(result *types.Result, now time.Time) []any {
	meta := func() bson.M {
		return bson.M{
			"_run_id":     result.RunID,
			"_source_url": result.URL,
			"_page_type":  result.PageType.String(),
			"_timestamp":  now,
		}
	}

	var docs []any
	for _, r := range result.Listings {
		doc := meta()
		doc["name"] = r.Name.String()
		doc["description"] = r.Description.String()
		doc["sku"] = r.SKU.String()
		doc["price"] = r.Price.String()
		docs = append(docs, doc)
	}

	for _, r := range result.Details {
		methods := make(bson.A, 0, len(r.ImprintMethods))
		for _, m := range r.ImprintMethods {
			locations := make(bson.A, 0, len(m.Locations))
			for _, loc := range m.Locations {
				locations = append(locations, bson.M{
					"location": loc.Location.String(),
					"width":    loc.Width,
					"height":   loc.Height,
				})
			}
			methods = append(methods, bson.M{
				"method":    m.Method.String(),
				"locations": locations,
			})
		}

		tiers := make(bson.A, 0, len(r.Pricing.Quantities))
		for _, tier := range r.Pricing.Tiers() {
			tiers = append(tiers, bson.M{"quantity": tier.Quantity, "price": tier.Price})
		}

		doc := meta()
		doc["sku"] = r.SKU.String()
		doc["item_size"] = r.ItemSize.String()
		doc["imprint_methods"] = methods
		doc["pricing"] = tiers
		docs = append(docs, doc)
	}

	return docs
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes results to multiple backends in order.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

// Path returns the path of the first file-backed backend, if any.
func (s *MultiStorage) Path() string {
	for _, b := range s.backends {
		if p, ok := b.(interface{ Path() string }); ok {
			return p.Path()
		}
	}
	return ""
}

func (s *MultiStorage) Store(result *types.Result) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(result); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
