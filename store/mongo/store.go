package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
)

// Collection name constants.
const (
	colConfigs = "chrona_digest_configs"
	colDigests = "chrona_digests"
	colEntries = "chrona_entries"
)

// Ensure Store implements all subsystem interfaces at compile time.
var (
	_ digest.ConfigStore = (*Store)(nil)
	_ digest.Store       = (*Store)(nil)
	_ entry.Store        = (*Store)(nil)
)

// Store is a MongoDB implementation of store.Store using the official
// driver. The caller owns the *mongo.Client lifecycle; Store never closes it.
type Store struct {
	db     *mongod.Database
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a new MongoDB store. The caller owns the client lifecycle --
// the Store will not close it on Close().
func New(db *mongod.Database, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying *mongo.Database for advanced usage.
func (s *Store) DB() *mongod.Database {
	return s.db
}

// Migrate creates indexes for all chrona collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}

		_, err := s.db.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("chrona/mongo: migrate %s indexes: %w", col, err)
		}
	}

	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close is a no-op because the caller owns the *mongo.Client lifecycle.
func (s *Store) Close() error {
	return nil
}

// ── helpers ──────────────────────────────────────────────────────

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments returns true when err indicates no MongoDB documents found.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// isDuplicateKey checks if a MongoDB error is a duplicate key violation.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "E11000")
}

// migrationIndexes returns the index definitions for all chrona collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colConfigs: {
			{Keys: bson.D{{Key: "project_id", Value: 1}}},
		},
		colDigests: {
			// Listing index: config + creation time.
			{Keys: bson.D{
				{Key: "config_id", Value: 1},
				{Key: "created_at", Value: 1},
			}},
			{Keys: bson.D{{Key: "project_id", Value: 1}}},
			// One digest per schedule window. Partial so digests without
			// window bounds are exempt.
			{
				Keys: bson.D{
					{Key: "config_id", Value: 1},
					{Key: "from_date", Value: 1},
					{Key: "to_date", Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{
						"from_date": bson.M{"$type": "date"},
						"to_date":   bson.M{"$type": "date"},
					}),
			},
		},
		colEntries: {
			// Window index: project + occurred_at.
			{Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "occurred_at", Value: 1},
			}},
			{Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "kind", Value: 1},
			}},
		},
	}
}
