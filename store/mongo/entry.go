package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
)

// CreateEntry persists a new entry.
func (s *Store) CreateEntry(ctx context.Context, e *entry.Entry) error {
	m := toEntryModel(e)
	_, err := s.db.Collection(colEntries).InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("chrona/mongo: create entry: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID.
func (s *Store) GetEntry(ctx context.Context, entryID id.EntryID) (*entry.Entry, error) {
	var m entryModel
	err := s.db.Collection(colEntries).FindOne(ctx, bson.M{"_id": entryID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, chrona.ErrEntryNotFound
		}
		return nil, fmt.Errorf("chrona/mongo: get entry: %w", err)
	}
	return fromEntryModel(&m)
}

// ListEntries returns a project's entries matching the given options,
// ordered by OccurredAt ascending. From is inclusive, To exclusive.
func (s *Store) ListEntries(ctx context.Context, projectID id.ProjectID, opts entry.ListOpts) ([]*entry.Entry, error) {
	filter := bson.M{"project_id": projectID.String()}

	occurred := bson.M{}
	if !opts.From.IsZero() {
		occurred["$gte"] = opts.From
	}
	if !opts.To.IsZero() {
		occurred["$lt"] = opts.To
	}
	if len(occurred) > 0 {
		filter["occurred_at"] = occurred
	}
	if len(opts.Kinds) > 0 {
		filter["kind"] = bson.M{"$in": kindsToStrings(opts.Kinds)}
	}
	if len(opts.Tags) > 0 {
		// $all requires every listed tag to be present.
		filter["tags"] = bson.M{"$all": opts.Tags}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts = findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := s.db.Collection(colEntries).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: list entries: %w", err)
	}
	defer cursor.Close(ctx)

	var models []entryModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("chrona/mongo: list entries decode: %w", err)
	}

	entries := make([]*entry.Entry, 0, len(models))
	for i := range models {
		e, convErr := fromEntryModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("chrona/mongo: list entries convert: %w", convErr)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteEntry removes an entry by ID.
func (s *Store) DeleteEntry(ctx context.Context, entryID id.EntryID) error {
	res, err := s.db.Collection(colEntries).DeleteOne(ctx, bson.M{"_id": entryID.String()})
	if err != nil {
		return fmt.Errorf("chrona/mongo: delete entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return chrona.ErrEntryNotFound
	}
	return nil
}
