package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/id"
)

// CreateDigest persists a new digest. A digest with the same config and
// identical window bounds as an existing one is rejected by the unique
// partial index on (config_id, from_date, to_date).
func (s *Store) CreateDigest(ctx context.Context, d *digest.Digest) error {
	m := toDigestModel(d)
	_, err := s.db.Collection(colDigests).InsertOne(ctx, m)
	if err != nil {
		if isDuplicateKey(err) {
			return chrona.ErrDuplicateDigest
		}
		return fmt.Errorf("chrona/mongo: create digest: %w", err)
	}
	return nil
}

// GetDigest retrieves a digest by ID.
func (s *Store) GetDigest(ctx context.Context, digestID id.DigestID) (*digest.Digest, error) {
	var m digestModel
	err := s.db.Collection(colDigests).FindOne(ctx, bson.M{"_id": digestID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, chrona.ErrDigestNotFound
		}
		return nil, fmt.Errorf("chrona/mongo: get digest: %w", err)
	}
	return fromDigestModel(&m)
}

// ListDigestsByConfig returns all digests for a schedule config, ordered by
// creation time ascending.
func (s *Store) ListDigestsByConfig(ctx context.Context, configID id.ConfigID) ([]*digest.Digest, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection(colDigests).Find(ctx, bson.M{"config_id": configID.String()}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: list digests: %w", err)
	}
	defer cursor.Close(ctx)

	var models []digestModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("chrona/mongo: list digests decode: %w", err)
	}

	digests := make([]*digest.Digest, 0, len(models))
	for i := range models {
		d, convErr := fromDigestModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("chrona/mongo: list digests convert: %w", convErr)
		}
		digests = append(digests, d)
	}
	return digests, nil
}

// UpdateDigest persists changes to an existing digest.
func (s *Store) UpdateDigest(ctx context.Context, d *digest.Digest) error {
	m := toDigestModel(d)
	m.UpdatedAt = now()
	res, err := s.db.Collection(colDigests).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		if isDuplicateKey(err) {
			return chrona.ErrDuplicateDigest
		}
		return fmt.Errorf("chrona/mongo: update digest: %w", err)
	}
	if res.MatchedCount == 0 {
		return chrona.ErrDigestNotFound
	}
	return nil
}

// DeleteDigest removes a digest by ID.
func (s *Store) DeleteDigest(ctx context.Context, digestID id.DigestID) error {
	res, err := s.db.Collection(colDigests).DeleteOne(ctx, bson.M{"_id": digestID.String()})
	if err != nil {
		return fmt.Errorf("chrona/mongo: delete digest: %w", err)
	}
	if res.DeletedCount == 0 {
		return chrona.ErrDigestNotFound
	}
	return nil
}
