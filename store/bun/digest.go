package bunstore

import (
	"context"
	"fmt"
	"time"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/id"
)

// CreateDigest persists a new digest. A digest with the same config and
// identical window bounds as an existing one is rejected by the unique
// (config_id, from_date, to_date) index.
func (s *Store) CreateDigest(ctx context.Context, d *digest.Digest) error {
	m := toDigestModel(d)
	_, err := s.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		if isDuplicateKey(err) {
			return chrona.ErrDuplicateDigest
		}
		return fmt.Errorf("chrona/bun: create digest: %w", err)
	}
	return nil
}

// GetDigest retrieves a digest by ID.
func (s *Store) GetDigest(ctx context.Context, digestID id.DigestID) (*digest.Digest, error) {
	m := new(digestModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", digestID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, chrona.ErrDigestNotFound
		}
		return nil, fmt.Errorf("chrona/bun: get digest: %w", err)
	}
	return fromDigestModel(m)
}

// ListDigestsByConfig returns all digests for a schedule config, ordered by
// creation time ascending.
func (s *Store) ListDigestsByConfig(ctx context.Context, configID id.ConfigID) ([]*digest.Digest, error) {
	var models []digestModel
	err := s.db.NewSelect().Model(&models).
		Where("config_id = ?", configID.String()).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("chrona/bun: list digests: %w", err)
	}

	digests := make([]*digest.Digest, 0, len(models))
	for i := range models {
		d, convErr := fromDigestModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("chrona/bun: list digests convert: %w", convErr)
		}
		digests = append(digests, d)
	}
	return digests, nil
}

// UpdateDigest persists changes to an existing digest.
func (s *Store) UpdateDigest(ctx context.Context, d *digest.Digest) error {
	m := toDigestModel(d)
	m.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().Model(m).WherePK().Exec(ctx)
	if err != nil {
		if isDuplicateKey(err) {
			return chrona.ErrDuplicateDigest
		}
		return fmt.Errorf("chrona/bun: update digest: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return chrona.ErrDigestNotFound
	}
	return nil
}

// DeleteDigest removes a digest by ID.
func (s *Store) DeleteDigest(ctx context.Context, digestID id.DigestID) error {
	res, err := s.db.NewDelete().
		TableExpr("chrona_digests").
		Where("id = ?", digestID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("chrona/bun: delete digest: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return chrona.ErrDigestNotFound
	}
	return nil
}
