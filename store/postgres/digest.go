package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/id"
)

// CreateDigest persists a new digest. A digest with the same config and
// identical window bounds as an existing one is rejected by the unique
// (config_id, from_date, to_date) index.
func (s *Store) CreateDigest(ctx context.Context, d *digest.Digest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chrona_digests (
			id, config_id, project_id, title, body,
			from_date, to_date, status, entries_count, tags,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID.String(), d.ConfigID.String(), d.ProjectID.String(), d.Title, d.Body,
		d.FromDate, d.ToDate, string(d.Status), d.EntriesCount, d.Tags,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return chrona.ErrDuplicateDigest
		}
		return fmt.Errorf("chrona/postgres: create digest: %w", err)
	}
	return nil
}

// GetDigest retrieves a digest by ID.
func (s *Store) GetDigest(ctx context.Context, digestID id.DigestID) (*digest.Digest, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			id, config_id, project_id, title, body,
			from_date, to_date, status, entries_count, tags,
			created_at, updated_at
		FROM chrona_digests
		WHERE id = $1`,
		digestID.String(),
	)

	d, err := scanDigest(row)
	if err != nil {
		if isNoRows(err) {
			return nil, chrona.ErrDigestNotFound
		}
		return nil, fmt.Errorf("chrona/postgres: get digest: %w", err)
	}
	return d, nil
}

// ListDigestsByConfig returns all digests for a schedule config, ordered by
// creation time ascending.
func (s *Store) ListDigestsByConfig(ctx context.Context, configID id.ConfigID) ([]*digest.Digest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			id, config_id, project_id, title, body,
			from_date, to_date, status, entries_count, tags,
			created_at, updated_at
		FROM chrona_digests
		WHERE config_id = $1
		ORDER BY created_at ASC`,
		configID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("chrona/postgres: list digests: %w", err)
	}
	defer rows.Close()

	var digests []*digest.Digest
	for rows.Next() {
		d, scanErr := scanDigest(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("chrona/postgres: scan digest row: %w", scanErr)
		}
		digests = append(digests, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("chrona/postgres: iterate digest rows: %w", err)
	}
	return digests, nil
}

// UpdateDigest persists changes to an existing digest.
func (s *Store) UpdateDigest(ctx context.Context, d *digest.Digest) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE chrona_digests SET
			title = $2, body = $3, from_date = $4, to_date = $5,
			status = $6, entries_count = $7, tags = $8, updated_at = NOW()
		WHERE id = $1`,
		d.ID.String(), d.Title, d.Body, d.FromDate, d.ToDate,
		string(d.Status), d.EntriesCount, d.Tags,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return chrona.ErrDuplicateDigest
		}
		return fmt.Errorf("chrona/postgres: update digest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chrona.ErrDigestNotFound
	}
	return nil
}

// DeleteDigest removes a digest by ID.
func (s *Store) DeleteDigest(ctx context.Context, digestID id.DigestID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chrona_digests WHERE id = $1`, digestID.String())
	if err != nil {
		return fmt.Errorf("chrona/postgres: delete digest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chrona.ErrDigestNotFound
	}
	return nil
}

// scanDigest scans a single digest row.
func scanDigest(row pgx.Row) (*digest.Digest, error) {
	var (
		d       digest.Digest
		idStr   string
		cfgStr  string
		projStr string
		status  string
	)
	err := row.Scan(
		&idStr, &cfgStr, &projStr, &d.Title, &d.Body,
		&d.FromDate, &d.ToDate, &status, &d.EntriesCount, &d.Tags,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedID, parseErr := id.ParseDigestID(idStr)
	if parseErr != nil {
		return nil, fmt.Errorf("chrona/postgres: parse digest id %q: %w", idStr, parseErr)
	}
	d.ID = parsedID

	parsedCfg, parseErr := id.ParseConfigID(cfgStr)
	if parseErr != nil {
		return nil, fmt.Errorf("chrona/postgres: parse config id %q: %w", cfgStr, parseErr)
	}
	d.ConfigID = parsedCfg

	parsedProj, parseErr := id.ParseProjectID(projStr)
	if parseErr != nil {
		return nil, fmt.Errorf("chrona/postgres: parse project id %q: %w", projStr, parseErr)
	}
	d.ProjectID = parsedProj

	d.Status = digest.Status(status)

	return &d, nil
}
