package bunstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
)

// CreateEntry persists a new entry.
func (s *Store) CreateEntry(ctx context.Context, e *entry.Entry) error {
	m := toEntryModel(e)
	_, err := s.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("chrona/bun: create entry: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID.
func (s *Store) GetEntry(ctx context.Context, entryID id.EntryID) (*entry.Entry, error) {
	m := new(entryModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", entryID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, chrona.ErrEntryNotFound
		}
		return nil, fmt.Errorf("chrona/bun: get entry: %w", err)
	}
	return fromEntryModel(m)
}

// ListEntries returns a project's entries matching the given options,
// ordered by OccurredAt ascending. From is inclusive, To exclusive.
func (s *Store) ListEntries(ctx context.Context, projectID id.ProjectID, opts entry.ListOpts) ([]*entry.Entry, error) {
	var models []entryModel
	q := s.db.NewSelect().Model(&models).
		Where("project_id = ?", projectID.String())

	if !opts.From.IsZero() {
		q = q.Where("occurred_at >= ?", opts.From)
	}
	if !opts.To.IsZero() {
		q = q.Where("occurred_at < ?", opts.To)
	}
	if len(opts.Kinds) > 0 {
		q = q.Where("kind IN (?)", bun.In(kindsToStrings(opts.Kinds)))
	}
	if len(opts.Tags) > 0 {
		// @> requires every listed tag to be present.
		q = q.Where("tags @> ?", pgdialect.Array(opts.Tags))
	}

	q = q.Order("occurred_at ASC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("chrona/bun: list entries: %w", err)
	}

	entries := make([]*entry.Entry, 0, len(models))
	for i := range models {
		e, convErr := fromEntryModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("chrona/bun: list entries convert: %w", convErr)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DeleteEntry removes an entry by ID.
func (s *Store) DeleteEntry(ctx context.Context, entryID id.EntryID) error {
	res, err := s.db.NewDelete().
		TableExpr("chrona_entries").
		Where("id = ?", entryID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("chrona/bun: delete entry: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return chrona.ErrEntryNotFound
	}
	return nil
}
