package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
)

// CreateEntry persists a new entry.
func (s *Store) CreateEntry(ctx context.Context, e *entry.Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chrona_entries (
			id, project_id, kind, source, external_id,
			title, body, author, tags, occurred_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID.String(), e.ProjectID.String(), string(e.Kind), nilIfEmpty(e.Source), nilIfEmpty(e.ExternalID),
		e.Title, e.Body, nilIfEmpty(e.Author), e.Tags, e.OccurredAt,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("chrona/postgres: create entry: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID.
func (s *Store) GetEntry(ctx context.Context, entryID id.EntryID) (*entry.Entry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			id, project_id, kind, source, external_id,
			title, body, author, tags, occurred_at,
			created_at, updated_at
		FROM chrona_entries
		WHERE id = $1`,
		entryID.String(),
	)

	e, err := scanEntry(row)
	if err != nil {
		if isNoRows(err) {
			return nil, chrona.ErrEntryNotFound
		}
		return nil, fmt.Errorf("chrona/postgres: get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns a project's entries matching the given options,
// ordered by OccurredAt ascending. From is inclusive, To exclusive.
func (s *Store) ListEntries(ctx context.Context, projectID id.ProjectID, opts entry.ListOpts) ([]*entry.Entry, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT
			id, project_id, kind, source, external_id,
			title, body, author, tags, occurred_at,
			created_at, updated_at
		FROM chrona_entries
		WHERE project_id = $1`)

	args := []any{projectID.String()}

	if !opts.From.IsZero() {
		args = append(args, opts.From)
		sb.WriteString(" AND occurred_at >= $" + strconv.Itoa(len(args)))
	}
	if !opts.To.IsZero() {
		args = append(args, opts.To)
		sb.WriteString(" AND occurred_at < $" + strconv.Itoa(len(args)))
	}
	if len(opts.Kinds) > 0 {
		args = append(args, kindsToStrings(opts.Kinds))
		sb.WriteString(" AND kind = ANY($" + strconv.Itoa(len(args)) + ")")
	}
	if len(opts.Tags) > 0 {
		// @> requires every listed tag to be present.
		args = append(args, opts.Tags)
		sb.WriteString(" AND tags @> $" + strconv.Itoa(len(args)))
	}

	sb.WriteString(" ORDER BY occurred_at ASC")

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("chrona/postgres: list entries: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		e, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("chrona/postgres: scan entry row: %w", scanErr)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("chrona/postgres: iterate entry rows: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes an entry by ID.
func (s *Store) DeleteEntry(ctx context.Context, entryID id.EntryID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chrona_entries WHERE id = $1`, entryID.String())
	if err != nil {
		return fmt.Errorf("chrona/postgres: delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chrona.ErrEntryNotFound
	}
	return nil
}

// scanEntry scans a single entry row.
func scanEntry(row pgx.Row) (*entry.Entry, error) {
	var (
		e          entry.Entry
		idStr      string
		projStr    string
		kind       string
		source     *string
		externalID *string
		author     *string
	)
	err := row.Scan(
		&idStr, &projStr, &kind, &source, &externalID,
		&e.Title, &e.Body, &author, &e.Tags, &e.OccurredAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedID, parseErr := id.ParseEntryID(idStr)
	if parseErr != nil {
		return nil, fmt.Errorf("chrona/postgres: parse entry id %q: %w", idStr, parseErr)
	}
	e.ID = parsedID

	parsedProj, parseErr := id.ParseProjectID(projStr)
	if parseErr != nil {
		return nil, fmt.Errorf("chrona/postgres: parse project id %q: %w", projStr, parseErr)
	}
	e.ProjectID = parsedProj

	e.Kind = entry.Kind(kind)
	if source != nil {
		e.Source = *source
	}
	if externalID != nil {
		e.ExternalID = *externalID
	}
	if author != nil {
		e.Author = *author
	}

	return &e, nil
}
