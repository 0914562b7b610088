package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
)

// CreateConfig persists a new schedule config.
func (s *Store) CreateConfig(ctx context.Context, cfg *digest.ScheduleConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chrona_digest_configs (
			id, project_id, title, cron_expression, timezone,
			tags, kinds, enabled, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cfg.ID.String(), cfg.ProjectID.String(), cfg.Title, cfg.CronExpression, nilIfEmpty(cfg.Timezone),
		cfg.Tags, kindsToStrings(cfg.Kinds), cfg.Enabled, cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("chrona/postgres: create config: %w", err)
	}
	return nil
}

// GetConfig retrieves a schedule config by ID.
func (s *Store) GetConfig(ctx context.Context, configID id.ConfigID) (*digest.ScheduleConfig, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			id, project_id, title, cron_expression, timezone,
			tags, kinds, enabled, created_at, updated_at
		FROM chrona_digest_configs
		WHERE id = $1`,
		configID.String(),
	)

	cfg, err := scanConfig(row)
	if err != nil {
		if isNoRows(err) {
			return nil, chrona.ErrConfigNotFound
		}
		return nil, fmt.Errorf("chrona/postgres: get config: %w", err)
	}
	return cfg, nil
}

// ListConfigsByProject returns all schedule configs for a project.
func (s *Store) ListConfigsByProject(ctx context.Context, projectID id.ProjectID) ([]*digest.ScheduleConfig, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			id, project_id, title, cron_expression, timezone,
			tags, kinds, enabled, created_at, updated_at
		FROM chrona_digest_configs
		WHERE project_id = $1
		ORDER BY created_at ASC`,
		projectID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("chrona/postgres: list configs: %w", err)
	}
	defer rows.Close()

	var configs []*digest.ScheduleConfig
	for rows.Next() {
		cfg, scanErr := scanConfig(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("chrona/postgres: scan config row: %w", scanErr)
		}
		configs = append(configs, cfg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("chrona/postgres: iterate config rows: %w", err)
	}
	return configs, nil
}

// UpdateConfig persists changes to an existing schedule config.
func (s *Store) UpdateConfig(ctx context.Context, cfg *digest.ScheduleConfig) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE chrona_digest_configs SET
			project_id = $2, title = $3, cron_expression = $4, timezone = $5,
			tags = $6, kinds = $7, enabled = $8, updated_at = NOW()
		WHERE id = $1`,
		cfg.ID.String(), cfg.ProjectID.String(), cfg.Title, cfg.CronExpression, nilIfEmpty(cfg.Timezone),
		cfg.Tags, kindsToStrings(cfg.Kinds), cfg.Enabled,
	)
	if err != nil {
		return fmt.Errorf("chrona/postgres: update config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chrona.ErrConfigNotFound
	}
	return nil
}

// DeleteConfig removes a schedule config by ID.
func (s *Store) DeleteConfig(ctx context.Context, configID id.ConfigID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chrona_digest_configs WHERE id = $1`, configID.String())
	if err != nil {
		return fmt.Errorf("chrona/postgres: delete config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chrona.ErrConfigNotFound
	}
	return nil
}

// scanConfig scans a single schedule config row.
func scanConfig(row pgx.Row) (*digest.ScheduleConfig, error) {
	var (
		cfg      digest.ScheduleConfig
		idStr    string
		projStr  string
		timezone *string
		kinds    []string
	)
	err := row.Scan(
		&idStr, &projStr, &cfg.Title, &cfg.CronExpression, &timezone,
		&cfg.Tags, &kinds, &cfg.Enabled, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedID, parseErr := id.ParseConfigID(idStr)
	if parseErr != nil {
		return nil, fmt.Errorf("chrona/postgres: parse config id %q: %w", idStr, parseErr)
	}
	cfg.ID = parsedID

	parsedProj, parseErr := id.ParseProjectID(projStr)
	if parseErr != nil {
		return nil, fmt.Errorf("chrona/postgres: parse project id %q: %w", projStr, parseErr)
	}
	cfg.ProjectID = parsedProj

	if timezone != nil {
		cfg.Timezone = *timezone
	}
	cfg.Kinds = stringsToKinds(kinds)

	return &cfg, nil
}

// kindsToStrings converts entry kinds to a plain string slice for TEXT[].
func kindsToStrings(kinds []entry.Kind) []string {
	if len(kinds) == 0 {
		return nil
	}
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// stringsToKinds converts a TEXT[] column back into entry kinds.
func stringsToKinds(ss []string) []entry.Kind {
	if len(ss) == 0 {
		return nil
	}
	out := make([]entry.Kind, len(ss))
	for i, s := range ss {
		out[i] = entry.Kind(s)
	}
	return out
}
