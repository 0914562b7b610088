package bunstore

import (
	"context"
	"fmt"
	"time"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/id"
)

// CreateConfig persists a new schedule config.
func (s *Store) CreateConfig(ctx context.Context, cfg *digest.ScheduleConfig) error {
	m := toConfigModel(cfg)
	_, err := s.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("chrona/bun: create config: %w", err)
	}
	return nil
}

// GetConfig retrieves a schedule config by ID.
func (s *Store) GetConfig(ctx context.Context, configID id.ConfigID) (*digest.ScheduleConfig, error) {
	m := new(configModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", configID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, chrona.ErrConfigNotFound
		}
		return nil, fmt.Errorf("chrona/bun: get config: %w", err)
	}
	return fromConfigModel(m)
}

// ListConfigsByProject returns all schedule configs for a project.
func (s *Store) ListConfigsByProject(ctx context.Context, projectID id.ProjectID) ([]*digest.ScheduleConfig, error) {
	var models []configModel
	err := s.db.NewSelect().Model(&models).
		Where("project_id = ?", projectID.String()).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("chrona/bun: list configs: %w", err)
	}

	configs := make([]*digest.ScheduleConfig, 0, len(models))
	for i := range models {
		cfg, convErr := fromConfigModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("chrona/bun: list configs convert: %w", convErr)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// UpdateConfig persists changes to an existing schedule config.
func (s *Store) UpdateConfig(ctx context.Context, cfg *digest.ScheduleConfig) error {
	m := toConfigModel(cfg)
	m.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().Model(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("chrona/bun: update config: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return chrona.ErrConfigNotFound
	}
	return nil
}

// DeleteConfig removes a schedule config by ID.
func (s *Store) DeleteConfig(ctx context.Context, configID id.ConfigID) error {
	res, err := s.db.NewDelete().
		TableExpr("chrona_digest_configs").
		Where("id = ?", configID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("chrona/bun: delete config: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return chrona.ErrConfigNotFound
	}
	return nil
}
