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

// CreateConfig persists a new schedule config.
func (s *Store) CreateConfig(ctx context.Context, cfg *digest.ScheduleConfig) error {
	m := toConfigModel(cfg)
	_, err := s.db.Collection(colConfigs).InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("chrona/mongo: create config: %w", err)
	}
	return nil
}

// GetConfig retrieves a schedule config by ID.
func (s *Store) GetConfig(ctx context.Context, configID id.ConfigID) (*digest.ScheduleConfig, error) {
	var m configModel
	err := s.db.Collection(colConfigs).FindOne(ctx, bson.M{"_id": configID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, chrona.ErrConfigNotFound
		}
		return nil, fmt.Errorf("chrona/mongo: get config: %w", err)
	}
	return fromConfigModel(&m)
}

// ListConfigsByProject returns all schedule configs for a project.
func (s *Store) ListConfigsByProject(ctx context.Context, projectID id.ProjectID) ([]*digest.ScheduleConfig, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection(colConfigs).Find(ctx, bson.M{"project_id": projectID.String()}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: list configs: %w", err)
	}
	defer cursor.Close(ctx)

	var models []configModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("chrona/mongo: list configs decode: %w", err)
	}

	configs := make([]*digest.ScheduleConfig, 0, len(models))
	for i := range models {
		cfg, convErr := fromConfigModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("chrona/mongo: list configs convert: %w", convErr)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// UpdateConfig persists changes to an existing schedule config.
func (s *Store) UpdateConfig(ctx context.Context, cfg *digest.ScheduleConfig) error {
	m := toConfigModel(cfg)
	m.UpdatedAt = now()
	res, err := s.db.Collection(colConfigs).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("chrona/mongo: update config: %w", err)
	}
	if res.MatchedCount == 0 {
		return chrona.ErrConfigNotFound
	}
	return nil
}

// DeleteConfig removes a schedule config by ID.
func (s *Store) DeleteConfig(ctx context.Context, configID id.ConfigID) error {
	res, err := s.db.Collection(colConfigs).DeleteOne(ctx, bson.M{"_id": configID.String()})
	if err != nil {
		return fmt.Errorf("chrona/mongo: delete config: %w", err)
	}
	if res.DeletedCount == 0 {
		return chrona.ErrConfigNotFound
	}
	return nil
}
