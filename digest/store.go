package digest

import (
	"context"

	"github.com/tesserahq/chrona/id"
)

// ConfigStore defines the persistence contract for digest schedule configs.
type ConfigStore interface {
	// CreateConfig persists a new schedule config.
	CreateConfig(ctx context.Context, cfg *ScheduleConfig) error

	// GetConfig retrieves a schedule config by ID.
	GetConfig(ctx context.Context, configID id.ConfigID) (*ScheduleConfig, error)

	// ListConfigsByProject returns all schedule configs for a project.
	ListConfigsByProject(ctx context.Context, projectID id.ProjectID) ([]*ScheduleConfig, error)

	// UpdateConfig persists changes to an existing schedule config.
	UpdateConfig(ctx context.Context, cfg *ScheduleConfig) error

	// DeleteConfig removes a schedule config by ID.
	DeleteConfig(ctx context.Context, configID id.ConfigID) error
}

// Store defines the persistence contract for digests.
type Store interface {
	// CreateDigest persists a new digest.
	CreateDigest(ctx context.Context, d *Digest) error

	// GetDigest retrieves a digest by ID.
	GetDigest(ctx context.Context, digestID id.DigestID) (*Digest, error)

	// ListDigestsByConfig returns all live digests for a schedule config,
	// ordered by creation time ascending.
	ListDigestsByConfig(ctx context.Context, configID id.ConfigID) ([]*Digest, error)

	// UpdateDigest persists changes to an existing digest.
	UpdateDigest(ctx context.Context, d *Digest) error

	// DeleteDigest removes a digest by ID.
	DeleteDigest(ctx context.Context, digestID id.DigestID) error
}
