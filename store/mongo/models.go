package mongo

import (
	"fmt"
	"time"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
)

// ── Schedule config model ─────────────────────────────────────────

type configModel struct {
	ID             string    `bson:"_id"`
	ProjectID      string    `bson:"project_id"`
	Title          string    `bson:"title"`
	CronExpression string    `bson:"cron_expression"`
	Timezone       string    `bson:"timezone,omitempty"`
	Tags           []string  `bson:"tags,omitempty"`
	Kinds          []string  `bson:"kinds,omitempty"`
	Enabled        bool      `bson:"enabled"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toConfigModel(cfg *digest.ScheduleConfig) *configModel {
	return &configModel{
		ID:             cfg.ID.String(),
		ProjectID:      cfg.ProjectID.String(),
		Title:          cfg.Title,
		CronExpression: cfg.CronExpression,
		Timezone:       cfg.Timezone,
		Tags:           cfg.Tags,
		Kinds:          kindsToStrings(cfg.Kinds),
		Enabled:        cfg.Enabled,
		CreatedAt:      cfg.CreatedAt,
		UpdatedAt:      cfg.UpdatedAt,
	}
}

func fromConfigModel(m *configModel) (*digest.ScheduleConfig, error) {
	parsedID, err := id.ParseConfigID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: parse config id %q: %w", m.ID, err)
	}
	parsedProj, err := id.ParseProjectID(m.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: parse project id %q: %w", m.ProjectID, err)
	}

	return &digest.ScheduleConfig{
		Entity: chrona.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             parsedID,
		ProjectID:      parsedProj,
		Title:          m.Title,
		CronExpression: m.CronExpression,
		Timezone:       m.Timezone,
		Tags:           m.Tags,
		Kinds:          stringsToKinds(m.Kinds),
		Enabled:        m.Enabled,
	}, nil
}

// ── Digest model ──────────────────────────────────────────────────

type digestModel struct {
	ID           string     `bson:"_id"`
	ConfigID     string     `bson:"config_id"`
	ProjectID    string     `bson:"project_id"`
	Title        string     `bson:"title"`
	Body         string     `bson:"body,omitempty"`
	FromDate     *time.Time `bson:"from_date,omitempty"`
	ToDate       *time.Time `bson:"to_date,omitempty"`
	Status       string     `bson:"status"`
	EntriesCount int        `bson:"entries_count"`
	Tags         []string   `bson:"tags,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func toDigestModel(d *digest.Digest) *digestModel {
	return &digestModel{
		ID:           d.ID.String(),
		ConfigID:     d.ConfigID.String(),
		ProjectID:    d.ProjectID.String(),
		Title:        d.Title,
		Body:         d.Body,
		FromDate:     d.FromDate,
		ToDate:       d.ToDate,
		Status:       string(d.Status),
		EntriesCount: d.EntriesCount,
		Tags:         d.Tags,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func fromDigestModel(m *digestModel) (*digest.Digest, error) {
	parsedID, err := id.ParseDigestID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: parse digest id %q: %w", m.ID, err)
	}
	parsedCfg, err := id.ParseConfigID(m.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: parse config id %q: %w", m.ConfigID, err)
	}
	parsedProj, err := id.ParseProjectID(m.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: parse project id %q: %w", m.ProjectID, err)
	}

	return &digest.Digest{
		Entity: chrona.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           parsedID,
		ConfigID:     parsedCfg,
		ProjectID:    parsedProj,
		Title:        m.Title,
		Body:         m.Body,
		FromDate:     m.FromDate,
		ToDate:       m.ToDate,
		Status:       digest.Status(m.Status),
		EntriesCount: m.EntriesCount,
		Tags:         m.Tags,
	}, nil
}

// ── Entry model ───────────────────────────────────────────────────

type entryModel struct {
	ID         string    `bson:"_id"`
	ProjectID  string    `bson:"project_id"`
	Kind       string    `bson:"kind"`
	Source     string    `bson:"source,omitempty"`
	ExternalID string    `bson:"external_id,omitempty"`
	Title      string    `bson:"title"`
	Body       string    `bson:"body,omitempty"`
	Author     string    `bson:"author,omitempty"`
	Tags       []string  `bson:"tags,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func toEntryModel(e *entry.Entry) *entryModel {
	return &entryModel{
		ID:         e.ID.String(),
		ProjectID:  e.ProjectID.String(),
		Kind:       string(e.Kind),
		Source:     e.Source,
		ExternalID: e.ExternalID,
		Title:      e.Title,
		Body:       e.Body,
		Author:     e.Author,
		Tags:       e.Tags,
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func fromEntryModel(m *entryModel) (*entry.Entry, error) {
	parsedID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: parse entry id %q: %w", m.ID, err)
	}
	parsedProj, err := id.ParseProjectID(m.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("chrona/mongo: parse project id %q: %w", m.ProjectID, err)
	}

	return &entry.Entry{
		Entity: chrona.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         parsedID,
		ProjectID:  parsedProj,
		Kind:       entry.Kind(m.Kind),
		Source:     m.Source,
		ExternalID: m.ExternalID,
		Title:      m.Title,
		Body:       m.Body,
		Author:     m.Author,
		Tags:       m.Tags,
		OccurredAt: m.OccurredAt,
	}, nil
}

// ── Shared conversions ────────────────────────────────────────────

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
