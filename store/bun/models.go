package bunstore

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
)

// ── Schedule config model ─────────────────────────────────────────

type configModel struct {
	bun.BaseModel `bun:"table:chrona_digest_configs"`

	ID             string    `bun:"id,pk"`
	ProjectID      string    `bun:"project_id,notnull"`
	Title          string    `bun:"title,notnull"`
	CronExpression string    `bun:"cron_expression,notnull"`
	Timezone       string    `bun:"timezone"`
	Tags           []string  `bun:"tags,array"`
	Kinds          []string  `bun:"kinds,array"`
	Enabled        bool      `bun:"enabled,notnull,default:true"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`
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
		return nil, fmt.Errorf("chrona/bun: parse config id %q: %w", m.ID, err)
	}
	parsedProj, err := id.ParseProjectID(m.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("chrona/bun: parse project id %q: %w", m.ProjectID, err)
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
	bun.BaseModel `bun:"table:chrona_digests"`

	ID           string     `bun:"id,pk"`
	ConfigID     string     `bun:"config_id,notnull"`
	ProjectID    string     `bun:"project_id,notnull"`
	Title        string     `bun:"title,notnull"`
	Body         string     `bun:"body,notnull,default:''"`
	FromDate     *time.Time `bun:"from_date"`
	ToDate       *time.Time `bun:"to_date"`
	Status       string     `bun:"status,notnull,default:'generating'"`
	EntriesCount int        `bun:"entries_count,notnull,default:0"`
	Tags         []string   `bun:"tags,array"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
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
		return nil, fmt.Errorf("chrona/bun: parse digest id %q: %w", m.ID, err)
	}
	parsedCfg, err := id.ParseConfigID(m.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("chrona/bun: parse config id %q: %w", m.ConfigID, err)
	}
	parsedProj, err := id.ParseProjectID(m.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("chrona/bun: parse project id %q: %w", m.ProjectID, err)
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
	bun.BaseModel `bun:"table:chrona_entries"`

	ID         string    `bun:"id,pk"`
	ProjectID  string    `bun:"project_id,notnull"`
	Kind       string    `bun:"kind,notnull"`
	Source     string    `bun:"source"`
	ExternalID string    `bun:"external_id"`
	Title      string    `bun:"title,notnull"`
	Body       string    `bun:"body,notnull,default:''"`
	Author     string    `bun:"author"`
	Tags       []string  `bun:"tags,array"`
	OccurredAt time.Time `bun:"occurred_at,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp"`
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
		return nil, fmt.Errorf("chrona/bun: parse entry id %q: %w", m.ID, err)
	}
	parsedProj, err := id.ParseProjectID(m.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("chrona/bun: parse project id %q: %w", m.ProjectID, err)
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
