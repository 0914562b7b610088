package digest

import (
	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
)

// ScheduleConfig describes when and from what a project's digests are
// generated: a standard 5-field cron expression, the IANA timezone the
// schedule is evaluated in, and filter metadata narrowing which entries
// feed the summary.
//
// Timezone resolution is forgiving: an unknown name falls back to UTC at
// evaluation time rather than failing the config (see schedule.LoadLocation).
type ScheduleConfig struct {
	chrona.Entity

	ID             id.ConfigID  `json:"id"`
	ProjectID      id.ProjectID `json:"project_id"`
	Title          string       `json:"title"`
	CronExpression string       `json:"cron_expression"`
	Timezone       string       `json:"timezone,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	Kinds          []entry.Kind `json:"kinds,omitempty"`
	Enabled        bool         `json:"enabled"`
}
