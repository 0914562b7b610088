// Package digest defines digests — LLM-summarized rollups of recent
// project activity — their schedule configs, persistence contracts, and
// the materializer that produces one digest for one execution instant.
package digest

import (
	"time"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/id"
)

// Status represents the lifecycle state of a digest.
type Status string

const (
	// StatusGenerating means the digest exists but its content is still
	// being summarized.
	StatusGenerating Status = "generating"
	// StatusDraft means the digest is complete but not yet published.
	StatusDraft Status = "draft"
	// StatusPublished means the digest is visible to gazette curation.
	StatusPublished Status = "published"
	// StatusArchived means the digest has been retired.
	StatusArchived Status = "archived"
)

// Digest is a summarized rollup of project activity covering the half-open
// window [FromDate, ToDate). Both bounds must be set for the digest to
// participate in overlap detection; a digest missing either bound cannot be
// said to overlap anything.
type Digest struct {
	chrona.Entity

	ID           id.DigestID  `json:"id"`
	ConfigID     id.ConfigID  `json:"digest_generation_config_id"`
	ProjectID    id.ProjectID `json:"project_id"`
	Title        string       `json:"title"`
	Body         string       `json:"body,omitempty"`
	FromDate     *time.Time   `json:"from_date,omitempty"`
	ToDate       *time.Time   `json:"to_date,omitempty"`
	Status       Status       `json:"status"`
	EntriesCount int          `json:"entries_count"`
	Tags         []string     `json:"tags,omitempty"`
}

// Covers reports whether the digest's window overlaps the half-open window
// [from, to). Windows that merely touch at a bound do not overlap: adjacent
// schedule windows share their boundary instant, and treating that as a
// conflict would skip every other instant of a backfill. Bounds are
// normalized to UTC before comparison; a digest lacking either bound never
// overlaps.
func (d *Digest) Covers(from, to time.Time) bool {
	if d.FromDate == nil || d.ToDate == nil {
		return false
	}
	return d.FromDate.UTC().Before(to.UTC()) && d.ToDate.UTC().After(from.UTC())
}
