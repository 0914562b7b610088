package backfill

import (
	"time"

	"github.com/tesserahq/chrona/digest"
)

// Failure records why a single execution instant could not be materialized.
type Failure struct {
	Instant time.Time `json:"instant"`
	Reason  string    `json:"reason"`
}

// Outcome aggregates the per-instant results of one backfill invocation.
// It is returned to the caller and never persisted; only the digests in
// Created are.
type Outcome struct {
	Created      []*digest.Digest `json:"created"`
	SkippedCount int              `json:"skipped_count"`
	FailedCount  int              `json:"failed_count"`
	DeletedCount int              `json:"deleted_count"`

	// Failures carries the per-instant reasons behind FailedCount. The
	// counts alone remain the stable contract; Failures is advisory detail.
	Failures []Failure `json:"failures,omitempty"`
}

// CreatedCount returns the number of digests materialized by the run.
func (o *Outcome) CreatedCount() int { return len(o.Created) }
