package api

import (
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
)

// maxPageSize caps list pagination.
const maxPageSize = 100

// defaultLimit normalizes a requested page size.
func defaultLimit(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// CreateConfigRequest is the payload for creating a schedule config.
type CreateConfigRequest struct {
	ProjectID      string       `json:"project_id"`
	Title          string       `json:"title"`
	CronExpression string       `json:"cron_expression"`
	Timezone       string       `json:"timezone,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	Kinds          []entry.Kind `json:"kinds,omitempty"`
	Enabled        *bool        `json:"enabled,omitempty"`
}

// ListConfigsRequest filters config listings.
type ListConfigsRequest struct {
	ProjectID string `json:"project_id" query:"project_id"`
}

// GetConfigRequest is the (empty) payload for fetching a config.
type GetConfigRequest struct{}

// DeleteConfigRequest is the (empty) payload for deleting a config.
type DeleteConfigRequest struct{}

// ListDigestsRequest paginates digest listings.
type ListDigestsRequest struct {
	Limit  int `json:"limit" query:"limit"`
	Offset int `json:"offset" query:"offset"`
}

// GetDigestRequest is the (empty) payload for fetching a digest.
type GetDigestRequest struct{}

// DeleteDigestRequest is the (empty) payload for deleting a digest.
type DeleteDigestRequest struct{}

// BackfillRequest is the payload for a backfill invocation.
type BackfillRequest struct {
	// LookbackDays bounds how far back the schedule is reconciled.
	LookbackDays int `json:"lookback_days"`

	// StartFrom optionally anchors the lookback window. Accepts RFC 3339;
	// a bare "YYYY-MM-DDTHH:MM:SS" value is treated as UTC. Empty means now.
	StartFrom string `json:"start_from_date,omitempty"`

	// Force deletes overlapping digests before regenerating.
	Force bool `json:"force,omitempty"`
}

// BackfillResponse reports the outcome of a backfill invocation.
type BackfillResponse struct {
	CreatedCount int               `json:"created_count"`
	SkippedCount int               `json:"skipped_count"`
	FailedCount  int               `json:"failed_count"`
	DeletedCount int               `json:"deleted_count"`
	Digests      []*digest.Digest  `json:"digests"`
	Failures     []BackfillFailure `json:"failures,omitempty"`
}

// BackfillFailure is one per-instant failure in a backfill response.
type BackfillFailure struct {
	Instant string `json:"instant"`
	Reason  string `json:"reason"`
}
