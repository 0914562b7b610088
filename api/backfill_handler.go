package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/backfill"
	"github.com/tesserahq/chrona/id"
)

func (a *API) runBackfill(ctx forge.Context, req *BackfillRequest) (*BackfillResponse, error) {
	configID, err := id.ParseConfigID(ctx.Param("configId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid config ID: %v", err))
	}

	startFrom, err := parseStartFrom(req.StartFrom)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid start_from_date: %v", err))
	}

	outcome, err := a.engine.Run(ctx.Context(), backfill.Request{
		ConfigID:     configID,
		LookbackDays: req.LookbackDays,
		StartFrom:    startFrom,
		Force:        req.Force,
	})
	if err != nil {
		return nil, mapBackfillError(err)
	}

	resp := &BackfillResponse{
		CreatedCount: outcome.CreatedCount(),
		SkippedCount: outcome.SkippedCount,
		FailedCount:  outcome.FailedCount,
		DeletedCount: outcome.DeletedCount,
		Digests:      outcome.Created,
	}
	for _, f := range outcome.Failures {
		resp.Failures = append(resp.Failures, BackfillFailure{
			Instant: f.Instant.Format(time.RFC3339),
			Reason:  f.Reason,
		})
	}

	return resp, ctx.JSON(http.StatusOK, resp)
}

// parseStartFrom parses the optional backfill anchor. RFC 3339 is preferred;
// a bare "YYYY-MM-DDTHH:MM:SS" value is treated as UTC.
func parseStartFrom(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
}

// mapBackfillError converts backfill precondition errors to forge HTTP
// errors. Per-instant failures never surface here; they are tallied in the
// outcome instead.
func mapBackfillError(err error) error {
	var schedErr *chrona.InvalidScheduleError
	switch {
	case errors.Is(err, chrona.ErrInvalidLookback), errors.As(err, &schedErr):
		return forge.BadRequest(err.Error())
	case errors.Is(err, chrona.ErrConfigNotFound):
		return forge.NotFound(err.Error())
	default:
		// ErrBackfillInProgress wants a 409, but forge only exposes
		// BadRequest/NotFound/InternalError constructors, so it passes
		// through unmapped.
		return err
	}
}
