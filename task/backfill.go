package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tesserahq/chrona/backfill"
	"github.com/tesserahq/chrona/id"
)

// BackfillTaskName identifies the backfill task when registering it with a
// job runner.
const BackfillTaskName = "chrona.backfill"

// BackfillArgs is the JSON payload of a queued backfill.
type BackfillArgs struct {
	// ConfigID is the string form of the schedule config id.
	ConfigID string `json:"config_id"`

	// LookbackDays bounds how far back the schedule is reconciled.
	LookbackDays int `json:"lookback_days"`

	// StartFromDate optionally anchors the lookback window. Accepts RFC 3339;
	// a bare "YYYY-MM-DDTHH:MM:SS" value is treated as UTC. Empty means now.
	StartFromDate string `json:"start_from_date,omitempty"`

	// Force deletes overlapping digests before regenerating.
	Force bool `json:"force,omitempty"`
}

// BackfillResult is the JSON result of a queued backfill.
type BackfillResult struct {
	CreatedCount int      `json:"created_count"`
	SkippedCount int      `json:"skipped_count"`
	FailedCount  int      `json:"failed_count"`
	DeletedCount int      `json:"deleted_count"`
	DigestIDs    []string `json:"digest_ids,omitempty"`
}

// BackfillTask adapts a backfill.Engine to a byte-payload task interface.
type BackfillTask struct {
	engine *backfill.Engine
	logger *slog.Logger
}

// BackfillTaskOption configures a BackfillTask.
type BackfillTaskOption func(*BackfillTask)

// WithLogger sets the task logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) BackfillTaskOption {
	return func(t *BackfillTask) {
		t.logger = logger
	}
}

// NewBackfillTask creates a BackfillTask around the given engine.
func NewBackfillTask(engine *backfill.Engine, opts ...BackfillTaskOption) *BackfillTask {
	t := &BackfillTask{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task's registration name.
func (t *BackfillTask) Name() string { return BackfillTaskName }

// Execute decodes the JSON args, runs the backfill, and encodes the result.
// Precondition failures (bad args, unknown config, invalid cron) return an
// error; per-instant failures are reported inside the result instead.
func (t *BackfillTask) Execute(ctx context.Context, payload []byte) ([]byte, error) {
	var args BackfillArgs
	if err := json.Unmarshal(payload, &args); err != nil {
		return nil, fmt.Errorf("decode backfill args: %w", err)
	}

	configID, err := id.ParseConfigID(args.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("parse config id: %w", err)
	}

	startFrom, err := parseInstant(args.StartFromDate)
	if err != nil {
		return nil, fmt.Errorf("parse start_from_date: %w", err)
	}

	outcome, err := t.engine.Run(ctx, backfill.Request{
		ConfigID:     configID,
		LookbackDays: args.LookbackDays,
		StartFrom:    startFrom,
		Force:        args.Force,
	})
	if err != nil {
		return nil, err
	}

	result := BackfillResult{
		CreatedCount: outcome.CreatedCount(),
		SkippedCount: outcome.SkippedCount,
		FailedCount:  outcome.FailedCount,
		DeletedCount: outcome.DeletedCount,
	}
	for _, d := range outcome.Created {
		result.DigestIDs = append(result.DigestIDs, d.ID.String())
	}

	if outcome.FailedCount > 0 {
		t.logger.Warn("queued backfill finished with failures",
			slog.String("config_id", args.ConfigID),
			slog.Int("failed", outcome.FailedCount),
		)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode backfill result: %w", err)
	}
	return encoded, nil
}

func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
}
