package chrona

import (
	"errors"
	"fmt"
)

var (
	// Store errors.
	ErrNoStore         = errors.New("chrona: no store configured")
	ErrMigrationFailed = errors.New("chrona: migration failed")

	// Not found errors.
	ErrConfigNotFound  = errors.New("chrona: digest schedule config not found")
	ErrDigestNotFound  = errors.New("chrona: digest not found")
	ErrEntryNotFound   = errors.New("chrona: entry not found")
	ErrProjectNotFound = errors.New("chrona: project not found")

	// Conflict errors.
	ErrDuplicateDigest = errors.New("chrona: digest already exists for window")

	// Backfill errors.
	ErrInvalidLookback      = errors.New("chrona: lookback days out of range")
	ErrBackfillInProgress   = errors.New("chrona: backfill already in progress for config")
	ErrMaterializerRequired = errors.New("chrona: no digest materializer configured")
)

// InvalidScheduleError reports a cron expression that could not be parsed.
// It carries the offending expression so callers can surface it.
type InvalidScheduleError struct {
	Expression string
	Err        error
}

// Error implements the error interface.
func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("chrona: invalid cron schedule %q: %v", e.Expression, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *InvalidScheduleError) Unwrap() error { return e.Err }
