package schedule

import (
	"log/slog"
	"time"
)

// Window is a digest coverage interval, half-open at the upper bound:
// [From, To). Both bounds are UTC-normalized for comparison against stored
// digests.
type Window struct {
	From time.Time `json:"from_date"`
	To   time.Time `json:"to_date"`
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// DateRangeMapper derives coverage windows from (expression, timezone,
// execution instant) triples. Mapping is deterministic: identical inputs
// always produce identical windows, which overlap detection and
// idempotency both depend on.
type DateRangeMapper struct {
	logger *slog.Logger
}

// NewDateRangeMapper creates a DateRangeMapper. A nil logger defaults to
// slog.Default().
func NewDateRangeMapper(logger *slog.Logger) *DateRangeMapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &DateRangeMapper{logger: logger}
}

// Map returns the [from, to) window a digest generated at executionTime
// should cover: the interval since the previous scheduled fire, evaluated
// in the configured timezone. A malformed expression returns
// *chrona.InvalidScheduleError.
func (m *DateRangeMapper) Map(expression, timezone string, executionTime time.Time) (Window, error) {
	ev, err := NewEvaluator(expression, timezone, m.logger)
	if err != nil {
		return Window{}, err
	}
	return ev.Window(executionTime), nil
}
