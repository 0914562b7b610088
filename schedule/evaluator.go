package schedule

import (
	"log/slog"
	"time"

	cronlib "github.com/netresearch/go-cron"

	"github.com/tesserahq/chrona"
)

// prevScanHorizon bounds the backward search for a previous fire time,
// mirroring the five-year give-up horizon of the cron library's forward
// search. Schedules with no fire inside the horizon yield the zero time.
const prevScanHorizon = 5 * 366 * 24 * time.Hour

// Validate reports whether expression is a parseable 5-field cron spec.
// Returns *chrona.InvalidScheduleError carrying the expression on failure.
func Validate(expression string) error {
	if _, err := cronlib.ParseStandard(expression); err != nil {
		return &chrona.InvalidScheduleError{Expression: expression, Err: err}
	}
	return nil
}

// LoadLocation resolves an IANA timezone name, falling back to UTC when the
// name is empty or unknown. The fallback is logged at warning level but is
// not an error: backfill availability wins over strict timezone validation.
func LoadLocation(name string, logger *slog.Logger) *time.Location {
	if name == "" || name == "UTC" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("unknown timezone, falling back to UTC",
			slog.String("timezone", name),
			slog.String("error", err.Error()),
		)
		return time.UTC
	}
	return loc
}

// Evaluator wraps a parsed cron expression pinned to a timezone. The
// expression is parsed exactly once at construction; all instant
// computations afterward are pure functions of the evaluator and the
// reference time.
type Evaluator struct {
	expr  string
	sched cronlib.Schedule
	loc   *time.Location
}

// NewEvaluator parses expression and resolves timezone. A malformed
// expression fails fast with *chrona.InvalidScheduleError, before any
// instant computation.
func NewEvaluator(expression, timezone string, logger *slog.Logger) (*Evaluator, error) {
	sched, err := cronlib.ParseStandard(expression)
	if err != nil {
		return nil, &chrona.InvalidScheduleError{Expression: expression, Err: err}
	}
	return &Evaluator{
		expr:  expression,
		sched: sched,
		loc:   LoadLocation(timezone, logger),
	}, nil
}

// Expression returns the cron expression this evaluator was built from.
func (e *Evaluator) Expression() string { return e.expr }

// Location returns the timezone the schedule is evaluated in.
func (e *Evaluator) Location() *time.Location { return e.loc }

// Next returns the first fire time strictly after t, evaluated in the
// schedule's timezone.
func (e *Evaluator) Next(t time.Time) time.Time {
	return e.sched.Next(t.In(e.loc))
}

// Prev returns the most recent fire time at or before t, or the zero time
// when the schedule has no fire within the scan horizon. The cron library
// only walks forward, so Prev probes backward over doubling windows and
// takes the last enumerated fire.
func (e *Evaluator) Prev(t time.Time) time.Time {
	t = t.In(e.loc)
	oldest := t.Add(-prevScanHorizon)
	for span := 24 * time.Hour; ; span *= 2 {
		start := t.Add(-span)
		if start.Before(oldest) {
			start = oldest
		}
		// Fires are minute-aligned, so the one-second shifts make the
		// probe window inclusive of both t and a fire exactly at the
		// window start without admitting extra fires.
		fires := cronlib.Between(e.sched, start.Add(-time.Second), t.Add(time.Second))
		if len(fires) > 0 {
			return fires[len(fires)-1]
		}
		if start.Equal(oldest) {
			return time.Time{}
		}
	}
}

// Instants returns every fire time in [anchor - lookbackDays, anchor], in
// chronological order. The lookback floor is inclusive: a fire exactly at
// the floor is part of the sequence. A schedule that never fires inside
// the window yields an empty (nil) slice; that is a valid no-op, not an
// error.
func (e *Evaluator) Instants(anchor time.Time, lookbackDays int) []time.Time {
	anchor = anchor.In(e.loc)
	floor := anchor.AddDate(0, 0, -lookbackDays)
	return cronlib.Between(e.sched, floor.Add(-time.Second), anchor.Add(time.Second))
}

// Window returns the coverage window for a digest nominally generated at
// instant: the previous fire strictly before instant through instant
// itself, normalized to UTC. Schedules with no earlier fire within the
// scan horizon fall back to a one-day window ending at instant.
func (e *Evaluator) Window(instant time.Time) Window {
	instant = instant.In(e.loc)
	from := e.Prev(instant.Add(-time.Minute))
	if from.IsZero() {
		from = instant.AddDate(0, 0, -1)
	}
	return Window{From: from.UTC(), To: instant.UTC()}
}
