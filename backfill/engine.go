package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/backoff"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/id"
	"github.com/tesserahq/chrona/schedule"
)

const (
	// MinLookbackDays and MaxLookbackDays bound Request.LookbackDays.
	MinLookbackDays = 1
	MaxLookbackDays = 365

	// defaultLockTTL is how long an advisory backfill lock is held before
	// it expires on its own. Long lookbacks over slow materializers can
	// run for minutes; the TTL is a crash backstop, not a deadline.
	defaultLockTTL = 10 * time.Minute
)

// Mapper derives the coverage window for an execution instant.
// schedule.DateRangeMapper satisfies it.
type Mapper interface {
	Map(expression, timezone string, executionTime time.Time) (schedule.Window, error)
}

// Locker serializes backfill invocations per config across processes.
// store/redis provides an implementation; the engine runs unlocked when
// none is injected.
type Locker interface {
	// AcquireBackfillLock attempts to take the per-config lock. Returns
	// false without error when another invocation holds it.
	AcquireBackfillLock(ctx context.Context, configID id.ConfigID, ttl time.Duration) (bool, error)

	// ReleaseBackfillLock releases the per-config lock.
	ReleaseBackfillLock(ctx context.Context, configID id.ConfigID) error
}

// MetricsRecorder receives the aggregate outcome of each backfill run.
// observability.BackfillMetrics satisfies this interface.
type MetricsRecorder interface {
	RecordBackfill(ctx context.Context, configID string, outcome *Outcome, elapsed time.Duration)
}

// Request describes one backfill invocation.
type Request struct {
	ConfigID id.ConfigID

	// LookbackDays sets the window walked backward from StartFrom.
	// Must be within [MinLookbackDays, MaxLookbackDays].
	LookbackDays int

	// StartFrom anchors the lookback window; the zero value means "now".
	// Times are normalized to UTC before conversion into the config's
	// timezone.
	StartFrom time.Time

	// Force deletes overlapping digests before regenerating instead of
	// skipping covered instants.
	Force bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLocker sets the advisory per-config lock used to serialize
// concurrent backfills.
func WithLocker(l Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithLockTTL sets the expiry on the advisory lock.
func WithLockTTL(d time.Duration) Option {
	return func(e *Engine) { e.lockTTL = d }
}

// WithRateLimit throttles materializer calls. Backfills over long lookback
// windows fan out into many generation requests against the summarization
// downstream; a limiter keeps that burst bounded.
func WithRateLimit(l *rate.Limiter) Option {
	return func(e *Engine) { e.limiter = l }
}

// WithMetrics sets the recorder that receives aggregate run outcomes.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRetry retries failed materializer calls up to maxRetries times,
// delaying between attempts per the strategy. An instant is tallied as
// failed only after its last attempt. A nil strategy uses
// backoff.DefaultStrategy(). The default is no retries.
func WithRetry(strategy backoff.Strategy, maxRetries int) Option {
	return func(e *Engine) {
		if strategy == nil {
			strategy = backoff.DefaultStrategy()
		}
		e.backoff = strategy
		e.maxRetries = maxRetries
	}
}

// WithClock overrides the engine's time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine reconciles a digest schedule against the digests already stored.
// All collaborators are injected; the engine performs no I/O of its own
// beyond delegating to them.
type Engine struct {
	configs      digest.ConfigStore
	digests      digest.Store
	materializer digest.Materializer
	mapper       Mapper

	locker     Locker
	lockTTL    time.Duration
	limiter    *rate.Limiter
	metrics    MetricsRecorder
	backoff    backoff.Strategy
	maxRetries int
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an Engine from its four collaborators.
func New(configs digest.ConfigStore, digests digest.Store, materializer digest.Materializer, mapper Mapper, opts ...Option) *Engine {
	e := &Engine{
		configs:      configs,
		digests:      digests,
		materializer: materializer,
		mapper:       mapper,
		lockTTL:      defaultLockTTL,
		logger:       slog.Default(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one backfill invocation. Precondition failures (unknown
// config, malformed cron expression, lookback out of range, lock
// contention) return an error before any instant is processed. Per-instant
// failures are tallied in the Outcome and never abort the run: a backfill
// that fails every instant still returns a nil error.
func (e *Engine) Run(ctx context.Context, req Request) (*Outcome, error) {
	started := time.Now()

	if req.LookbackDays < MinLookbackDays || req.LookbackDays > MaxLookbackDays {
		return nil, fmt.Errorf("%w: %d (want %d..%d)",
			chrona.ErrInvalidLookback, req.LookbackDays, MinLookbackDays, MaxLookbackDays)
	}
	if e.materializer == nil {
		return nil, chrona.ErrMaterializerRequired
	}

	cfg, err := e.configs.GetConfig(ctx, req.ConfigID)
	if err != nil {
		if errors.Is(err, chrona.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %s", chrona.ErrConfigNotFound, req.ConfigID)
		}
		return nil, fmt.Errorf("backfill: load config %s: %w", req.ConfigID, err)
	}

	// Validate the cron expression once, before any instant work. A bad
	// expression aborts the whole invocation with no digests touched.
	ev, err := schedule.NewEvaluator(cfg.CronExpression, cfg.Timezone, e.logger)
	if err != nil {
		return nil, err
	}

	anchor := req.StartFrom
	if anchor.IsZero() {
		anchor = e.now()
	}
	anchor = anchor.UTC()

	if e.locker != nil {
		acquired, lockErr := e.locker.AcquireBackfillLock(ctx, cfg.ID, e.lockTTL)
		if lockErr != nil {
			return nil, fmt.Errorf("backfill: acquire lock for config %s: %w", cfg.ID, lockErr)
		}
		if !acquired {
			return nil, fmt.Errorf("%w: %s", chrona.ErrBackfillInProgress, cfg.ID)
		}
		defer func() {
			if relErr := e.locker.ReleaseBackfillLock(ctx, cfg.ID); relErr != nil {
				e.logger.Warn("release backfill lock",
					slog.String("config_id", cfg.ID.String()),
					slog.String("error", relErr.Error()),
				)
			}
		}()
	}

	instants := ev.Instants(anchor, req.LookbackDays)
	outcome := &Outcome{}

	// Instants are processed strictly in ascending order, one at a time,
	// so creations and force-mode deletions for instant N are visible to
	// instant N+1's overlap decision.
	for _, instant := range instants {
		e.processInstant(ctx, cfg, instant, req.Force, outcome)
	}

	if e.metrics != nil {
		e.metrics.RecordBackfill(ctx, cfg.ID.String(), outcome, time.Since(started))
	}

	e.logger.Info("backfill complete",
		slog.String("config_id", cfg.ID.String()),
		slog.Int("instants", len(instants)),
		slog.Int("created", outcome.CreatedCount()),
		slog.Int("skipped", outcome.SkippedCount),
		slog.Int("failed", outcome.FailedCount),
		slog.Int("deleted", outcome.DeletedCount),
	)
	return outcome, nil
}

// processInstant runs the per-instant state machine: map the window, read
// overlapping digests, then create, skip, or delete-then-create.
func (e *Engine) processInstant(ctx context.Context, cfg *digest.ScheduleConfig, instant time.Time, force bool, outcome *Outcome) {
	win, err := e.mapper.Map(cfg.CronExpression, cfg.Timezone, instant)
	if err != nil {
		e.fail(outcome, cfg, instant, fmt.Errorf("map window: %w", err))
		return
	}

	// Re-read per instant: deletions and creations from earlier instants
	// must be visible to this instant's overlap decision.
	existing, err := e.digests.ListDigestsByConfig(ctx, cfg.ID)
	if err != nil {
		e.fail(outcome, cfg, instant, fmt.Errorf("list digests: %w", err))
		return
	}

	overlapping := overlappingDigests(existing, win)

	if force {
		for _, d := range overlapping {
			if delErr := e.digests.DeleteDigest(ctx, d.ID); delErr != nil {
				e.fail(outcome, cfg, instant, fmt.Errorf("delete digest %s: %w", d.ID, delErr))
				return
			}
			outcome.DeletedCount++
		}
	} else if len(overlapping) > 0 {
		outcome.SkippedCount++
		return
	}

	if e.limiter != nil {
		if waitErr := e.limiter.Wait(ctx); waitErr != nil {
			e.fail(outcome, cfg, instant, fmt.Errorf("rate limit wait: %w", waitErr))
			return
		}
	}

	d, err := e.generate(ctx, cfg, instant)
	if err != nil {
		e.fail(outcome, cfg, instant, err)
		return
	}
	outcome.Created = append(outcome.Created, d)
}

// generate calls the materializer, retrying per the configured strategy.
// The last attempt's error is the one reported.
func (e *Engine) generate(ctx context.Context, cfg *digest.ScheduleConfig, instant time.Time) (*digest.Digest, error) {
	d, err := e.materializer.Generate(ctx, cfg.ID, instant)
	if err == nil || e.backoff == nil {
		return d, err
	}

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.backoff.Delay(attempt)):
		}

		e.logger.Debug("retrying digest generation",
			slog.String("config_id", cfg.ID.String()),
			slog.Time("instant", instant),
			slog.Int("attempt", attempt),
		)

		d, err = e.materializer.Generate(ctx, cfg.ID, instant)
		if err == nil {
			return d, nil
		}
	}
	return nil, err
}

// fail records a per-instant failure and keeps the run going.
func (e *Engine) fail(outcome *Outcome, cfg *digest.ScheduleConfig, instant time.Time, err error) {
	outcome.FailedCount++
	outcome.Failures = append(outcome.Failures, Failure{
		Instant: instant.UTC(),
		Reason:  err.Error(),
	})
	e.logger.Warn("backfill instant failed",
		slog.String("config_id", cfg.ID.String()),
		slog.Time("instant", instant),
		slog.String("error", err.Error()),
	)
}

// overlappingDigests returns the stored digests whose windows overlap win.
// Digests lacking either bound are excluded: they cannot be said to
// overlap anything.
func overlappingDigests(existing []*digest.Digest, win schedule.Window) []*digest.Digest {
	var out []*digest.Digest
	for _, d := range existing {
		if d.Covers(win.From, win.To) {
			out = append(out, d)
		}
	}
	return out
}
