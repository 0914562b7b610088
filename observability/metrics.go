package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tesserahq/chrona/backfill"
)

// meterName is the instrumentation scope name for chrona metrics.
const meterName = "github.com/tesserahq/chrona"

// Compile-time interface check.
var _ backfill.MetricsRecorder = (*BackfillMetrics)(nil)

// BackfillMetrics records per-run backfill outcomes using OTel instruments.
//
// Instruments:
//   - chrona.backfill.digests.created (Int64Counter)
//   - chrona.backfill.digests.skipped (Int64Counter)
//   - chrona.backfill.digests.failed (Int64Counter)
//   - chrona.backfill.digests.deleted (Int64Counter)
//   - chrona.backfill.duration (Float64Histogram): run time in seconds
//
// All carry a config_id attribute.
type BackfillMetrics struct {
	created  metric.Int64Counter
	skipped  metric.Int64Counter
	failed   metric.Int64Counter
	deleted  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewBackfillMetrics creates a BackfillMetrics using the global OTel
// MeterProvider. If none is configured, noop instruments are used.
func NewBackfillMetrics() *BackfillMetrics {
	return NewBackfillMetricsWithMeter(otel.Meter(meterName))
}

// NewBackfillMetricsWithMeter creates a BackfillMetrics using the provided
// meter. This variant allows injecting a specific MeterProvider for testing.
func NewBackfillMetricsWithMeter(meter metric.Meter) *BackfillMetrics {
	// Create instruments once at construction time. OTel instruments are
	// safe for concurrent use. On error, the API returns noop instruments
	// so recording degrades gracefully.
	created, cErr := meter.Int64Counter(
		"chrona.backfill.digests.created",
		metric.WithDescription("Digests created by backfill runs"),
		metric.WithUnit("{digest}"),
	)
	_ = cErr // noop fallback guaranteed by OTel API contract

	skipped, sErr := meter.Int64Counter(
		"chrona.backfill.digests.skipped",
		metric.WithDescription("Execution instants skipped because an overlapping digest exists"),
		metric.WithUnit("{instant}"),
	)
	_ = sErr // noop fallback guaranteed by OTel API contract

	failed, fErr := meter.Int64Counter(
		"chrona.backfill.digests.failed",
		metric.WithDescription("Execution instants that failed to materialize"),
		metric.WithUnit("{instant}"),
	)
	_ = fErr // noop fallback guaranteed by OTel API contract

	deleted, dErr := meter.Int64Counter(
		"chrona.backfill.digests.deleted",
		metric.WithDescription("Digests deleted by force-mode backfill runs"),
		metric.WithUnit("{digest}"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	duration, hErr := meter.Float64Histogram(
		"chrona.backfill.duration",
		metric.WithDescription("Duration of backfill runs in seconds"),
		metric.WithUnit("s"),
	)
	_ = hErr // noop fallback guaranteed by OTel API contract

	return &BackfillMetrics{
		created:  created,
		skipped:  skipped,
		failed:   failed,
		deleted:  deleted,
		duration: duration,
	}
}

// RecordBackfill implements backfill.MetricsRecorder.
func (m *BackfillMetrics) RecordBackfill(ctx context.Context, configID string, outcome *backfill.Outcome, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("config_id", configID),
	)

	m.created.Add(ctx, int64(outcome.CreatedCount()), attrs)
	m.skipped.Add(ctx, int64(outcome.SkippedCount), attrs)
	m.failed.Add(ctx, int64(outcome.FailedCount), attrs)
	m.deleted.Add(ctx, int64(outcome.DeletedCount), attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
