// Package observability provides OpenTelemetry-based metrics for chrona.
// BackfillMetrics implements backfill.MetricsRecorder and records aggregate
// counters for created, skipped, failed, and deleted digests plus a run
// duration histogram. If no MeterProvider is configured globally, noop
// instruments are used and recording becomes a pass-through.
package observability
