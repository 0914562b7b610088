// Package backfill reconciles a digest schedule against history. Given a
// config and a lookback window it derives every execution instant the cron
// schedule would have fired at, checks each mapped coverage window against
// digests already persisted, and materializes the ones that are missing.
//
// Each instant resolves to one of three terminal states: created, skipped
// (an overlapping digest already exists), or failed. Force mode deletes
// overlapping digests before regenerating. Per-instant failures are tallied
// and never abort the run; only whole-invocation preconditions (unknown
// config, malformed cron expression, lookback out of range) do.
//
// The engine is synchronous and processes instants strictly in ascending
// order. It holds no cross-process locks of its own; inject a Locker to
// serialize concurrent backfills of the same config.
package backfill
