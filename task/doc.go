// Package task wraps the backfill engine for queued execution. Arguments
// and results travel as JSON with string ids and RFC 3339 instants, so any
// job runner that moves opaque payloads can schedule a backfill without
// importing chrona's domain types.
package task
