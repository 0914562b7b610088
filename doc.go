// Package chrona provides the digest scheduling core of the Chrona
// project-activity backend: workspaces contain projects, projects ingest
// entries (issues, pull requests, commits), and digest schedule configs
// describe when summarized rollups of that activity should be produced.
//
// The centerpiece is the backfill package, an on-demand reconciliation
// engine: given a config's cron expression, timezone, and a lookback
// window, it derives the historical fire times the schedule would have
// produced, maps each to a coverage window, and idempotently materializes
// the digests that are missing.
//
// # Quick Start
//
//	s := memory.New()
//	mapper := schedule.NewDateRangeMapper(logger)
//	gen := digest.NewGenerator(s, s, s, nil, mapper)
//	eng := backfill.New(s, s, gen, mapper)
//
//	outcome, err := eng.Run(ctx, backfill.Request{
//	    ConfigID:     cfgID,
//	    LookbackDays: 7,
//	})
//
// # Architecture
//
// Chrona follows a composable store pattern where each subsystem (digest,
// entry) defines its own store interface. A single backend implements all
// of them. Backends: Postgres, Bun, Mongo, and Memory, plus a Redis
// advisory locker for cross-process backfill coordination.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based,
// compile-time safe identifiers.
package chrona
