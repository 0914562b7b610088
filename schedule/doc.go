// Package schedule evaluates digest cron schedules. It wraps standard
// 5-field cron parsing, derives the historical fire times inside a lookback
// window, and maps a fire time to the [from, to) coverage window a digest
// generated at that moment should span.
//
// Evaluation happens in the config's IANA timezone; an unrecognized
// timezone name falls back to UTC with a warning rather than failing, since
// timezone data is user-editable config.
package schedule
