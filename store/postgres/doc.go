// Package postgres implements the store using pgx/v5 with raw SQL.
// Features: embedded SQL migrations and a partial unique index on
// (config_id, from_date, to_date) that rejects duplicate digest windows.
package postgres
