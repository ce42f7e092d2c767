// Package ledger records run history in SQLite: one row per run with
// its final status, error, and artifact paths.
package ledger
