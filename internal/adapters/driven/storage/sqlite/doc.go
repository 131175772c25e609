// Package sqlite persists the ask log and rebuild history in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, accessed through jmoiron/sqlx. One database serves both
// history interfaces:
//
//   - AskLogStore: every answered (or failed) question
//   - RebuildLogStore: every index rebuild attempt
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are tracked in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.pulsrag/pulsrag.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite locking in
// WAL mode with a busy timeout.
package sqlite
