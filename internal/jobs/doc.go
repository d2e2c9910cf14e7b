// Package jobs persists processing jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, and the
// status transitions that mirror the public job lifecycle. Statuses only
// move forward (queued, processing, then a terminal complete or error);
// Update enforces this inside a transaction so observers never see a
// reverted status or a partially written record.
//
// Treat this package as the single source of truth for job semantics; when
// you add new statuses or fields, update schema.sql and bump schemaVersion.
package jobs
