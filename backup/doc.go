// Package backup serializes the whole database to a versioned JSON snapshot
// and restores a database from one. Version 1 snapshots predate groups and
// per-student fees; they import with those fields defaulted. Import replaces
// all data inside a single transaction.
package backup
