// Package engine owns the live SQL database handle. It selects between a
// persistent native SQLite engine (mattn/go-sqlite3, requires cgo) and a
// transient in-process engine (modernc.org/sqlite), applies the schema
// script once, and exposes a uniform statement surface through Querier so
// higher layers never touch a driver directly.
package engine
