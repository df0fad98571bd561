// Package store persists completed conversion runs to SQLite.
//
// Storage is append-only: a run and its child rows are written once, keyed
// by the run token, and never updated. Duplicate writes of the same token
// are silently ignored, so re-persisting a run is always safe. Reads
// reconstruct the event log in its exact committed order, which keeps the
// stored log hash verifiable against the rows.
package store
