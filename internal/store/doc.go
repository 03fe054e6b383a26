// Package store persists wallpaper metadata records behind a write-once
// gate.
//
// Two implementations share the Store interface: FileStore lays records
// out as per-market JSON documents, DBStore keeps them in a SQLite
// database. Both guarantee that a (market, date) key is written at most
// once even under concurrent writers, which is what lets the collector
// re-run safely.
package store
