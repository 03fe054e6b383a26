// Package collect implements the metadata collection sweep.
//
// The orchestrator crosses every configured market with every requested
// day offset and fans the tuples out under nested concurrency bounds, an
// outer bound over markets and an inner bound over days. Each tuple is
// checked against the store, fetched, and pushed through the write-once
// gate; per-tuple failures are counted instead of aborting the sweep.
package collect
