// Package bing implements the metadata client for the Bing HPImageArchive
// endpoint.
//
// Each fetch targets one (market, day offset) tuple, sends the market's
// language headers, and maps the archive's JSON entry into a validated
// metadata record. The client performs no retries; callers decide how to
// isolate and report per-tuple failures.
package bing
