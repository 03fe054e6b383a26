// Package http provides the HTTP transport used to talk to the Bing
// image archive.
//
// The package wraps net/http with the browser-like headers the archive
// expects, JSON metadata fetching, and streaming file downloads with a
// throttled progress callback and chunk-level cancellation.
package http
