// Package download runs wallpaper image downloads through a bounded
// task queue.
//
// Each enqueued task covers one (wallpaper, resolution) pair; active
// pairs are deduplicated, transfers share a global permit pool, and
// progress plus status transitions are broadcast to subscribers over
// buffered channels. Cancellation is per task and is a distinct outcome
// from failure.
package download
