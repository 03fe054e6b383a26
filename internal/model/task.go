package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DownloadStatus is the lifecycle state of a download task.
type DownloadStatus string

const (
	// StatusPending means the task is registered but has not acquired a
	// transfer permit yet.
	StatusPending DownloadStatus = "Pending"

	// StatusInProgress means bytes are being transferred.
	StatusInProgress DownloadStatus = "InProgress"

	// StatusCompleted means the file was written and verified non-empty.
	StatusCompleted DownloadStatus = "Completed"

	// StatusFailed means the transfer failed; ErrorMessage carries why.
	StatusFailed DownloadStatus = "Failed"

	// StatusCancelled means the task was cancelled by the caller.
	// Cancellation is not a failure.
	StatusCancelled DownloadStatus = "Cancelled"
)

// IsActive reports whether the task may still make progress.
func (s DownloadStatus) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

// IsTerminal reports whether the task reached a final state.
func (s DownloadStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// DownloadTask is a snapshot of one download unit of work.
//
// The queue hands out copies; mutating a snapshot has no effect on the
// live task, whose fields are owned by its worker goroutine.
type DownloadTask struct {
	// ID uniquely identifies the task for cancel/delete/get calls.
	ID uuid.UUID

	// WallpaperID and Resolution form the dedup key: at most one active
	// task exists per pair.
	WallpaperID string
	Resolution  string

	// Title is carried along for display.
	Title string

	Status DownloadStatus

	// BytesDownloaded and TotalBytes track transfer progress.
	// TotalBytes is 0 when the server did not advertise a size.
	BytesDownloaded int64
	TotalBytes      int64

	// Speed is the instantaneous throughput in bytes per second.
	Speed float64

	// ETA is the estimated remaining transfer time; zero when unknown.
	ETA time.Duration

	// ErrorMessage is set when Status is StatusFailed.
	ErrorMessage string

	// FilePath is the destination file, set on completion.
	FilePath string

	StartedAt   time.Time
	CompletedAt time.Time
}

// Percent returns transfer completion in [0, 100], or 0 when the total
// size is unknown.
func (t DownloadTask) Percent() float64 {
	if t.TotalBytes <= 0 {
		return 0
	}
	return float64(t.BytesDownloaded) / float64(t.TotalBytes) * 100
}

// SpeedLabel formats the throughput for display, e.g. "1.4 MB/s".
func (t DownloadTask) SpeedLabel() string {
	switch {
	case t.Speed >= 1<<20:
		return fmt.Sprintf("%.1f MB/s", t.Speed/(1<<20))
	case t.Speed >= 1<<10:
		return fmt.Sprintf("%.1f KB/s", t.Speed/(1<<10))
	case t.Speed > 0:
		return fmt.Sprintf("%.0f B/s", t.Speed)
	default:
		return "—"
	}
}

// ETALabel formats the remaining time as mm:ss or hh:mm:ss, or "—" when
// unknown.
func (t DownloadTask) ETALabel() string {
	if t.ETA <= 0 {
		return "—"
	}
	secs := int(t.ETA.Round(time.Second).Seconds())
	if secs >= 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
