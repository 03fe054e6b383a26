package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	ioutils "github.com/norwind/bingwall/internal/io"
	"github.com/norwind/bingwall/internal/model"
)

// ErrUnknownTask is returned by task operations addressing an ID the
// queue does not hold.
var ErrUnknownTask = errors.New("download: unknown task")

// fileClient is the transfer dependency of the queue. *http.Client of
// the internal http package satisfies it.
type fileClient interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// taskState is the live counterpart of a DownloadTask snapshot. The task
// fields are written by the owning worker goroutine and read through
// snapshots taken under the queue lock.
type taskState struct {
	task   model.DownloadTask
	url    string
	cancel context.CancelFunc
}

// activeKey dedups enqueues: at most one active task per
// (wallpaper, resolution) pair.
type activeKey struct {
	wallpaperID string
	resolution  string
}

// Queue runs image downloads with a global concurrency bound.
//
// Enqueue registers the task and returns immediately; a worker goroutine
// acquires one of the transfer permits, streams the file, and publishes
// progress and status events to subscribers. Tasks stay listed after
// they finish until Delete or Clear removes them.
//
// Example:
//
//	q := download.NewQueue(client, logger, "/data/downloads", 5)
//	task, err := q.Enqueue(wp, "UHD")
//	events, cancel := q.SubscribeProgress()
//	defer cancel()
type Queue struct {
	client fileClient
	log    *zap.Logger
	root   string

	sem *semaphore.Weighted

	mu     sync.RWMutex
	tasks  map[uuid.UUID]*taskState
	active map[activeKey]uuid.UUID

	progress *broadcaster[ProgressEvent]
	status   *broadcaster[StatusEvent]

	wg sync.WaitGroup
}

// NewQueue creates a download queue writing under root with at most
// maxConcurrent simultaneous transfers.
func NewQueue(client fileClient, logger *zap.Logger, root string, maxConcurrent int64) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Queue{
		client:   client,
		log:      logger,
		root:     root,
		sem:      semaphore.NewWeighted(maxConcurrent),
		tasks:    make(map[uuid.UUID]*taskState),
		active:   make(map[activeKey]uuid.UUID),
		progress: newBroadcaster[ProgressEvent](),
		status:   newBroadcaster[StatusEvent](),
	}
}

// Enqueue registers a download of one wallpaper rendition and starts its
// worker.
//
// If an active task for the same (wallpaper, resolution) pair already
// exists, that task's snapshot is returned instead of creating a second
// transfer. A wallpaper without the requested variant yields an
// immediately Failed task; no network request is made.
func (q *Queue) Enqueue(wp *model.Wallpaper, resolutionTag string) (model.DownloadTask, error) {
	if wp == nil {
		return model.DownloadTask{}, errors.New("download: nil wallpaper")
	}
	key := activeKey{wallpaperID: wp.ID(), resolution: resolutionTag}

	q.mu.Lock()
	if id, ok := q.active[key]; ok {
		existing := q.tasks[id].task
		q.mu.Unlock()
		return existing, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	state := &taskState{
		task: model.DownloadTask{
			ID:          uuid.New(),
			WallpaperID: wp.ID(),
			Resolution:  resolutionTag,
			Title:       wp.Title,
			Status:      model.StatusPending,
			StartedAt:   time.Now(),
		},
		url:    wp.ImageURL(resolutionTag),
		cancel: cancel,
	}
	q.tasks[state.task.ID] = state
	q.active[key] = state.task.ID
	snapshot := state.task
	q.mu.Unlock()

	q.publishStatus(state.task.ID, model.StatusPending, "")

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer cancel()
		q.run(ctx, state, wp, key)
	}()

	return snapshot, nil
}

// run drives one task from Pending to a terminal status.
func (q *Queue) run(ctx context.Context, state *taskState, wp *model.Wallpaper, key activeKey) {
	id := state.task.ID

	if state.url == "" {
		q.finish(state, key, model.StatusFailed,
			fmt.Sprintf("no %q rendition for wallpaper %s", key.resolution, key.wallpaperID))
		return
	}

	destDir := filepath.Join(q.root, wp.Country, wp.Date, "Images")
	name := ioutils.FileNameFromURL(state.url)
	if name == "" {
		name = ioutils.SanitizeFileName(key.resolution) + "_wallpaper.jpg"
	}
	destPath := filepath.Join(destDir, name)

	// A non-empty file from an earlier run counts as done.
	if info, err := os.Stat(destPath); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
		q.mu.Lock()
		state.task.FilePath = destPath
		state.task.BytesDownloaded = info.Size()
		state.task.TotalBytes = info.Size()
		q.mu.Unlock()
		q.finish(state, key, model.StatusCompleted, "")
		return
	}

	if err := q.sem.Acquire(ctx, 1); err != nil {
		q.finish(state, key, model.StatusCancelled, "")
		return
	}
	defer q.sem.Release(1)

	if err := ioutils.EnsureDir(destDir); err != nil {
		q.finish(state, key, model.StatusFailed, err.Error())
		return
	}

	q.setStatus(state, model.StatusInProgress)
	q.publishStatus(id, model.StatusInProgress, "")

	transferStart := time.Now()
	err := q.client.DownloadFile(ctx, state.url, destPath, func(written, total int64) {
		q.updateProgress(state, transferStart, written, total)
	})

	switch {
	case err == nil:
		q.setFilePath(state, destPath)
		q.finish(state, key, model.StatusCompleted, "")
	case errors.Is(err, context.Canceled):
		q.finish(state, key, model.StatusCancelled, "")
	default:
		q.finish(state, key, model.StatusFailed, err.Error())
	}
}

// Cancel stops an active task. Cancelling a terminal task is a no-op.
func (q *Queue) Cancel(id uuid.UUID) error {
	q.mu.RLock()
	state, ok := q.tasks[id]
	q.mu.RUnlock()
	if !ok {
		return ErrUnknownTask
	}
	state.cancel()
	return nil
}

// Delete cancels the task if still active and removes it from the queue.
// No further events are published for a deleted task.
func (q *Queue) Delete(id uuid.UUID) error {
	q.mu.Lock()
	state, ok := q.tasks[id]
	if !ok {
		q.mu.Unlock()
		return ErrUnknownTask
	}
	delete(q.tasks, id)
	key := activeKey{wallpaperID: state.task.WallpaperID, resolution: state.task.Resolution}
	if q.active[key] == id {
		delete(q.active, key)
	}
	q.mu.Unlock()

	state.cancel()
	return nil
}

// Clear cancels every active task and empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	states := make([]*taskState, 0, len(q.tasks))
	for _, s := range q.tasks {
		states = append(states, s)
	}
	q.tasks = make(map[uuid.UUID]*taskState)
	q.active = make(map[activeKey]uuid.UUID)
	q.mu.Unlock()

	for _, s := range states {
		s.cancel()
	}
}

// Get returns a snapshot of one task.
func (q *Queue) Get(id uuid.UUID) (model.DownloadTask, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	state, ok := q.tasks[id]
	if !ok {
		return model.DownloadTask{}, false
	}
	return state.task, true
}

// List returns snapshots of every task, most recently started first.
func (q *Queue) List() []model.DownloadTask {
	q.mu.RLock()
	out := make([]model.DownloadTask, 0, len(q.tasks))
	for _, s := range q.tasks {
		out = append(out, s.task)
	}
	q.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// SubscribeProgress returns a channel of progress events plus an
// unsubscribe func. Slow subscribers lose events instead of blocking
// transfers.
func (q *Queue) SubscribeProgress() (<-chan ProgressEvent, func()) {
	return q.progress.subscribe()
}

// SubscribeStatus returns a channel of status transition events plus an
// unsubscribe func.
func (q *Queue) SubscribeStatus() (<-chan StatusEvent, func()) {
	return q.status.subscribe()
}

// Shutdown cancels all tasks and waits for workers to exit.
func (q *Queue) Shutdown() {
	q.mu.RLock()
	for _, s := range q.tasks {
		s.cancel()
	}
	q.mu.RUnlock()
	q.wg.Wait()
}

// Wait blocks until every worker started so far has finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// setStatus updates the live task under the lock.
func (q *Queue) setStatus(state *taskState, status model.DownloadStatus) {
	q.mu.Lock()
	state.task.Status = status
	q.mu.Unlock()
}

func (q *Queue) setFilePath(state *taskState, path string) {
	q.mu.Lock()
	state.task.FilePath = path
	q.mu.Unlock()
}

// updateProgress folds a transfer callback into the live task and
// publishes it, unless the task has been removed.
func (q *Queue) updateProgress(state *taskState, transferStart time.Time, written, total int64) {
	elapsed := time.Since(transferStart).Seconds()

	q.mu.Lock()
	if _, held := q.tasks[state.task.ID]; !held {
		q.mu.Unlock()
		return
	}
	state.task.BytesDownloaded = written
	if total > 0 {
		state.task.TotalBytes = total
	}
	if elapsed > 0 {
		state.task.Speed = float64(written) / elapsed
	}
	if total > 0 && state.task.Speed > 0 {
		remaining := float64(total-written) / state.task.Speed
		state.task.ETA = time.Duration(remaining * float64(time.Second))
	} else {
		state.task.ETA = 0
	}
	ev := ProgressEvent{
		TaskID:  state.task.ID,
		Bytes:   written,
		Total:   total,
		Percent: state.task.Percent(),
		Speed:   state.task.Speed,
		ETA:     state.task.ETA,
	}
	q.mu.Unlock()

	q.progress.publish(ev)
}

// finish moves a task into a terminal status, frees its dedup slot, and
// publishes the transition when the task is still held.
func (q *Queue) finish(state *taskState, key activeKey, status model.DownloadStatus, message string) {
	id := state.task.ID

	q.mu.Lock()
	_, held := q.tasks[id]
	state.task.Status = status
	state.task.ErrorMessage = message
	state.task.CompletedAt = time.Now()
	state.task.Speed = 0
	state.task.ETA = 0
	if q.active[key] == id {
		delete(q.active, key)
	}
	q.mu.Unlock()

	switch status {
	case model.StatusCompleted:
		q.log.Info("download completed",
			zap.String("wallpaper", key.wallpaperID),
			zap.String("resolution", key.resolution),
			zap.String("path", state.task.FilePath))
	case model.StatusCancelled:
		q.log.Info("download cancelled",
			zap.String("wallpaper", key.wallpaperID),
			zap.String("resolution", key.resolution))
	case model.StatusFailed:
		q.log.Warn("download failed",
			zap.String("wallpaper", key.wallpaperID),
			zap.String("resolution", key.resolution),
			zap.String("error", message))
	}

	if held {
		q.publishStatus(id, status, message)
	}
}

// publishStatus broadcasts a status transition for tasks the queue still
// holds. Removed tasks stay silent.
func (q *Queue) publishStatus(id uuid.UUID, status model.DownloadStatus, message string) {
	q.status.publish(StatusEvent{TaskID: id, Status: status, Message: message})
}
