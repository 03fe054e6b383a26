package download

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/norwind/bingwall/internal/model"
)

// eventBuffer is the per-subscriber channel capacity. A subscriber that
// stops draining loses events rather than stalling workers.
const eventBuffer = 64

// ProgressEvent reports transfer progress for one task. Percent is 0
// when the total size is unknown, matching DownloadTask.Percent.
type ProgressEvent struct {
	TaskID  uuid.UUID
	Bytes   int64
	Total   int64
	Percent float64
	Speed   float64
	ETA     time.Duration
}

// StatusEvent reports a task's transition into a new status.
type StatusEvent struct {
	TaskID  uuid.UUID
	Status  model.DownloadStatus
	Message string
}

// broadcaster fans events out to subscribers over buffered channels.
// Publishing never blocks; a full subscriber channel drops the event.
type broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[int]chan T)}
}

// subscribe registers a new subscriber. The returned func unsubscribes
// and closes the channel; it is safe to call more than once.
func (b *broadcaster[T]) subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan T, eventBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

func (b *broadcaster[T]) publish(ev T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber, drop.
		}
	}
}
