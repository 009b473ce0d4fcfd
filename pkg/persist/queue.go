package persist

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// defaultQueueSize is the capacity of the buffered save channel.
const defaultQueueSize = 64

// Queue serializes snapshot saves through a single background writer, so
// the on-disk file always reflects some prefix of committed states and
// concurrent saves cannot interleave. Saves are fire-and-forget relative
// to the caller; I/O errors are logged and swallowed, in-memory state
// stays authoritative.
type Queue struct {
	driver    Driver
	jobs      chan *Snapshot
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

// QueueConfig configures a save queue.
type QueueConfig struct {
	// Driver is the persistence backend.
	Driver Driver

	// Size is the capacity of the buffered save channel (defaults to 64).
	Size uint

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

// NewQueue creates a queue and starts its writer goroutine.
func NewQueue(c QueueConfig) *Queue {
	size := c.Size
	if size == 0 {
		size = defaultQueueSize
	}

	q := &Queue{
		driver: c.Driver,
		jobs:   make(chan *Snapshot, size),
		done:   make(chan struct{}),
		logger: c.Logger,
	}

	go q.writer()

	return q
}

// Enqueue submits a snapshot for saving. Returns false when the queue is
// full; the save is dropped and a later save will carry the state forward.
func (q *Queue) Enqueue(snap *Snapshot) bool {
	select {
	case q.jobs <- snap:
		return true
	default:
		q.logger.Warn("save queue full, snapshot dropped",
			zap.Int("history_len", len(snap.History)),
		)
		return false
	}
}

// Close stops accepting saves and waits for in-flight writes to drain.
// Safe to call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.jobs)
	})
	<-q.done
}

// writer is the single writer goroutine. Ordering against other saves is
// guaranteed by there being exactly one of it.
func (q *Queue) writer() {
	defer close(q.done)

	for snap := range q.jobs {
		if err := q.driver.Save(context.Background(), snap); err != nil {
			q.logger.Error("snapshot save failed",
				zap.String("session_id", snap.CurrentSessionID),
				zap.Error(err),
			)
			continue
		}

		q.logger.Debug("snapshot saved",
			zap.String("session_id", snap.CurrentSessionID),
			zap.Int("history_len", len(snap.History)),
		)
	}
}
