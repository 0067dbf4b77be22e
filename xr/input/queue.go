// Package input turns select triggers into placement commands for the frame
// loop.
package input

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"sparkxr/xr/quarkgl"
)

// Marker is the marker state as last published by the frame loop.
type Marker struct {
	Transform quarkgl.Mat4
	Visible   bool
	Tick      uint64
}

// Command is a request to place content at Target. Target is captured when
// the select arrives, not when the command is applied.
type Command struct {
	ID     uuid.UUID
	Issued time.Duration
	Target Marker
}

// DefaultQueueSize bounds the commands waiting for the next tick.
const DefaultQueueSize = 8

// Queue is a bounded multi-producer, single-consumer command queue. The frame
// loop drains it once per tick.
type Queue struct {
	mu     sync.Mutex
	slots  []Command
	head   int
	n      int
	closed bool
}

// NewQueue returns a queue holding up to size commands, DefaultQueueSize if size is not positive.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{slots: make([]Command, size)}
}

// TryPush enqueues cmd, returning false if the queue is full or closed.
func (q *Queue) TryPush(cmd Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.n == len(q.slots) {
		return false
	}
	q.slots[(q.head+q.n)%len(q.slots)] = cmd
	q.n++
	return true
}

// Drain appends every queued command to dst in arrival order and empties the
// queue.
func (q *Queue) Drain(dst []Command) []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	for ; q.n > 0; q.n-- {
		dst = append(dst, q.slots[q.head])
		q.slots[q.head] = Command{}
		q.head = (q.head + 1) % len(q.slots)
	}
	return dst
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Close discards pending commands and rejects later pushes. It returns the
// number discarded.
func (q *Queue) Close() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.n
	clear(q.slots)
	q.head, q.n = 0, 0
	q.closed = true
	return n
}
