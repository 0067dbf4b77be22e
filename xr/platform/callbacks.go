package platform

import (
	"sync"
	"time"
)

// CallbackQueue holds animation-frame callbacks for a session implementation.
//
// Run delivers one frame to the callbacks queued before it started; callbacks
// queued during delivery wait for the next Run.
type CallbackQueue struct {
	mu      sync.Mutex
	next    uint32
	pending []queuedCallback
	spare   []queuedCallback
}

type queuedCallback struct {
	id uint32
	cb FrameCallback
}

// Add queues cb and returns a non-zero handle.
func (q *CallbackQueue) Add(cb FrameCallback) uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	if q.next == 0 {
		q.next = 1
	}
	q.pending = append(q.pending, queuedCallback{id: q.next, cb: cb})
	return q.next
}

// Cancel drops a queued callback. Unknown handles are ignored.
func (q *CallbackQueue) Cancel(id uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, c := range q.pending {
		if c.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Clear drops every queued callback.
func (q *CallbackQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = q.pending[:0]
}

// Len returns the number of queued callbacks.
func (q *CallbackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run fires the queued callbacks with frame and returns how many ran.
func (q *CallbackQueue) Run(now time.Duration, frame Frame) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.mu.Unlock()

	for _, c := range batch {
		c.cb(now, frame)
	}

	q.mu.Lock()
	q.spare = batch[:0]
	q.mu.Unlock()
	return len(batch)
}
