package queue

import (
	"sync"

	"github.com/dpetrov/elevator-cab/internal/domain"
)

// StateChangeQueue is the outbound, unbounded-from-the-engine's-perspective
// queue of StateChange events. The control engine's Enqueue must never
// block it, so the queue grows a backing slice under a mutex rather than
// relying on a fixed-capacity channel; a single background consumer
// drains it via Dequeue, which blocks until an item is available or the
// queue is closed.
type StateChangeQueue struct {
	mu     sync.Mutex
	items  []domain.StateChange
	notify chan struct{}
	closed bool
}

// NewStateChangeQueue creates an empty queue.
func NewStateChangeQueue() *StateChangeQueue {
	return &StateChangeQueue{notify: make(chan struct{}, 1)}
}

// Enqueue appends a StateChange. Never blocks and is safe to call from
// the control engine's tick loop.
func (q *StateChangeQueue) Enqueue(sc domain.StateChange) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, sc)
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue blocks until at least one item is available (or the queue is
// closed), then returns the oldest item. The second return value is
// false once the queue is closed and drained.
func (q *StateChangeQueue) Dequeue() (domain.StateChange, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, true
		}
		if q.closed {
			q.mu.Unlock()
			return domain.StateChange{}, false
		}
		q.mu.Unlock()
		<-q.notify
	}
}

// Close marks the queue closed; pending items drain normally but Dequeue
// returns false once empty.
func (q *StateChangeQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len reports the number of buffered, undelivered items.
func (q *StateChangeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
