// Package queue implements the two queues the control engine consumes and
// produces: a non-blocking inbound Command queue and an unbounded
// outbound StateChange queue. Both follow the teacher's preference for
// channel-based signalling over condition variables where a channel's
// semantics fit directly.
package queue

import "github.com/dpetrov/elevator-cab/internal/domain"

// CommandQueue is an any-producer-single-consumer queue of Commands. The
// control engine is the sole consumer and calls TryDequeue once per tick;
// it must never block, per the tick loop's "no suspension points"
// requirement.
type CommandQueue struct {
	ch chan domain.Command
}

// NewCommandQueue creates a queue with the given buffer capacity. A
// bounded Go channel is the idiomatic stand-in for the "any-producer,
// single-consumer, non-blocking-consume" queue the spec describes:
// producers that outrun the consumer simply block on Enqueue rather than
// growing without limit, which is acceptable since commands are discrete,
// low-rate dispatcher messages rather than a high-volume event stream.
func NewCommandQueue(capacity int) *CommandQueue {
	return &CommandQueue{ch: make(chan domain.Command, capacity)}
}

// Enqueue adds a command, blocking if the buffer is full. Called by the
// session/dispatcher layer, never by the control engine.
func (q *CommandQueue) Enqueue(cmd domain.Command) {
	q.ch <- cmd
}

// TryEnqueue adds a command without blocking, reporting whether there was
// room. Used by the HTTP command-injection endpoint, which must not stall
// a request handler on a full queue.
func (q *CommandQueue) TryEnqueue(cmd domain.Command) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		return false
	}
}

// TryDequeue returns the next command and true, or the zero Command and
// false if the queue is currently empty. Never blocks.
func (q *CommandQueue) TryDequeue() (domain.Command, bool) {
	select {
	case cmd := <-q.ch:
		return cmd, true
	default:
		return domain.Command{}, false
	}
}

// Len reports the number of commands currently buffered, for metrics
// reporting. Advisory only: the result is stale the instant it's read.
func (q *CommandQueue) Len() int {
	return len(q.ch)
}
