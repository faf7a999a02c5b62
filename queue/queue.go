// Package queue carries key events from the scanning goroutine to the
// goroutine that owns the voice. It is the only object shared between them.
package queue

import (
	"sync"
	"sync/atomic"
	"time"

	"go-cvkeys/keys"
)

// DefaultCapacity matches the firmware event queue
const DefaultCapacity = 20

// DefaultBlockTimeout bounds backpressure below the 2ms scan period
const DefaultBlockTimeout = time.Millisecond

// Policy decides what Push does when the queue is full
type Policy int

const (
	// PolicyDrop rejects the event and counts it
	PolicyDrop Policy = iota
	// PolicyBlock waits for space for at most BlockTimeout, then counts a drop
	PolicyBlock
)

func (p Policy) String() string {
	switch p {
	case PolicyBlock:
		return "block"
	default:
		return "drop"
	}
}

// ParsePolicy maps a config string onto a Policy
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "drop":
		return PolicyDrop, true
	case "block":
		return PolicyBlock, true
	}
	return PolicyDrop, false
}

// Options configures a Queue
type Options struct {
	Capacity     int
	Policy       Policy
	BlockTimeout time.Duration
}

// Stats is a snapshot of queue counters
type Stats struct {
	Pushed   uint64
	Dropped  uint64
	Pending  int
	Capacity int
}

// Queue is a bounded FIFO of packed key events
type Queue struct {
	buf     chan keys.Packed
	notify  chan struct{}
	done    chan struct{}
	policy  Policy
	timeout time.Duration

	pushed  atomic.Uint64
	dropped atomic.Uint64

	closeOnce sync.Once
}

// New creates a queue. Zero options give the firmware defaults.
func New(opts Options) *Queue {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.BlockTimeout <= 0 {
		opts.BlockTimeout = DefaultBlockTimeout
	}
	return &Queue{
		buf:     make(chan keys.Packed, opts.Capacity),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		policy:  opts.Policy,
		timeout: opts.BlockTimeout,
	}
}

// TryPush enqueues without waiting. A false return is counted as a drop.
func (q *Queue) TryPush(ev keys.Event) bool {
	if q.tryPush(keys.Pack(ev)) {
		return true
	}
	q.dropped.Add(1)
	return false
}

// Push enqueues according to the overflow policy
func (q *Queue) Push(ev keys.Event) bool {
	p := keys.Pack(ev)
	if q.tryPush(p) {
		return true
	}
	if q.policy != PolicyBlock || q.closed() {
		q.dropped.Add(1)
		return false
	}

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()
	select {
	case q.buf <- p:
		q.pushed.Add(1)
		q.signal()
		return true
	case <-timer.C:
	case <-q.done:
	}
	q.dropped.Add(1)
	return false
}

func (q *Queue) tryPush(p keys.Packed) bool {
	if q.closed() {
		return false
	}
	select {
	case q.buf <- p:
		q.pushed.Add(1)
		q.signal()
		return true
	default:
		return false
	}
}

// signal raises the coalesced "data available" flag
func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop blocks until an event is available. It returns false once the queue
// has been closed and fully drained.
func (q *Queue) Pop() (keys.Event, bool) {
	select {
	case p := <-q.buf:
		return keys.Unpack(p), true
	case <-q.done:
		return q.TryPop()
	}
}

// TryPop returns the oldest event without waiting
func (q *Queue) TryPop() (keys.Event, bool) {
	select {
	case p := <-q.buf:
		return keys.Unpack(p), true
	default:
		return keys.Event{}, false
	}
}

// HasPending returns true if at least one event is queued
func (q *Queue) HasPending() bool {
	return len(q.buf) > 0
}

// Notify fires after pushes. Several pushes may collapse into one signal, so
// a receiver must drain with TryPop until it reports empty.
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

// Done is closed by Close
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Close stops accepting events. Queued events can still be popped.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func (q *Queue) closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Stats returns the current counters
func (q *Queue) Stats() Stats {
	return Stats{
		Pushed:   q.pushed.Load(),
		Dropped:  q.dropped.Load(),
		Pending:  len(q.buf),
		Capacity: cap(q.buf),
	}
}
