package event

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/webwire/internal/errors"
)

const (
	// DefaultMaxDepth is the pending-event limit past which a consumer is
	// assumed to be broken.
	DefaultMaxDepth = 100000
	// ExitOverflow is the process status of the default overflow func.
	ExitOverflow = 2
	// DefaultWait is how long Dequeue blocks before returning the null event.
	DefaultWait = 5 * time.Millisecond
)

// OverflowFunc receives the fatal error raised when the queue is over depth.
// The default implementation writes the error to stderr and exits.
type OverflowFunc func(err error)

func exitOnOverflow(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(ExitOverflow)
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithWait sets how long Dequeue waits for an event.
func WithWait(d time.Duration) QueueOption {
	return func(q *Queue) { q.wait.Store(int64(d)) }
}

// WithMaxDepth sets the maximum number of pending events.
func WithMaxDepth(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.maxDepth = n
		}
	}
}

// WithOverflowFunc replaces the process exit on overflow. Tests use it to
// observe the fatal condition.
func WithOverflowFunc(fn OverflowFunc) QueueOption {
	return func(q *Queue) {
		if fn != nil {
			q.overflow = fn
		}
	}
}

// Queue is a bounded FIFO of events, safe for many producers and a single
// consumer. A mutex guards the items; a counting semaphore (a buffered
// channel with one token per pending event) is used only to wake the
// consumer.
type Queue struct {
	mu       sync.Mutex
	items    []Event
	signal   chan struct{}
	maxDepth int
	wait     atomic.Int64
	overflow OverflowFunc
}

// NewQueue creates an empty queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		maxDepth: DefaultMaxDepth,
		overflow: exitOnOverflow,
	}
	q.wait.Store(int64(DefaultWait))
	for _, opt := range opts {
		opt(q)
	}
	q.signal = make(chan struct{}, q.maxDepth)
	return q
}

// Enqueue appends an event and wakes one waiting consumer. It never blocks.
// Going past the maximum depth hands a FatalError to the overflow function
// and the event is dropped.
func (q *Queue) Enqueue(e Event) {
	q.mu.Lock()
	if len(q.items) >= q.maxDepth {
		depth := len(q.items)
		q.mu.Unlock()
		q.overflow(errors.NewFatalError(fmt.Sprintf("enqueue %q", e.Name()), errors.ErrQueueOverflow).WithDepth(depth))
		return
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	// Tokens never outnumber items, so the send cannot block.
	q.signal <- struct{}{}
}

// Dequeue removes and returns the front event, waiting up to the configured
// wait. On timeout it returns the null event.
func (q *Queue) Dequeue() Event {
	return q.DequeueContext(context.Background())
}

// DequeueContext is Dequeue that also gives up when ctx is done.
func (q *Queue) DequeueContext(ctx context.Context) Event {
	if !q.acquire(ctx) {
		return Null()
	}
	return q.pop()
}

// DequeueIf removes and returns the front event only if it has the given
// name. Otherwise the queue is left untouched and the null event is returned.
func (q *Queue) DequeueIf(name string) Event {
	if !q.acquire(context.Background()) {
		return Null()
	}

	q.mu.Lock()
	if q.items[0].Name() != name {
		q.mu.Unlock()
		q.signal <- struct{}{}
		return Null()
	}
	e := q.shift()
	q.mu.Unlock()
	return e
}

// Count returns the number of pending events.
func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether no events are pending.
func (q *Queue) Empty() bool {
	return q.Count() == 0
}

// SetWait changes how long Dequeue waits for an event.
func (q *Queue) SetWait(d time.Duration) {
	q.wait.Store(int64(d))
}

// Wait returns the current dequeue wait.
func (q *Queue) Wait() time.Duration {
	return time.Duration(q.wait.Load())
}

// MaxDepth returns the configured depth limit.
func (q *Queue) MaxDepth() int {
	return q.maxDepth
}

// acquire takes one token, waiting up to the configured wait.
func (q *Queue) acquire(ctx context.Context) bool {
	select {
	case <-q.signal:
		return true
	default:
	}

	wait := q.Wait()
	if wait <= 0 {
		return false
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-q.signal:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (q *Queue) pop() Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shift()
}

// shift removes the front item. Callers hold mu and a token.
func (q *Queue) shift() Event {
	e := q.items[0]
	q.items[0] = Event{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return e
}
