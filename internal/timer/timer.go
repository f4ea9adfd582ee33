// Package timer provides an entity that emits a "timeout" event at a fixed
// interval from its own goroutine.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/Iron-Ham/webwire/internal/app"
	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/variant"
)

// TimeoutName is emitted on every expiry with the timer name as payload.
const TimeoutName = "timeout"

// minInterval keeps a zero or negative interval from spinning.
const minInterval = time.Millisecond

// Timer is an entity whose goroutine emits TimeoutName. Destroying the
// entity stops the goroutine.
type Timer struct {
	*app.Entity
	name string

	mu       sync.Mutex
	interval time.Duration
	single   bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a stopped timer entity under parent.
func New(a *app.Application, parent event.Handle, name string) *Timer {
	t := &Timer{
		Entity: a.NewEntity(parent),
		name:   name,
	}
	t.OnDestroy(t.Stop)
	return t
}

// Name returns the name carried by every timeout event.
func (t *Timer) Name() string { return t.name }

// Interval returns the current interval.
func (t *Timer) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// SetInterval changes the interval used by the next Start.
func (t *Timer) SetInterval(d time.Duration) {
	t.mu.Lock()
	t.interval = d
	t.mu.Unlock()
}

// SetSingleShot makes the next Start fire once and stop.
func (t *Timer) SetSingleShot(single bool) {
	t.mu.Lock()
	t.single = single
	t.mu.Unlock()
}

// SingleShot reports whether the timer fires only once.
func (t *Timer) SingleShot() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.single
}

// Running reports whether the goroutine is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Start sets the interval and (re)starts the timer.
func (t *Timer) Start(d time.Duration) {
	t.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.interval = d
	if d < minInterval {
		d = minInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.run(ctx, done, d, t.single)
}

func (t *Timer) run(ctx context.Context, done chan struct{}, d time.Duration, single bool) {
	defer close(done)

	tick := time.NewTicker(d)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.Emit(TimeoutName, variant.String(t.name))
			if single {
				return
			}
		}
	}
}

// Stop cancels the goroutine and waits for it to exit. Stopping a stopped
// timer is a no-op.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
