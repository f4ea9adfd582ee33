package app

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/webwire/internal/errors"
	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/logging"
	"github.com/Iron-Ham/webwire/internal/util"
)

// InvokeName is the event that carries closures queued with Post.
const InvokeName = "invoke"

const (
	// DefaultWait is the dispatch loop idle tick, matching dispatch.wait_ms.
	DefaultWait = 500 * time.Millisecond
	// FatalExitCode is the process status used by the default fatal func.
	FatalExitCode = event.ExitOverflow
)

// State is the dispatch loop state.
type State int32

const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota
	// StateRunning means the dispatch loop is active.
	StateRunning
	// StateStopped means the loop returned after a quit event or cancellation.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FatalFunc handles process-level errors: a second live Application, queue
// overflow, and payload contract violations inside handlers.
type FatalFunc func(err error)

// liveMu guards live, the one Application allowed at a time.
var (
	liveMu sync.Mutex
	live   *Application
)

type options struct {
	logger   *logging.Logger
	wait     time.Duration
	maxDepth int
	fatal    FatalFunc
	trace    func(name string) bool
}

// Option configures an Application.
type Option func(*options)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWait sets how long the dispatch loop waits for an event before an
// idle tick. The default is DefaultWait.
func WithWait(d time.Duration) Option {
	return func(o *options) { o.wait = d }
}

// WithMaxQueueDepth bounds the number of pending events.
func WithMaxQueueDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithFatalFunc replaces the default log-and-exit handling of fatal errors.
func WithFatalFunc(fn FatalFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.fatal = fn
		}
	}
}

// WithTrace selects the event names logged at debug on every dispatch.
// logging.EventFilter.Match is the usual argument.
func WithTrace(match func(name string) bool) Option {
	return func(o *options) { o.trace = match }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   logging.NopLogger(),
		wait:     DefaultWait,
		maxDepth: event.DefaultMaxDepth,
		trace:    func(string) bool { return false },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.trace == nil {
		o.trace = func(string) bool { return false }
	}
	if o.fatal == nil {
		logger := o.logger
		o.fatal = func(err error) {
			logger.Error("fatal", "error", err.Error(), "severity", errors.GetSeverity(err).String())
			fmt.Fprintln(os.Stderr, err)
			os.Exit(FatalExitCode)
		}
	}
	return o
}

// Application owns the routing table, the entity arena and the event queue,
// and runs the dispatch loop. At most one Application is live per process.
//
// The routing table and the arena are not locked. They may be changed before
// Run starts and, once it has, only from handlers running on the dispatch
// goroutine. Emit and Post are safe from any goroutine.
type Application struct {
	id     string
	logger *logging.Logger
	queue  *event.Queue
	fatal  FatalFunc
	trace  func(name string) bool

	state  atomic.Int32
	closed atomic.Bool

	routes   *routeTable
	entities map[event.Handle]*Entity
	handles  atomic.Uint64
	root     *Entity

	postMu  sync.Mutex
	posted  map[int]func()
	postSeq int
}

// New creates the Application. If another one is live it returns a
// *errors.FatalError wrapping errors.ErrAppAlreadyRunning.
func New(opts ...Option) (*Application, error) {
	o := buildOptions(opts)

	liveMu.Lock()
	defer liveMu.Unlock()
	if live != nil {
		return nil, errors.NewFatalError("create application", errors.ErrAppAlreadyRunning)
	}

	a := &Application{
		id:       uuid.NewString(),
		fatal:    o.fatal,
		trace:    o.trace,
		routes:   newRouteTable(),
		entities: make(map[event.Handle]*Entity),
		posted:   make(map[int]func()),
	}
	a.logger = o.logger.WithComponent("app").With("app_id", a.id)
	a.queue = event.NewQueue(
		event.WithWait(o.wait),
		event.WithMaxDepth(o.maxDepth),
		event.WithOverflowFunc(event.OverflowFunc(o.fatal)),
	)

	a.root = a.NewEntity(event.NoHandle)
	a.root.Listen(a.root.Handle(), InvokeName, a.invoke)

	live = a
	a.logger.Debug("application created", "wait", o.wait.String(), "max_depth", o.maxDepth)
	return a, nil
}

// MustNew is New with the error handed to the fatal func.
func MustNew(opts ...Option) *Application {
	a, err := New(opts...)
	if err != nil {
		buildOptions(opts).fatal(err)
		return nil
	}
	return a
}

// ID returns the instance id, a random UUID.
func (a *Application) ID() string { return a.id }

// Logger returns the application logger.
func (a *Application) Logger() *logging.Logger { return a.logger }

// Root returns the entity that owns application-level routes.
func (a *Application) Root() *Entity { return a.root }

// State reports the dispatch loop state.
func (a *Application) State() State { return State(a.state.Load()) }

// Closed reports whether Close has been called.
func (a *Application) Closed() bool { return a.closed.Load() }

// Emit enqueues an event. It is safe from any goroutine and is a no-op on a
// nil or closed Application.
func (a *Application) Emit(ev event.Event) {
	if a == nil || a.closed.Load() {
		return
	}
	a.queue.Enqueue(ev)
}

// Enqueue is Emit.
func (a *Application) Enqueue(ev event.Event) { a.Emit(ev) }

// Dequeue pops the next event, returning the null event after the wait.
func (a *Application) Dequeue() event.Event { return a.queue.Dequeue() }

// Pending returns the number of queued events.
func (a *Application) Pending() int { return a.queue.Count() }

// SetWait changes the idle tick of the dispatch loop.
func (a *Application) SetWait(d time.Duration) { a.queue.SetWait(d) }

// Quit asks the dispatch loop to return. Events queued behind the quit
// event are not delivered.
func (a *Application) Quit() {
	a.Emit(event.Quit())
}

// Post queues fn to run on the dispatch goroutine. Closures run in FIFO order
// with the other events. A closure posted while the loop is stopped waits for
// the next Run; Close discards any still pending.
func (a *Application) Post(fn func()) {
	if a == nil || fn == nil || a.closed.Load() {
		return
	}

	a.postMu.Lock()
	a.postSeq++
	id := a.postSeq
	a.posted[id] = fn
	a.postMu.Unlock()

	ev := event.New(InvokeName, a.root.Handle())
	ev.AddInt(id)
	a.Emit(ev)
}

func (a *Application) invoke(ev *event.Event) {
	id := ev.NextInt()

	a.postMu.Lock()
	fn, ok := a.posted[id]
	delete(a.posted, id)
	a.postMu.Unlock()

	if ok {
		fn()
	}
}

// Run is the dispatch loop. It returns nil once the quit event is popped and
// ctx.Err() if ctx is done first.
func (a *Application) Run(ctx context.Context) error {
	if a.closed.Load() {
		return errors.ErrAppClosed
	}
	if !a.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) &&
		!a.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return errors.NewFatalError("run dispatch loop", errors.ErrAppAlreadyRunning)
	}
	defer a.state.Store(int32(StateStopped))

	a.logger.Debug("dispatch loop started")
	for {
		if err := ctx.Err(); err != nil {
			a.logger.Debug("dispatch loop canceled", "error", err.Error())
			return err
		}

		ev := a.queue.DequeueContext(ctx)
		if ev.IsNull() {
			continue
		}
		if ev.IsQuit() {
			a.logger.Debug("dispatch loop quit", "discarded", a.queue.Count())
			return nil
		}
		a.dispatch(ev)
	}
}

// dispatch delivers a copy of ev to every destination of (sender, name) in
// insertion order.
func (a *Application) dispatch(ev event.Event) {
	key := routeKey{src: ev.Sender(), name: ev.Name()}
	dests := a.routes.destinations(key)
	if len(dests) == 0 {
		a.logRouting("unrouted event", errors.NewRoutingError("dispatch", errors.ErrNoRoute).
			WithKey(key.String()).WithEvent(ev.Name()).WithSeverity(errors.SeverityDebug))
		return
	}

	if a.trace(ev.Name()) {
		a.logger.Debug("dispatch", "event", util.LogValue(ev.String()), "destinations", len(dests))
	}

	for _, h := range dests {
		ent, ok := a.entities[h]
		if !ok {
			a.logger.Warn("route to unknown entity", "key", key.String(), "entity", h.String())
			continue
		}
		a.safeCall(ent, ev.Clone())
	}
}

// safeCall runs one delivery. A payload contract violation is fatal; any
// other panic is logged with its stack and delivery continues.
func (a *Application) safeCall(ent *Entity, ev event.Event) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if errors.IsContractViolation(r) {
			a.fatal(fmt.Errorf("handler for %q on %s: %w", ev.Name(), ent.Handle(), r.(error)))
			return
		}
		a.logger.Error("event handler panicked",
			"event", ev.Name(),
			"entity", ent.Handle().String(),
			"panic", fmt.Sprint(r),
			"stack", string(debug.Stack()))
	}()
	ent.deliver(&ev)
}

// Close destroys every remaining entity and releases the live slot so a new
// Application can be created. Call it after Run has returned.
func (a *Application) Close() {
	if a == nil || !a.closed.CompareAndSwap(false, true) {
		return
	}

	for _, ent := range a.topLevel() {
		ent.Destroy()
	}

	a.postMu.Lock()
	clear(a.posted)
	a.postMu.Unlock()

	liveMu.Lock()
	if live == a {
		live = nil
	}
	liveMu.Unlock()

	a.logger.Debug("application closed")
}

func (a *Application) topLevel() []*Entity {
	var out []*Entity
	for _, ent := range a.entities {
		if ent.parent == event.NoHandle {
			out = append(out, ent)
		}
	}
	return out
}
