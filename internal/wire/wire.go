// Package wire runs a webwire application on its own dispatch goroutine and
// exposes it to a host through a small blocking API: send command lines,
// then poll or subscribe for the event and log items they produce.
package wire

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/webwire/internal/app"
	"github.com/Iron-Ham/webwire/internal/errors"
	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/handler"
	"github.com/Iron-Ham/webwire/internal/logging"
)

// InvalidResponse is returned by Command on a wire that is not valid.
const InvalidResponse = "NOK::INVALID HANDLE"

// Item queue event names.
const (
	logItemName   = "wire-log"
	eventItemName = "wire-event"
)

// startedKind and startedMessage form the first log item of every wire.
const (
	startedKind    = "LOG"
	startedMessage = "WebWire Handler Started"
)

// destroyWait bounds how long Destroy waits for the loop to honour quit.
const destroyWait = time.Second

// ItemKind tells what Get returned.
type ItemKind int

const (
	// ItemNull means nothing arrived before the wait ran out.
	ItemNull ItemKind = iota
	// ItemEvent carries an EVENT line in Item.Event.
	ItemEvent
	// ItemLog carries a log line in Item.LogKind and Item.Message.
	ItemLog
	// ItemInvalid means the wire is not valid.
	ItemInvalid
)

func (k ItemKind) String() string {
	switch k {
	case ItemNull:
		return "null"
	case ItemEvent:
		return "event"
	case ItemLog:
		return "log"
	case ItemInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Item is one event or log line produced by the wire.
type Item struct {
	Kind    ItemKind
	Event   string
	LogKind string
	Message string
}

// Status describes whether a wire can be used.
type Status int

const (
	// StatusValid means the wire accepts commands.
	StatusValid Status = iota
	// StatusNeedsDestroying means the application stopped (exit command or
	// end of input) and Destroy must still be called.
	StatusNeedsDestroying
	// StatusDestroyed means Destroy has run.
	StatusDestroyed
	// StatusNull is reported for a nil wire.
	StatusNull
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid webwire handle"
	case StatusNeedsDestroying:
		return "handle invalidated by exit, still needs destroying"
	case StatusDestroyed:
		return "probably destroyed handle"
	case StatusNull:
		return "invalid handle, null pointer"
	default:
		return "invalid handle, unknown cause"
	}
}

// EventFunc receives event items once handlers are installed.
type EventFunc func(evt string)

// LogFunc receives log items once handlers are installed.
type LogFunc func(kind, msg string)

// Options configures New. The zero value is usable.
type Options struct {
	// Logger receives structured diagnostics. Defaults to a no-op logger.
	Logger *logging.Logger
	// Level is the initial handler log level name. Defaults to info.
	Level string
	// LogFile, when set, receives a copy of every log line.
	LogFile io.Writer
	// DispatchWait is the dispatch loop idle tick.
	DispatchWait time.Duration
	// ItemWait is how long Get waits for an item.
	ItemWait time.Duration
	// MaxQueueDepth bounds both the application and the item queue.
	MaxQueueDepth int
	// Trace selects event names logged at debug by the dispatcher.
	Trace func(name string) bool
	// Fatal replaces the default log-and-exit handling of fatal errors.
	Fatal app.FatalFunc
}

// Wire owns an Application, its protocol handler and the dispatch goroutine.
type Wire struct {
	app     *app.Application
	handler *handler.Handler
	items   *event.Queue
	logger  *logging.Logger

	mu     sync.Mutex
	evt    EventFunc
	log    LogFunc
	signal func(count int)

	cancel    context.CancelFunc
	done      chan struct{}
	runErr    error
	exited    atomic.Bool
	destroyed atomic.Bool
}

// New creates the application and handler and starts dispatching. It fails
// when another Application is alive in the process.
func New(opts Options) (*Wire, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	level := handler.LevelInfo
	if opts.Level != "" {
		l, ok := handler.ParseLevel(opts.Level)
		if !ok {
			return nil, errors.NewValidationError("unknown log level").WithField("level").WithValue(opts.Level)
		}
		level = l
	}

	appOpts := []app.Option{app.WithLogger(logger)}
	if opts.DispatchWait > 0 {
		appOpts = append(appOpts, app.WithWait(opts.DispatchWait))
	}
	if opts.MaxQueueDepth > 0 {
		appOpts = append(appOpts, app.WithMaxQueueDepth(opts.MaxQueueDepth))
	}
	if opts.Trace != nil {
		appOpts = append(appOpts, app.WithTrace(opts.Trace))
	}
	if opts.Fatal != nil {
		appOpts = append(appOpts, app.WithFatalFunc(opts.Fatal))
	}

	a, err := app.New(appOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create wire")
	}

	w := &Wire{
		app:    a,
		logger: logger.WithComponent("wire").With("app_id", a.ID()),
		done:   make(chan struct{}),
	}

	queueOpts := []event.QueueOption{
		event.WithOverflowFunc(func(err error) {
			w.logger.Error("item queue overflow, item dropped", "error", err.Error())
		}),
	}
	if opts.ItemWait > 0 {
		queueOpts = append(queueOpts, event.WithWait(opts.ItemWait))
	}
	if opts.MaxQueueDepth > 0 {
		queueOpts = append(queueOpts, event.WithMaxDepth(opts.MaxQueueDepth))
	}
	w.items = event.NewQueue(queueOpts...)

	hopts := []handler.Option{
		handler.WithSinks(w.onEvent, w.onLog),
		handler.WithLevel(level),
		handler.WithLogger(logger),
	}
	if opts.LogFile != nil {
		hopts = append(hopts, handler.WithLogFile(opts.LogFile))
	}
	w.handler = handler.New(a, event.NoHandle, hopts...)

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.dispatch(ctx)

	w.onLog(startedKind, startedMessage)
	w.logger.Info("wire started")
	return w, nil
}

func (w *Wire) dispatch(ctx context.Context) {
	defer close(w.done)
	w.runErr = w.app.Run(ctx)
	w.exited.Store(true)
	w.logger.Debug("dispatch goroutine finished")
}

// Status reports whether the wire can be used.
func (w *Wire) Status() Status {
	switch {
	case w == nil:
		return StatusNull
	case w.destroyed.Load():
		return StatusDestroyed
	case w.exited.Load():
		return StatusNeedsDestroying
	default:
		return StatusValid
	}
}

// Command runs line on the dispatch goroutine and returns the joined
// OK/NOK responses. Diagnostics arrive as ERR log items.
func (w *Wire) Command(line string) string {
	if w.Status() != StatusValid {
		return InvalidResponse
	}

	result := make(chan string, 1)
	w.app.Post(func() {
		result <- w.handler.ProcessInput(line)
	})

	select {
	case r := <-result:
		return r
	case <-w.done:
		select {
		case r := <-result:
			return r
		default:
			return InvalidResponse
		}
	}
}

// Items returns the number of queued items, or 0 on an invalid wire.
func (w *Wire) Items() int {
	if w.Status() != StatusValid {
		return 0
	}
	return w.items.Count()
}

// Get removes the next item, waiting up to the item wait. It returns an
// ItemNull item when nothing arrived and ItemInvalid on an invalid wire.
func (w *Wire) Get(ctx context.Context) Item {
	if w.Status() != StatusValid {
		return Item{Kind: ItemInvalid}
	}

	ev := w.items.DequeueContext(ctx)
	switch {
	case ev.Is(eventItemName):
		return Item{Kind: ItemEvent, Event: ev.NextString()}
	case ev.Is(logItemName):
		return Item{Kind: ItemLog, LogKind: ev.NextString(), Message: ev.NextString()}
	default:
		return Item{Kind: ItemNull}
	}
}

// SetHandlers delivers items to callbacks instead of the item queue. Both
// must be set, or both nil to go back to queueing. Items already queued are
// handed to the new callbacks first, on the caller's goroutine; later items
// arrive on the dispatch goroutine. Callbacks always run with the wire's
// lock held, so they must not call SetHandlers or SetSignaller.
func (w *Wire) SetHandlers(evt EventFunc, log LogFunc) error {
	if (evt == nil) != (log == nil) {
		return errors.NewValidationError("event and log handlers must be set together").WithField("handlers")
	}
	if w.Status() != StatusValid {
		return errors.Wrap(errors.ErrInvalidHandle, w.Status().String())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.evt, w.log = evt, log
	if evt == nil {
		return nil
	}

	// Producers take mu too, so nothing is queued while draining.
	for w.items.Count() > 0 {
		ev := w.items.Dequeue()
		switch {
		case ev.Is(eventItemName):
			evt(ev.NextString())
		case ev.Is(logItemName):
			log(ev.NextString(), ev.NextString())
		default:
			return nil
		}
	}
	return nil
}

// SetSignaller installs fn, called with the queued item count each time an
// item is queued. Pass nil to remove it.
func (w *Wire) SetSignaller(fn func(count int)) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.signal = fn
	w.mu.Unlock()
}

func (w *Wire) onEvent(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.evt != nil {
		w.evt(msg)
		return
	}
	ev := event.New(eventItemName, event.NoHandle)
	ev.AddString(msg)
	w.queue(ev)
}

func (w *Wire) onLog(kind, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.log != nil {
		w.log(kind, msg)
		return
	}
	ev := event.New(logItemName, event.NoHandle)
	ev.AddString(kind).AddString(msg)
	w.queue(ev)
}

// queue adds an item and signals. Callers hold mu.
func (w *Wire) queue(ev event.Event) {
	w.items.Enqueue(ev)
	if w.signal != nil {
		w.signal(w.items.Count())
	}
}

// Destroy stops the dispatch goroutine if it is still running, destroys all
// entities and releases the application slot. It is safe to call twice.
func (w *Wire) Destroy() {
	if w == nil || !w.destroyed.CompareAndSwap(false, true) {
		return
	}

	if !w.exited.Load() {
		w.app.Quit()
	}
	select {
	case <-w.done:
	case <-time.After(destroyWait):
		err := errors.NewTimeoutError("waiting for dispatch loop to quit", destroyWait)
		w.logger.Warn("canceling dispatch loop", "error", err.Error())
		w.cancel()
		<-w.done
	}
	w.cancel()

	w.app.Close()
	w.logger.Info("wire destroyed", "run_error", errString(w.runErr))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
