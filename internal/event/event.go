package event

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/Iron-Ham/webwire/internal/errors"
	"github.com/Iron-Ham/webwire/internal/variant"
)

// Reserved event names understood by the kernel itself.
const (
	// NullName is carried by the sentinel returned when a queue wait times out.
	NullName = "null-event"
	// QuitName stops the dispatch loop. It is never delivered to subscribers.
	QuitName = "application-quit"
	// DeleteLaterName asks an entity to destroy itself on the dispatcher goroutine.
	DeleteLaterName = "delete-later"
)

// Handle identifies an entity. The zero Handle means "no entity".
type Handle uint64

// NoHandle is the zero handle, used as the sender of kernel-originated events.
const NoHandle Handle = 0

// String renders the handle for route keys and logs.
func (h Handle) String() string {
	if h == NoHandle {
		return "nil"
	}
	return fmt.Sprintf("#%d", uint64(h))
}

// seq is the process-wide event sequence counter.
var seq atomic.Uint64

// Event is a named, sender-tagged message with an ordered payload.
//
// Payload extraction rotates rather than consumes: Next returns the front
// value and moves it to the back, so a fixed-size payload can be read
// through in order any number of times without shrinking. Handlers that
// decode a payload in several steps rely on this.
//
// Events are values. Copies share the payload backing array until one of
// them appends; Add always reallocates, and Clone gives a fully independent
// copy with its own read position.
type Event struct {
	name    string
	sender  Handle
	seq     uint64
	payload []variant.Value
	head    int
}

// New creates an event and stamps it with a fresh sequence number.
func New(name string, sender Handle) Event {
	return Event{
		name:   name,
		sender: sender,
		seq:    seq.Add(1),
	}
}

// Null returns the sentinel event returned by a timed-out dequeue.
func Null() Event {
	return New(NullName, NoHandle)
}

// Quit returns the event that stops a dispatch loop.
func Quit() Event {
	return New(QuitName, NoHandle)
}

// Name returns the event name.
func (e Event) Name() string { return e.name }

// Sender returns the handle of the entity that emitted the event.
func (e Event) Sender() Handle { return e.sender }

// Seq returns the sequence number. It is only meaningful for ordering
// assertions and diagnostics, never for routing.
func (e Event) Seq() uint64 { return e.seq }

// Is reports whether the event carries the given name.
func (e Event) Is(name string) bool { return e.name == name }

// IsNull reports whether this is the timeout sentinel.
func (e Event) IsNull() bool { return e.name == NullName }

// IsQuit reports whether this is the quit event.
func (e Event) IsQuit() bool { return e.name == QuitName }

// Len returns the number of payload values.
func (e Event) Len() int { return len(e.payload) }

// Add appends a payload value after the last one in the current read order.
func (e *Event) Add(v variant.Value) *Event {
	if e.head != 0 {
		e.payload = e.rotated()
		e.head = 0
	}
	e.payload = append(slices.Clip(e.payload), v)
	return e
}

// AddInt appends an integer payload value.
func (e *Event) AddInt(v int) *Event { return e.Add(variant.Int(v)) }

// AddBool appends a boolean payload value.
func (e *Event) AddBool(v bool) *Event { return e.Add(variant.Bool(v)) }

// AddDouble appends a floating point payload value.
func (e *Event) AddDouble(v float64) *Event { return e.Add(variant.Double(v)) }

// AddString appends a string payload value.
func (e *Event) AddString(v string) *Event { return e.Add(variant.String(v)) }

// AddFile appends a file handle payload value.
func (e *Event) AddFile(f *os.File) *Event { return e.Add(variant.File(f)) }

// AddRef appends a borrowed string pointer payload value.
func (e *Event) AddRef(p *string) *Event { return e.Add(variant.Ref(p)) }

// Next returns the front payload value and rotates it to the back.
// It panics with a ContractError if the payload is empty.
func (e *Event) Next() variant.Value {
	if len(e.payload) == 0 {
		panic(errors.NewContractError(fmt.Sprintf("read payload of %q", e.name), errors.ErrPayloadEmpty))
	}
	v := e.payload[e.head]
	e.head = (e.head + 1) % len(e.payload)
	return v
}

// NextInt reads the next value as an integer.
func (e *Event) NextInt() int { return e.Next().AsInt() }

// NextBool reads the next value as a boolean.
func (e *Event) NextBool() bool { return e.Next().AsBool() }

// NextDouble reads the next value as a float.
func (e *Event) NextDouble() float64 { return e.Next().AsDouble() }

// NextString reads the next value as a string.
func (e *Event) NextString() string { return e.Next().AsString() }

// NextFile reads the next value as a file handle.
func (e *Event) NextFile() *os.File { return e.Next().AsFile() }

// NextRef reads the next value as a borrowed string pointer.
func (e *Event) NextRef() *string { return e.Next().AsRef() }

// Payload returns a copy of the payload in current read order.
func (e Event) Payload() []variant.Value {
	return e.rotated()
}

// Clone returns a deep copy of the event, including its read position.
func (e Event) Clone() Event {
	c := e
	c.payload = slices.Clone(e.payload)
	return c
}

// String renders the event for logs.
func (e Event) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[%d] from %s", e.name, e.seq, e.sender)
	if len(e.payload) > 0 {
		parts := make([]string, 0, len(e.payload))
		for _, v := range e.rotated() {
			parts = append(parts, v.String())
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))
	}
	return sb.String()
}

func (e Event) rotated() []variant.Value {
	if len(e.payload) == 0 {
		return nil
	}
	out := make([]variant.Value, 0, len(e.payload))
	out = append(out, e.payload[e.head:]...)
	out = append(out, e.payload[:e.head]...)
	return out
}
