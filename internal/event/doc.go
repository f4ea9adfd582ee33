// Package event provides the messages that flow through the webwire kernel
// and the queue that carries them to the dispatcher.
//
// # Main Types
//
//   - [Event]: a named, sender-tagged message with an ordered payload of
//     [variant.Value]s and a process-wide sequence number
//   - [Handle]: the identity of an entity, used as the event sender and as
//     the key of routes
//   - [Queue]: a bounded FIFO safe for many producers and one consumer, with
//     a timed pop that returns the null event on timeout
//
// # Reserved Names
//
//   - null-event: returned by a timed-out dequeue, never routed
//   - application-quit: stops the dispatch loop, never delivered
//   - delete-later: every entity is subscribed to its own delete-later event
//
// # Payload Reads
//
// Reading a payload rotates it: the front value is returned and moved to the
// back. Three reads of a three-value payload return the values in order and
// leave the payload as it was.
//
//	e := event.New("readline-error", reader)
//	e.AddInt(5).AddString("input/output error")
//
//	code := e.NextInt()
//	msg := e.NextString()
//
// # Thread Safety
//
// Events are values and are not shared between goroutines once enqueued.
// [Queue] is safe for concurrent Enqueue from any number of goroutines while
// exactly one goroutine calls Dequeue.
package event
