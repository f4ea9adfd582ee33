// Package app is the webwire event-routing kernel: the routing table, the
// entity arena and the dispatch loop.
//
// Any goroutine may emit an event. Exactly one goroutine runs
// [Application.Run], which pops events in FIFO order and, for each, calls the
// handler of every entity subscribed to (sender, event name), one after the
// other, each with its own copy of the event. Handlers that emit events only
// queue them; delivery never recurses.
//
//	a, err := app.New(app.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	src := a.NewEntity(event.NoHandle)
//	dst := a.NewEntity(event.NoHandle)
//	dst.Listen(src.Handle(), "timeout", func(ev *event.Event) {
//	    fmt.Println("timer", ev.NextString())
//	})
//
//	src.Emit("timeout", variant.String("close-timer"))
//	a.Quit()
//	_ = a.Run(ctx)
//
// # Lifecycle
//
// Entities live in the Application's arena under a stable [event.Handle].
// Destroying one runs its destroy hooks, destroys its children, detaches it
// from its parent and removes every route that names it. Every entity is
// subscribed to its own delete-later event, so [Entity.DeleteLater] defers
// destruction to the dispatch goroutine.
//
// # Errors
//
// A second live Application, queue overflow and payload contract violations
// inside handlers go to the fatal func, which by default logs and exits.
// Unrouted events, missing routes and other handler panics are logged and
// the loop continues.
package app
