package app

import (
	"slices"

	"github.com/Iron-Ham/webwire/internal/event"
	"github.com/Iron-Ham/webwire/internal/variant"
)

// HandlerFunc handles one delivered event. The event is the destination's
// own copy, so reading its payload does not affect other destinations.
type HandlerFunc func(ev *event.Event)

// Entity is a routable participant. It lives in its Application's arena under
// a stable Handle, may have a parent, and owns its children: destroying an
// entity destroys its children first.
//
// Entities are not safe for concurrent use. Mutate them before Run or from
// handlers on the dispatch goroutine.
type Entity struct {
	app       *Application
	handle    event.Handle
	parent    event.Handle
	children  []event.Handle
	handlers  map[string]HandlerFunc
	fallback  HandlerFunc
	onDestroy []func()
	props     map[string]variant.Value
	destroyed bool
}

// NewEntity registers a new entity, subscribes it to its own delete-later
// event, and attaches it to parent when parent is not event.NoHandle.
func (a *Application) NewEntity(parent event.Handle) *Entity {
	e := &Entity{
		app:      a,
		handle:   event.Handle(a.handles.Add(1)),
		handlers: make(map[string]HandlerFunc),
		props:    make(map[string]variant.Value),
	}
	a.entities[e.handle] = e
	a.AddRoute(e.handle, e.handle, event.DeleteLaterName)

	if parent != event.NoHandle {
		if p, ok := a.entities[parent]; ok {
			e.parent = parent
			p.addChild(e.handle)
		} else {
			a.logger.Warn("parent not found", "entity", e.handle.String(), "parent", parent.String())
		}
	}
	return e
}

// Entity looks up a live entity by handle.
func (a *Application) Entity(h event.Handle) (*Entity, bool) {
	e, ok := a.entities[h]
	return e, ok
}

// EntityCount returns the number of live entities, the root included.
func (a *Application) EntityCount() int {
	return len(a.entities)
}

// Handle returns the entity's identity.
func (e *Entity) Handle() event.Handle { return e.handle }

// Parent returns the parent handle, or event.NoHandle.
func (e *Entity) Parent() event.Handle { return e.parent }

// Children returns the child handles in attach order.
func (e *Entity) Children() []event.Handle { return slices.Clone(e.children) }

// App returns the owning Application.
func (e *Entity) App() *Application { return e.app }

// Destroyed reports whether Destroy has run.
func (e *Entity) Destroyed() bool { return e.destroyed }

// On sets the handler for events named name, whatever their sender.
// Routes are set up separately with Connect or Listen.
func (e *Entity) On(name string, fn HandlerFunc) {
	if fn == nil {
		delete(e.handlers, name)
		return
	}
	e.handlers[name] = fn
}

// Listen connects the entity to (sender, name) and sets its handler.
func (e *Entity) Listen(sender event.Handle, name string, fn HandlerFunc) {
	e.On(name, fn)
	e.app.Connect(sender, name, e.handle)
}

// SetFallback sets the handler for delivered events that have no handler
// of their own.
func (e *Entity) SetFallback(fn HandlerFunc) { e.fallback = fn }

// OnDestroy registers fn to run when the entity is destroyed, before its
// children. Hooks run in reverse registration order.
func (e *Entity) OnDestroy(fn func()) {
	if fn != nil {
		e.onDestroy = append(e.onDestroy, fn)
	}
}

func (e *Entity) deliver(ev *event.Event) {
	if e.destroyed {
		return
	}
	if fn, ok := e.handlers[ev.Name()]; ok {
		fn(ev)
		return
	}
	if ev.Is(event.DeleteLaterName) && ev.Sender() == e.handle {
		e.Destroy()
		return
	}
	if e.fallback != nil {
		e.fallback(ev)
	}
}

// Emit sends an event from this entity. It is a no-op when the entity has no
// live Application.
func (e *Entity) Emit(name string, payload ...variant.Value) {
	if e == nil || e.app == nil {
		return
	}
	ev := event.New(name, e.handle)
	for _, v := range payload {
		ev.Add(v)
	}
	e.app.Emit(ev)
}

// DeleteLater asks for the entity to be destroyed on the dispatch goroutine.
func (e *Entity) DeleteLater() {
	e.Emit(event.DeleteLaterName)
}

// Destroy tears the entity down: destroy hooks, then every child (with its
// parent link cleared first), then unlinking from the parent, then removal
// of all its routes and its arena slot. Calling it again is a no-op.
func (e *Entity) Destroy() {
	if e == nil || e.destroyed {
		return
	}
	e.destroyed = true
	a := e.app

	for _, fn := range slices.Backward(e.onDestroy) {
		fn()
	}
	e.onDestroy = nil

	for _, h := range slices.Clone(e.children) {
		if c, ok := a.entities[h]; ok {
			c.parent = event.NoHandle
			c.Destroy()
		}
	}
	e.children = nil

	if p, ok := a.entities[e.parent]; ok {
		p.removeChild(e.handle)
	}
	e.parent = event.NoHandle

	a.DelObject(e.handle)
	delete(a.entities, e.handle)
}

func (e *Entity) addChild(h event.Handle) {
	e.removeChild(h)
	e.children = append(e.children, h)
}

func (e *Entity) removeChild(h event.Handle) {
	if i := slices.Index(e.children, h); i >= 0 {
		e.children = slices.Delete(e.children, i, i+1)
	}
}

// SetProperty stores a value in the property bag. The last write wins.
func (e *Entity) SetProperty(key string, v variant.Value) {
	e.props[key] = v
}

// Property returns a stored value.
func (e *Entity) Property(key string) (variant.Value, bool) {
	v, ok := e.props[key]
	return v, ok
}

// HasProperty reports whether key is set.
func (e *Entity) HasProperty(key string) bool {
	_, ok := e.props[key]
	return ok
}
