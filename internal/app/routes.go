package app

import (
	"slices"

	"github.com/Iron-Ham/webwire/internal/errors"
	"github.com/Iron-Ham/webwire/internal/event"
)

type routeKey struct {
	src  event.Handle
	name string
}

func (k routeKey) String() string {
	return k.src.String() + ":" + k.name
}

type keySet map[routeKey]struct{}

// routeTable maps (source, event name) to an ordered set of destinations.
// bySource and byDest index the keys each handle appears in so an entity's
// routes can be removed without scanning the table.
type routeTable struct {
	routes   map[routeKey][]event.Handle
	bySource map[event.Handle]keySet
	byDest   map[event.Handle]keySet
}

func newRouteTable() *routeTable {
	return &routeTable{
		routes:   make(map[routeKey][]event.Handle),
		bySource: make(map[event.Handle]keySet),
		byDest:   make(map[event.Handle]keySet),
	}
}

func (t *routeTable) add(key routeKey, dst event.Handle) bool {
	dests := t.routes[key]
	if slices.Contains(dests, dst) {
		return false
	}
	t.routes[key] = append(dests, dst)
	index(t.bySource, key.src, key)
	index(t.byDest, dst, key)
	return true
}

func (t *routeTable) remove(key routeKey, dst event.Handle) error {
	dests, ok := t.routes[key]
	if !ok {
		return errors.NewRoutingError("delete route", errors.ErrNoRoute).WithKey(key.String()).WithEvent(key.name)
	}
	i := slices.Index(dests, dst)
	if i < 0 {
		return errors.NewRoutingError("delete route", errors.ErrNoObject).
			WithKey(key.String() + "->" + dst.String()).WithEvent(key.name)
	}

	dests = slices.Delete(dests, i, i+1)
	unindex(t.byDest, dst, key)
	if len(dests) == 0 {
		delete(t.routes, key)
		unindex(t.bySource, key.src, key)
		return nil
	}
	t.routes[key] = dests
	return nil
}

func (t *routeTable) contains(key routeKey, dst event.Handle) bool {
	return slices.Contains(t.routes[key], dst)
}

// destinations returns a copy so handlers may change routes during delivery.
func (t *routeTable) destinations(key routeKey) []event.Handle {
	return slices.Clone(t.routes[key])
}

func (t *routeTable) keysFor(h event.Handle) (asSource, asDest []routeKey) {
	for k := range t.bySource[h] {
		asSource = append(asSource, k)
	}
	for k := range t.byDest[h] {
		asDest = append(asDest, k)
	}
	return asSource, asDest
}

func index(idx map[event.Handle]keySet, h event.Handle, key routeKey) {
	set, ok := idx[h]
	if !ok {
		set = make(keySet)
		idx[h] = set
	}
	set[key] = struct{}{}
}

func unindex(idx map[event.Handle]keySet, h event.Handle, key routeKey) {
	set, ok := idx[h]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(idx, h)
	}
}

// AddRoute subscribes dst to events named name emitted by src. Adding an
// existing route is a no-op.
func (a *Application) AddRoute(src, dst event.Handle, name string) {
	key := routeKey{src: src, name: name}
	if a.routes.add(key, dst) {
		a.logger.Debug("route added", "key", key.String(), "dst", dst.String())
	}
}

// DelRoute removes dst from the route (src, name), dropping the route once it
// has no destinations. A missing route is logged, not returned.
func (a *Application) DelRoute(src, dst event.Handle, name string) {
	if err := a.routes.remove(routeKey{src: src, name: name}, dst); err != nil {
		a.logRouting("route not removed", err)
	}
}

// DelObject removes h from every route it appears in as a source or as a
// destination. Afterwards no route key or destination references h.
func (a *Application) DelObject(h event.Handle) {
	asSource, asDest := a.routes.keysFor(h)
	if len(asSource) == 0 && len(asDest) == 0 {
		a.logRouting("no routes to remove", errors.NewRoutingError("delete object", errors.ErrNoObject).
			WithKey(h.String()).WithSeverity(errors.SeverityDebug))
		return
	}

	for _, key := range asSource {
		for _, dst := range a.routes.destinations(key) {
			a.DelRoute(key.src, dst, key.name)
		}
	}
	for _, key := range asDest {
		if a.routes.contains(key, h) {
			a.DelRoute(key.src, h, key.name)
		}
	}
}

// Connect subscribes receiver to events named name from sender.
func (a *Application) Connect(sender event.Handle, name string, receiver event.Handle) {
	a.AddRoute(sender, receiver, name)
}

// Disconnect undoes Connect.
func (a *Application) Disconnect(sender event.Handle, name string, receiver event.Handle) {
	a.DelRoute(sender, receiver, name)
}

// Routes returns the destinations of (src, name) in delivery order.
func (a *Application) Routes(src event.Handle, name string) []event.Handle {
	return a.routes.destinations(routeKey{src: src, name: name})
}

// RouteCount returns the number of (source, name) routes.
func (a *Application) RouteCount() int {
	return len(a.routes.routes)
}

// HasKeysFor reports whether any route or index still references h.
func (a *Application) HasKeysFor(h event.Handle) bool {
	if _, ok := a.routes.bySource[h]; ok {
		return true
	}
	if _, ok := a.routes.byDest[h]; ok {
		return true
	}
	for key, dests := range a.routes.routes {
		if key.src == h || slices.Contains(dests, h) {
			return true
		}
	}
	return false
}

// logRouting logs a routing anomaly at the level its severity calls for.
func (a *Application) logRouting(msg string, err error) {
	sev := errors.GetSeverity(err)
	if sev <= errors.SeverityDebug {
		a.logger.Debug(msg, "error", err.Error(), "severity", sev.String())
		return
	}
	a.logger.Warn(msg, "error", err.Error(), "severity", sev.String())
}
