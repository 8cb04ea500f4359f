package event

import (
	"reflect"
	"sync"

	"github.com/go-mosf/mosf/pkg/errors"
)

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// Event declares that the widget with the given id wants its events of
// the given type handled by a service. Applications register these in a
// Registry before the app starts; the runtime wires them to native
// listeners when the tree is materialized.
type Event struct {
	// WidgetID is the stable id of the widget to bind.
	WidgetID string
	// Type is the event kind to listen for.
	Type Type
	// Service handles the event.
	Service Service
	// PropertyName names the observed property for Bind-type events.
	PropertyName string
	// Args are extra arguments delivered to the service on every dispatch.
	Args Args
	// Callback, if set, receives the service's result.
	Callback Callback
}

// Registry stores the event declarations for one application run.
//
// The zero value is not usable; create registries with NewRegistry.
// Tests construct fresh instances instead of sharing process state.
type Registry struct {
	mu     sync.RWMutex
	events map[string]Event
}

// NewRegistry creates an empty event registry.
func NewRegistry() *Registry {
	return &Registry{events: make(map[string]Event)}
}

// BindEvent records an event declaration, replacing any previous
// declaration for the same widget id.
func (r *Registry) BindEvent(ev Event) error {
	if ev.WidgetID == "" {
		return errors.New("event.Registry.BindEvent", errors.KindServiceArgument,
			"event declaration needs a widget id")
	}
	if ev.Type == Bind && ev.PropertyName == "" {
		return errors.New("event.Registry.BindEvent", errors.KindServiceArgument,
			"widget %q asked for a property binding without a property name", ev.WidgetID)
	}
	r.mu.Lock()
	r.events[ev.WidgetID] = ev
	r.mu.Unlock()
	return nil
}

// Lookup returns the declaration for a widget id.
func (r *Registry) Lookup(widgetID string) (Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[widgetID]
	return ev, ok
}

// Events returns a snapshot of all declarations.
func (r *Registry) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev)
	}
	return out
}

// OnExit notifies every registered service that the app is exiting.
func (r *Registry) OnExit() {
	for _, ev := range r.Events() {
		if ev.Service != nil {
			ev.Service.OnExit()
		}
	}
}

// Dispatcher routes raised events to their services.
//
// Synchronous services run inline on the calling (loop) thread. Async
// services run on a background goroutine; their callback results are
// marshalled back onto the loop thread through the post function, so no
// service ever touches backend handles off the loop thread.
type Dispatcher struct {
	registry *Registry
	// post schedules fn on the loop thread. Set by the app runtime.
	post func(fn func())
}

// NewDispatcher creates a dispatcher over the given registry.
// post schedules work on the loop thread; it must not be nil.
func NewDispatcher(registry *Registry, post func(fn func())) *Dispatcher {
	return &Dispatcher{registry: registry, post: post}
}

// Dispatch delivers one payload to the service bound to its source widget.
// Unbound events are ignored. Panics inside services are recovered and
// reported so one faulty handler cannot take down the loop.
func (d *Dispatcher) Dispatch(p Payload) error {
	ev, ok := d.registry.Lookup(p.WidgetID)
	if !ok || ev.Service == nil {
		return nil
	}
	args, err := ev.Args.resolve()
	if err != nil {
		return err
	}

	if _, async := ev.Service.(AsyncService); async {
		go d.run(ev, p, args, true)
		return nil
	}
	d.run(ev, p, args, false)
	return nil
}

func (d *Dispatcher) run(ev Event, p Payload, args Args, marshalResult bool) {
	defer func() {
		if r := recover(); r != nil {
			errors.Recover("event.Dispatcher.Dispatch", r)
		}
	}()

	cb := ev.Callback
	if cb != nil && marshalResult {
		userCB := cb
		cb = func(result any) {
			d.post(func() { userCB(result) })
		}
	}
	if err := ev.Service.HandleEvent(p, args, cb); err != nil {
		errors.Report(&errors.Error{
			Op:     "event.Dispatcher.Dispatch",
			Kind:   errors.KindOf(err),
			Err:    err,
			Widget: p.WidgetID,
		})
	}
}
