// Package event defines toolkit-neutral UI events: the event type
// vocabulary, payloads delivered to application callbacks, and binding
// records that associate widgets with the services handling their events.
//
// Bindings are explicit records looked up by widget id. There is no hidden
// per-toolkit listener table; backends raise native events into a Dispatcher
// which forwards them to registered services on the loop thread.
package event

import "sync/atomic"

// Type identifies a toolkit-neutral event kind.
type Type string

const (
	OnPress     Type = "on_press"
	OnRelease   Type = "on_release"
	OnChange    Type = "on_change"
	OnTouchDown Type = "on_touch_down"
	OnTouchMove Type = "on_touch_move"
	OnTouchUp   Type = "on_touch_up"
	// Bind subscribes to a named widget property instead of a discrete
	// event. Kivy exposes these as property bindings; Toga folds them
	// into change handlers. Bindings of this type require a property name.
	Bind Type = "bind"
)

// Types returns every supported event type in a stable order.
func Types() []Type {
	return []Type{OnPress, OnRelease, OnChange, OnTouchDown, OnTouchMove, OnTouchUp, Bind}
}

// Payload is the toolkit-neutral description of one raised event.
type Payload struct {
	// Type is the event kind that fired.
	Type Type
	// WidgetID identifies the source widget.
	WidgetID string
	// Value carries the event's data, if any (new text for OnChange,
	// the bound property's value for Bind, nil for press events).
	Value any
}

// Handler receives toolkit-neutral event payloads.
type Handler func(Payload)

// Binding associates one widget id with an event type and a handler.
// Bindings are created by backend adapters and owned by the app runtime.
type Binding struct {
	// WidgetID is the stable identity of the bound widget.
	WidgetID string
	// Type is the bound event kind.
	Type Type
	// PropertyName names the observed property for Bind-type bindings.
	PropertyName string
	// Handler is invoked with the payload on the loop thread.
	Handler Handler

	canceled atomic.Bool
	onCancel func()
}

// NewBinding creates an active binding. onCancel, if non-nil, runs once
// when the binding is canceled (backends use it to detach the native listener).
func NewBinding(widgetID string, t Type, property string, h Handler, onCancel func()) *Binding {
	return &Binding{
		WidgetID:     widgetID,
		Type:         t,
		PropertyName: property,
		Handler:      h,
		onCancel:     onCancel,
	}
}

// Cancel detaches the binding. Safe to call more than once.
func (b *Binding) Cancel() {
	if b.canceled.CompareAndSwap(false, true) && b.onCancel != nil {
		b.onCancel()
	}
}

// IsCanceled reports whether Cancel has been called.
func (b *Binding) IsCanceled() bool {
	return b.canceled.Load()
}

// Deliver invokes the handler unless the binding has been canceled.
func (b *Binding) Deliver(p Payload) {
	if b.canceled.Load() || b.Handler == nil {
		return
	}
	b.Handler(p)
}
