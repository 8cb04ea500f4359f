// Package backend defines the adapter contract each toolkit backend
// implements, the opaque native handle model, and the process-wide
// registry that resolves which backend drives an application run.
//
// Backends never leak native objects: a Handle is created by exactly one
// Adapter, owned by it, and released through it. Application code and the
// capability model see handles as opaque values only.
package backend

import (
	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/spec"
)

// Handle is an opaque reference to one native widget created by a backend.
// Only the owning adapter may interpret it.
type Handle interface {
	// WidgetID returns the id of the spec this handle was materialized from.
	WidgetID() string
	// Backend returns the id of the adapter that owns this handle.
	Backend() string
}

// ChildSlot is one already-materialized child in an arrangement call.
type ChildSlot struct {
	Handle Handle
	// Share is the child's normalized stretch share of the main axis.
	Share float64
}

// Arrangement tells a backend how to lay out a container's children.
// All child handles must exist before the container is arranged.
type Arrangement struct {
	// Direction is the main axis: "column", "row", or "stack".
	Direction string
	// Alignment is the cross-axis alignment: "start", "center", "end", "stretch".
	Alignment string
	// Children are the container's children in declaration order.
	Children []ChildSlot
}

// Adapter is the per-backend implementation of the capability set.
// The two shipped variants are toga.Adapter and kivy.Adapter.
type Adapter interface {
	// ID returns the backend identifier ("toga", "kivy").
	ID() string

	// Available reports whether the backend's native toolkit can be
	// initialized in this process. Probed by the registry at resolve
	// time, never at import time.
	Available() bool

	// Materialize constructs the native widget for one spec node and
	// returns its handle. It fails with a backend-unavailable error when
	// the toolkit cannot be initialized, and with an unsupported-widget
	// error when this variant cannot render the spec's kind.
	// Tree ordering and transactional cleanup are the caller's concern;
	// the layout resolver emits children before their parents.
	Materialize(s spec.WidgetSpec) (Handle, error)

	// Update applies the spec's properties to the handle in place.
	// Updates are idempotent: applying the same spec twice leaves the
	// same visible state.
	Update(h Handle, s spec.WidgetSpec) error

	// Arrange lays out a container's materialized children.
	Arrange(parent Handle, arr Arrangement) error

	// Destroy releases the handle's native resources. A handle may be
	// destroyed at most once; a second Destroy fails with an
	// already-destroyed error (see DESIGN.md for the policy decision).
	Destroy(h Handle) error

	// BindEvent attaches a native listener that forwards events of the
	// given type as toolkit-neutral payloads. property names the
	// observed property for event.Bind and is ignored otherwise.
	BindEvent(h Handle, t event.Type, property string, fn event.Handler) (*event.Binding, error)

	// HandleCount returns the number of live (materialized, not yet
	// destroyed) handles owned by this adapter. Used to verify that
	// teardown leaves no residual native objects.
	HandleCount() int

	// RunLoop hands control to the backend's native event loop and
	// blocks the calling goroutine until the loop exits.
	RunLoop() error

	// StopLoop requests the native event loop to exit. Safe to call
	// from any goroutine.
	StopLoop()

	// Post schedules fn on the loop thread. All backend handle mutation
	// must happen there; background work posts its results through this.
	// It reports false when the loop is not running.
	Post(fn func()) bool
}
