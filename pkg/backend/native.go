package backend

import (
	"sync"
	"sync/atomic"

	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/spec"
)

// Translator supplies the toolkit-specific vocabulary for a driver-backed
// adapter: which kinds it can render, the native class per kind, how
// neutral properties and events map onto toolkit names, and how an
// arrangement is expressed natively.
type Translator interface {
	// CanRender reports whether the toolkit has a widget for this kind.
	CanRender(kind spec.Kind) bool
	// NativeClass returns the toolkit class name for a kind.
	NativeClass(kind spec.Kind) string
	// NativeProps translates neutral properties into toolkit attributes.
	NativeProps(s spec.WidgetSpec) map[string]any
	// NativeEvent translates a neutral event type (plus bound property,
	// for event.Bind) into the toolkit's listener name.
	NativeEvent(t event.Type, property string) (string, error)
	// ArrangeArgs translates an arrangement into toolkit layout arguments.
	ArrangeArgs(arr Arrangement) map[string]any
}

// NativeHandle is the handle implementation shared by the driver-backed
// adapters. It is opaque outside this package and the owning adapter.
type NativeHandle struct {
	ref       uint64
	widgetID  string
	backendID string
	kind      spec.Kind
	destroyed atomic.Bool
}

// WidgetID returns the id of the spec this handle was materialized from.
func (h *NativeHandle) WidgetID() string { return h.widgetID }

// Backend returns the owning adapter's id.
func (h *NativeHandle) Backend() string { return h.backendID }

// Messages crossing the driver seam. The native side decodes these with
// its own JSON types; field names are the wire contract.
type createMsg struct {
	Ref   uint64         `json:"ref"`
	Class string         `json:"class"`
	ID    string         `json:"id"`
	Props map[string]any `json:"props,omitempty"`
}

type updateMsg struct {
	Ref   uint64         `json:"ref"`
	Props map[string]any `json:"props,omitempty"`
}

type arrangeMsg struct {
	Ref      uint64         `json:"ref"`
	Args     map[string]any `json:"args,omitempty"`
	Children []childRefMsg  `json:"children"`
}

type childRefMsg struct {
	Ref   uint64  `json:"ref"`
	Share float64 `json:"share"`
}

type destroyMsg struct {
	Ref uint64 `json:"ref"`
}

type bindMsg struct {
	Ref   uint64 `json:"ref"`
	Event string `json:"event"`
}

type nativeEventMsg struct {
	Ref   uint64 `json:"ref"`
	Event string `json:"event"`
	Value any    `json:"value,omitempty"`
}

// DriverAdapter is the adapter core shared by the toga and kivy variants.
// It owns the handle table and the driver conversation; the Translator
// supplies everything toolkit-specific.
type DriverAdapter struct {
	id        string
	translate Translator
	codec     MessageCodec

	mu       sync.Mutex
	inited   bool
	initErr  error
	nextRef  uint64
	handles  map[uint64]*NativeHandle
	bindings map[uint64]map[string]*event.Binding
}

// NewDriverAdapter creates an adapter core for the given backend id.
func NewDriverAdapter(id string, t Translator) *DriverAdapter {
	return &DriverAdapter{
		id:        id,
		translate: t,
		codec:     DefaultCodec,
		handles:   make(map[uint64]*NativeHandle),
		bindings:  make(map[uint64]map[string]*event.Binding),
	}
}

// ID returns the backend identifier.
func (a *DriverAdapter) ID() string { return a.id }

// driver returns the registered driver for this backend.
func (a *DriverAdapter) driver() (Driver, bool) {
	return DriverFor(a.id)
}

// ensureInit initializes the native toolkit on first use.
// Callers must hold a.mu.
func (a *DriverAdapter) ensureInit() error {
	d, ok := a.driver()
	if !ok {
		return errorUnavailable(a.id, "native driver is not installed")
	}
	if a.inited {
		return a.initErr
	}
	a.inited = true
	if err := d.Init(); err != nil {
		a.initErr = errorUnavailableErr(a.id, err)
		return a.initErr
	}
	d.SetEventSink(a.onNativeEvent)
	return nil
}

// Available probes whether the backend can be initialized.
func (a *DriverAdapter) Available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureInit() == nil
}

// Materialize constructs the native widget for one spec node.
func (a *DriverAdapter) Materialize(s spec.WidgetSpec) (Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensureInit(); err != nil {
		return nil, err
	}
	if !a.translate.CanRender(s.Kind()) {
		return nil, errorUnsupported(a.id, s)
	}
	a.nextRef++
	h := &NativeHandle{
		ref:       a.nextRef,
		widgetID:  s.ID(),
		backendID: a.id,
		kind:      s.Kind(),
	}
	if err := a.invoke("create", createMsg{
		Ref:   h.ref,
		Class: a.translate.NativeClass(s.Kind()),
		ID:    s.ID(),
		Props: a.translate.NativeProps(s),
	}); err != nil {
		return nil, err
	}
	a.handles[h.ref] = h
	return h, nil
}

// Update applies the spec's properties to the handle in place.
func (a *DriverAdapter) Update(h Handle, s spec.WidgetSpec) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	nh, err := a.own(h, "Update")
	if err != nil {
		return err
	}
	return a.invoke("update", updateMsg{Ref: nh.ref, Props: a.translate.NativeProps(s)})
}

// Arrange lays out a container's materialized children.
func (a *DriverAdapter) Arrange(parent Handle, arr Arrangement) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	nh, err := a.own(parent, "Arrange")
	if err != nil {
		return err
	}
	msg := arrangeMsg{Ref: nh.ref, Args: a.translate.ArrangeArgs(arr)}
	for _, c := range arr.Children {
		ch, err := a.own(c.Handle, "Arrange")
		if err != nil {
			return err
		}
		msg.Children = append(msg.Children, childRefMsg{Ref: ch.ref, Share: c.Share})
	}
	return a.invoke("arrange", msg)
}

// Destroy releases the handle's native resources. Destroying a handle
// twice fails with an already-destroyed error rather than silently
// succeeding, so double-release bugs surface during development.
func (a *DriverAdapter) Destroy(h Handle) error {
	a.mu.Lock()
	nh, err := a.own(h, "Destroy")
	if err != nil {
		a.mu.Unlock()
		return err
	}
	nh.destroyed.Store(true)
	delete(a.handles, nh.ref)
	stale := a.bindings[nh.ref]
	delete(a.bindings, nh.ref)
	err = a.invoke("destroy", destroyMsg{Ref: nh.ref})
	a.mu.Unlock()

	// Cancel outside the lock: binding cancellation re-enters the adapter.
	for _, b := range stale {
		b.Cancel()
	}
	return err
}

// BindEvent attaches a native listener forwarding toolkit events as
// neutral payloads.
func (a *DriverAdapter) BindEvent(h Handle, t event.Type, property string, fn event.Handler) (*event.Binding, error) {
	a.mu.Lock()
	nh, err := a.own(h, "BindEvent")
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	nativeEvent, err := a.translate.NativeEvent(t, property)
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	if err := a.invoke("bind", bindMsg{Ref: nh.ref, Event: nativeEvent}); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	ref := nh.ref
	var binding *event.Binding
	binding = event.NewBinding(nh.widgetID, t, property, fn, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if m, ok := a.bindings[ref]; ok {
			// A later binding may own this native event now; leave its
			// listener in place.
			if m[nativeEvent] != binding {
				return
			}
			delete(m, nativeEvent)
		}
		// Handle already destroyed means the native listener is gone.
		if _, live := a.handles[ref]; live {
			a.invoke("unbind", bindMsg{Ref: ref, Event: nativeEvent})
		}
	})
	if a.bindings[nh.ref] == nil {
		a.bindings[nh.ref] = make(map[string]*event.Binding)
	}
	displaced := a.bindings[nh.ref][nativeEvent]
	a.bindings[nh.ref][nativeEvent] = binding
	a.mu.Unlock()

	// Rebinding the same native event replaces the listener; detach the
	// binding it displaced. Cancel outside the lock: cancellation
	// re-enters the adapter.
	if displaced != nil {
		displaced.Cancel()
	}
	return binding, nil
}

// HandleCount returns the number of live handles owned by this adapter.
func (a *DriverAdapter) HandleCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.handles)
}

// RunLoop enters the native event loop, blocking until StopLoop.
func (a *DriverAdapter) RunLoop() error {
	a.mu.Lock()
	if err := a.ensureInit(); err != nil {
		a.mu.Unlock()
		return err
	}
	d, _ := a.driver()
	a.mu.Unlock()
	return d.Run()
}

// StopLoop requests the native event loop to exit.
func (a *DriverAdapter) StopLoop() {
	if d, ok := a.driver(); ok {
		d.Stop()
	}
}

// Post schedules fn on the loop thread.
func (a *DriverAdapter) Post(fn func()) bool {
	if d, ok := a.driver(); ok {
		return d.Post(fn)
	}
	return false
}

// own checks that h is a live handle created by this adapter.
// Callers must hold a.mu.
func (a *DriverAdapter) own(h Handle, op string) (*NativeHandle, error) {
	nh, ok := h.(*NativeHandle)
	if !ok || nh.backendID != a.id {
		return nil, errorForeignHandle(a.id, op, h)
	}
	if nh.destroyed.Load() {
		return nil, errorDestroyed(a.id, op, nh.widgetID)
	}
	if _, live := a.handles[nh.ref]; !live {
		return nil, errorDestroyed(a.id, op, nh.widgetID)
	}
	return nh, nil
}

// invoke encodes and sends one command to the driver.
// Callers must hold a.mu.
func (a *DriverAdapter) invoke(method string, msg any) error {
	d, ok := a.driver()
	if !ok {
		return errorUnavailable(a.id, "native driver is not installed")
	}
	data, err := a.codec.Encode(msg)
	if err != nil {
		return err
	}
	_, err = d.Invoke(method, data)
	return err
}

// onNativeEvent decodes one native event and delivers it to the handle's
// binding. The driver calls this on the loop thread.
func (a *DriverAdapter) onNativeEvent(data []byte) {
	var msg nativeEventMsg
	if err := a.codec.DecodeInto(data, &msg); err != nil {
		return
	}
	a.mu.Lock()
	binding := a.bindings[msg.Ref][msg.Event]
	a.mu.Unlock()
	if binding == nil {
		return
	}
	binding.Deliver(event.Payload{
		Type:     binding.Type,
		WidgetID: binding.WidgetID,
		Value:    msg.Value,
	})
}
