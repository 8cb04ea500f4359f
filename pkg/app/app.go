// Package app owns the running application: one resolved backend, one
// root layout tree, and the handoff to the backend's native event loop.
//
// The concurrency model is single-threaded and cooperative. Start blocks
// its caller inside the backend loop; every UI mutation — materialize,
// update, arrange, destroy, event dispatch — happens on that loop thread.
// Work running anywhere else reaches the UI only through Dispatch, which
// posts a closure onto the loop. No backend handle is ever touched from
// another goroutine.
package app

import (
	"sync"

	"github.com/go-mosf/mosf/pkg/backend"
	"github.com/go-mosf/mosf/pkg/errors"
	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/layout"
	"github.com/go-mosf/mosf/pkg/spec"
)

// Options configures an App.
type Options struct {
	// PreferredBackend is the backend id to resolve first ("toga",
	// "kivy"). Empty means the registry's priority order decides.
	PreferredBackend string
	// Registry is the backend registry. Nil means backend.Default.
	Registry *backend.Registry
	// Events is the event declaration table. Nil creates an empty one.
	Events *event.Registry
	// OnStart runs on the loop thread after the tree is materialized,
	// before events can fire.
	OnStart func(a *App)
	// OnStop runs on the loop thread during teardown, before handles
	// are destroyed.
	OnStop func(a *App)
}

// App is the application runtime shim.
type App struct {
	mu       sync.Mutex
	state    State
	stopping bool
	root     *layout.Node
	opts     Options
	registry *backend.Registry
	events   *event.Registry
	adapter  backend.Adapter
	handles  map[string]backend.Handle
	bindings []*event.Binding
	resolver *layout.Resolver
	dispatch *event.Dispatcher
	runErr   error
}

// New creates an app for the given root layout tree. The app starts in
// the Created state; nothing is materialized until Start.
func New(root *layout.Node, opts Options) *App {
	a := &App{
		state:    Created,
		root:     root,
		opts:     opts,
		registry: opts.Registry,
		events:   opts.Events,
		handles:  make(map[string]backend.Handle),
		resolver: layout.NewResolver(),
	}
	if a.registry == nil {
		a.registry = backend.Default
	}
	if a.events == nil {
		a.events = event.NewRegistry()
	}
	a.dispatch = event.NewDispatcher(a.events, a.Dispatch)
	return a
}

// Events returns the app's event declaration table. Bind declarations
// before calling Start.
func (a *App) Events() *event.Registry { return a.events }

// Snapshot returns the current AppState.
func (a *App) Snapshot() AppState {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := AppState{Root: a.root, Lifecycle: a.state}
	if a.adapter != nil {
		st.Backend = a.adapter.ID()
	}
	return st
}

// State returns the current lifecycle state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Backend returns the resolved adapter. Valid only after Start has
// resolved a backend.
func (a *App) Backend() backend.Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.adapter
}

// Handle returns the live native handle for a widget id.
func (a *App) Handle(widgetID string) (backend.Handle, bool) {
	return a.getHandle(widgetID)
}

// Start transitions Created→Running: it resolves the backend, walks the
// resolved command sequence to materialize the root tree, wires event
// declarations to native listeners, and hands control to the backend's
// native event loop. Start blocks the calling goroutine until the loop
// exits, then tears everything down and returns.
//
// Materialization is transactional: if any node fails, every handle
// already created for the tree is destroyed before the error propagates,
// and the app returns to the Created state.
//
// Calling Start from Running or Stopped fails with a state-transition
// error and leaves the state unchanged.
func (a *App) Start() error {
	a.mu.Lock()
	if a.state != Created {
		st := a.state
		a.mu.Unlock()
		return errors.New("app.Start", errors.KindStateTransition,
			"cannot start from the %s state", st)
	}
	a.state = Running
	a.mu.Unlock()

	adapter, err := a.registry.Resolve(a.opts.PreferredBackend)
	if err != nil {
		a.fail(err)
		return err
	}
	a.mu.Lock()
	a.adapter = adapter
	a.mu.Unlock()

	if err := a.materializeTree(); err != nil {
		a.fail(err)
		return err
	}
	if err := a.wireEvents(); err != nil {
		a.teardownHandles()
		a.fail(err)
		return err
	}
	if a.opts.OnStart != nil {
		a.opts.OnStart(a)
	}

	// Enter the loop even when a Stop already raced in: the driver
	// honors a stop issued before loop entry by returning immediately,
	// which keeps that stop from being lost between the state check and
	// the blocking call.
	runErr := adapter.RunLoop()

	// Loop has exited; the calling goroutine is the loop thread again.
	if a.opts.OnStop != nil {
		a.opts.OnStop(a)
	}
	a.events.OnExit()
	a.teardownHandles()

	a.mu.Lock()
	a.state = Stopped
	if runErr != nil && a.runErr == nil {
		a.runErr = runErr
	}
	err = a.runErr
	a.mu.Unlock()
	return err
}

// Stop requests the native loop to exit. The blocked Start call performs
// the actual teardown — children before parents for every subtree — and
// then returns. Stop from Created is a no-op, as is a repeated Stop.
func (a *App) Stop() {
	a.mu.Lock()
	if a.state != Running || a.stopping {
		a.mu.Unlock()
		return
	}
	a.stopping = true
	adapter := a.adapter
	a.mu.Unlock()

	if adapter != nil {
		adapter.StopLoop()
	}
}

// Dispatch schedules fn on the loop thread. Background workers use this
// to apply results to the UI; fn runs on the next loop iteration. When
// no loop is running (before Start, or in tests driving the app
// synchronously) fn runs inline.
func (a *App) Dispatch(fn func()) {
	a.mu.Lock()
	adapter := a.adapter
	a.mu.Unlock()
	if adapter != nil && adapter.Post(fn) {
		return
	}
	fn()
}

func (a *App) getHandle(id string) (backend.Handle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.handles[id]
	return h, ok
}

func (a *App) putHandle(id string, h backend.Handle) {
	a.mu.Lock()
	a.handles[id] = h
	a.mu.Unlock()
}

func (a *App) takeHandle(id string) (backend.Handle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.handles[id]
	delete(a.handles, id)
	return h, ok
}

// fail reverts a failed Start to Created so a caller may retry with a
// different preferred backend.
func (a *App) fail(err error) {
	a.mu.Lock()
	a.state = Created
	a.stopping = false
	a.runErr = nil
	a.mu.Unlock()
	errors.Report(errors.Wrap("app.Start", errors.KindOf(err), err))
}

// materializeTree executes the root's resolved command sequence.
func (a *App) materializeTree() error {
	cmds, err := layout.Resolve(a.root)
	if err != nil {
		return err
	}
	return a.applyCommands(cmds)
}

// applyCommands materializes and arranges nodes in command order. On
// failure it destroys, in reverse creation order, every handle the
// failed batch created, so no partial subtree leaks.
func (a *App) applyCommands(cmds []layout.Command) error {
	var created []string
	rollback := func() {
		for i := len(created) - 1; i >= 0; i-- {
			if h, ok := a.takeHandle(created[i]); ok {
				a.adapter.Destroy(h)
			}
		}
	}

	for _, cmd := range cmds {
		id := cmd.WidgetID()
		switch cmd.Kind {
		case layout.CmdMaterialize:
			if h, exists := a.getHandle(id); exists {
				// Re-resolution of a dirty subtree revisits surviving
				// nodes; refresh their properties instead.
				if err := a.adapter.Update(h, cmd.Node.Spec); err != nil {
					rollback()
					return err
				}
				continue
			}
			h, err := a.adapter.Materialize(cmd.Node.Spec)
			if err != nil {
				rollback()
				return err
			}
			a.putHandle(id, h)
			created = append(created, id)
		case layout.CmdArrange:
			arr := backend.Arrangement{
				Direction: cmd.Direction.String(),
				Alignment: cmd.Alignment.String(),
			}
			for _, share := range cmd.Shares {
				ch, ok := a.getHandle(share.WidgetID)
				if !ok {
					continue
				}
				arr.Children = append(arr.Children, backend.ChildSlot{Handle: ch, Share: share.Share})
			}
			parent, ok := a.getHandle(id)
			if !ok {
				continue
			}
			if err := a.adapter.Arrange(parent, arr); err != nil {
				rollback()
				return err
			}
		}
	}
	return nil
}

// wireEvents binds every event declaration to its widget's native
// listener. A declaration whose widget id has no corresponding node in
// the tree is a binding-table mistake and fails fast.
func (a *App) wireEvents() error {
	for _, ev := range a.events.Events() {
		node, ok := a.root.Find(ev.WidgetID)
		if !ok {
			return errors.New("app.wireEvents", errors.KindServiceArgument,
				"widget id %q for the %s handler has no corresponding UI; check the bindings map",
				ev.WidgetID, ev.Type)
		}
		h, ok := a.getHandle(node.Spec.ID())
		if !ok {
			return errors.New("app.wireEvents", errors.KindServiceArgument,
				"widget id %q was never materialized", ev.WidgetID)
		}
		binding, err := a.adapter.BindEvent(h, ev.Type, ev.PropertyName, func(p event.Payload) {
			a.dispatch.Dispatch(p)
		})
		if err != nil {
			return err
		}
		a.bindings = append(a.bindings, binding)
	}
	return nil
}

// teardownHandles destroys every live handle bottom-up: each subtree's
// children are destroyed before their parent, for every subtree shape.
func (a *App) teardownHandles() {
	for _, b := range a.bindings {
		b.Cancel()
	}
	a.bindings = nil
	if a.root != nil {
		a.destroySubtree(a.root)
	}
}

// destroySubtree releases handles post-order.
func (a *App) destroySubtree(n *layout.Node) {
	for _, c := range n.Children {
		a.destroySubtree(c)
	}
	if h, ok := a.takeHandle(n.Spec.ID()); ok {
		a.adapter.Destroy(h)
	}
}

// UpdateWidget routes a property change to a live widget: it derives an
// updated spec, applies it through the adapter, and stores the new spec
// on the layout node. Must run on the loop thread (use Dispatch from
// background work).
func (a *App) UpdateWidget(widgetID string, changes spec.Props) error {
	node, ok := a.root.Find(widgetID)
	if !ok {
		return errors.New("app.UpdateWidget", errors.KindServiceArgument,
			"no widget with id %q in the tree", widgetID)
	}
	h, live := a.getHandle(widgetID)
	if !live {
		return errors.New("app.UpdateWidget", errors.KindAlreadyDestroyed,
			"widget %q has no live handle", widgetID)
	}
	next := node.Spec.Update(changes)
	if err := a.adapter.Update(h, next); err != nil {
		return err
	}
	node.Spec = next
	return nil
}

// AppendChild attaches child under parent and re-materializes only the
// affected subtree. Must run on the loop thread.
func (a *App) AppendChild(parent *layout.Node, child *layout.Node) error {
	parent.Append(child)
	a.resolver.MarkDirty(parent)
	return a.relayout()
}

// RemoveChild detaches child from parent, destroys the removed subtree's
// handles children-first, and rearranges the parent. Must run on the
// loop thread.
func (a *App) RemoveChild(parent *layout.Node, child *layout.Node) error {
	if !parent.Remove(child) {
		return errors.New("app.RemoveChild", errors.KindServiceArgument,
			"widget %q is not a child of %q", child.Spec.ID(), parent.Spec.ID())
	}
	a.destroySubtree(child)
	a.resolver.MarkDirty(parent)
	return a.relayout()
}

// relayout flushes dirty subtrees into commands and applies them.
func (a *App) relayout() error {
	cmds, err := a.resolver.Flush()
	if err != nil {
		return err
	}
	return a.applyCommands(cmds)
}
