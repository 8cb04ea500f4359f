// Package mosftest provides isolated UI testing without a native
// toolkit. A Tester runs a real App over the headless driver, so
// materialization order, handle lifetimes, and event delivery behave
// exactly as they do in production, minus the display server.
package mosftest

import (
	"errors"
	"testing"
	"time"

	"github.com/go-mosf/mosf/pkg/app"
	"github.com/go-mosf/mosf/pkg/backend"
	"github.com/go-mosf/mosf/pkg/backend/headless"
	"github.com/go-mosf/mosf/pkg/backend/kivy"
	"github.com/go-mosf/mosf/pkg/backend/toga"
	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/layout"
)

// DefaultTimeout bounds every wait inside the tester.
const DefaultTimeout = 2 * time.Second

// ErrPumpTimeout is returned when a pumped tree does not finish
// materializing within the timeout.
var ErrPumpTimeout = errors.New("PumpTree timed out: tree did not materialize")

// nativeEvents maps neutral event types to the per-toolkit listener
// names the tester emits through the driver.
var nativeEvents = map[string]map[event.Type]string{
	toga.BackendID: {
		event.OnPress:   "on_press",
		event.OnRelease: "on_release",
		event.OnChange:  "on_change",
	},
	kivy.BackendID: {
		event.OnPress:   "on_press",
		event.OnRelease: "on_release",
		event.OnChange:  "text",
	},
}

// Tester drives an App against the headless driver.
type Tester struct {
	t        *testing.T
	driver   *headless.Driver
	registry *backend.Registry
	events   *event.Registry
	backend  string
	app      *app.App
	startErr chan error
}

// NewTester creates a tester with both adapters registered over a
// fresh headless driver, preferring the Toga backend. Cleanup is wired
// through t.Cleanup.
func NewTester(t *testing.T) *Tester {
	drv := headless.New()
	drv.Install(toga.BackendID, kivy.BackendID)
	t.Cleanup(backend.ResetDriversForTest)

	r := backend.NewRegistry()
	r.Register(toga.New())
	r.Register(kivy.New())

	ts := &Tester{
		t:        t,
		driver:   drv,
		registry: r,
		events:   event.NewRegistry(),
		backend:  toga.BackendID,
	}
	t.Cleanup(func() { ts.Unpump() })
	return ts
}

// UseBackend selects the preferred backend for the next PumpTree.
func (ts *Tester) UseBackend(id string) { ts.backend = id }

// Events returns the registry to declare bindings on before PumpTree.
func (ts *Tester) Events() *event.Registry { return ts.events }

// Driver exposes the headless driver for fault injection.
func (ts *Tester) Driver() *headless.Driver { return ts.driver }

// App returns the running app, nil before PumpTree.
func (ts *Tester) App() *app.App { return ts.app }

// PumpTree starts an app over root and blocks until the whole tree is
// materialized. A previously pumped tree is torn down first.
func (ts *Tester) PumpTree(root *layout.Node) error {
	ts.t.Helper()
	if err := ts.Unpump(); err != nil {
		return err
	}

	ts.app = app.New(root, app.Options{
		PreferredBackend: ts.backend,
		Registry:         ts.registry,
		Events:           ts.events,
	})
	ts.startErr = make(chan error, 1)
	go func() { ts.startErr <- ts.app.Start() }()

	deadline := time.After(DefaultTimeout)
	for {
		if _, ok := ts.app.Handle(root.Spec.ID()); ok {
			return nil
		}
		select {
		case err := <-ts.startErr:
			ts.app = nil
			ts.startErr = nil
			return err
		case <-deadline:
			return ErrPumpTimeout
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

// Unpump stops the running app and waits for teardown to finish.
func (ts *Tester) Unpump() error {
	if ts.app == nil {
		return nil
	}
	ts.app.Stop()
	var err error
	select {
	case err = <-ts.startErr:
	case <-time.After(DefaultTimeout):
		err = errors.New("Unpump timed out waiting for the loop to exit")
	}
	ts.app = nil
	ts.startErr = nil
	return err
}

// Dispatch runs fn on the loop thread and waits for it.
func (ts *Tester) Dispatch(fn func()) {
	ts.t.Helper()
	done := make(chan struct{})
	ts.app.Dispatch(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(DefaultTimeout):
		ts.t.Fatal("dispatched function never ran")
	}
}

// Emit raises a neutral event on a widget through the driver, as the
// native toolkit would.
func (ts *Tester) Emit(widgetID string, t event.Type, value any) error {
	names, ok := nativeEvents[ts.backend]
	if !ok {
		return errors.New("no native event table for backend " + ts.backend)
	}
	name, ok := names[t]
	if !ok {
		return errors.New("no native event name for " + string(t))
	}
	return ts.driver.EmitEvent(widgetID, name, value)
}

// Tap presses a widget.
func (ts *Tester) Tap(widgetID string) error {
	return ts.Emit(widgetID, event.OnPress, nil)
}

// EnterText raises a change event carrying text.
func (ts *Tester) EnterText(widgetID, text string) error {
	return ts.Emit(widgetID, event.OnChange, text)
}

// Commands returns the driver's command log so far.
func (ts *Tester) Commands() []string { return ts.driver.Log() }

// RequireOrder asserts that the entries appear in the command log in
// the given relative order.
func (ts *Tester) RequireOrder(entries ...string) {
	ts.t.Helper()
	log := ts.driver.Log()
	pos := 0
	for _, want := range entries {
		found := false
		for ; pos < len(log); pos++ {
			if log[pos] == want {
				found = true
				pos++
				break
			}
		}
		if !found {
			ts.t.Fatalf("command %q not found in order within log %v", want, log)
		}
	}
}

// LiveObjects returns the number of native objects not yet destroyed.
func (ts *Tester) LiveObjects() int { return ts.driver.LiveCount() }
