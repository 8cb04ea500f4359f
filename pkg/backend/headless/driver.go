// Package headless provides an in-process backend driver with no native
// toolkit behind it. It keeps a real object table and runs a real event
// loop goroutine, so adapter behavior — ordering, handle lifetimes, event
// delivery — is observable without a display server. Tests and the
// doctor command install it in place of a platform bridge.
package headless

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-mosf/mosf/pkg/backend"
)

// Object is one simulated native widget.
type Object struct {
	Ref      uint64
	Class    string
	WidgetID string
	Props    map[string]any
	// Children holds the refs from the last arrange call, in order.
	Children []uint64
	// Shares holds the stretch shares from the last arrange call.
	Shares []float64
	// ArrangeArgs holds the toolkit arguments from the last arrange call.
	ArrangeArgs map[string]any
	// Listeners is the set of bound native event names.
	Listeners map[string]bool
	// Updates counts update calls applied to this object.
	Updates int
}

// Driver is an in-process implementation of backend.Driver.
type Driver struct {
	mu      sync.Mutex
	inited  bool
	objects map[uint64]*Object
	log     []string
	sink    func(data []byte)

	// InitErr, when set, makes Init fail. Tests use it to simulate a
	// missing native toolkit.
	InitErr error

	// FailCreateClass, when set, makes creation of that class fail.
	// Tests use it to exercise transactional materialization.
	FailCreateClass string

	loopMu   sync.Mutex
	tasks    chan func()
	stop     chan struct{}
	stopOnce *sync.Once
	running  bool
	// pending records a Stop issued while no loop was running; the next
	// Run consumes it and returns immediately.
	pending bool
}

// New creates a headless driver.
func New() *Driver {
	return &Driver{objects: make(map[uint64]*Object)}
}

// Install registers d as the driver for the given backend ids.
func (d *Driver) Install(backendIDs ...string) *Driver {
	for _, id := range backendIDs {
		backend.RegisterDriver(id, d)
	}
	return d
}

// Init implements backend.Driver.
func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.InitErr != nil {
		return d.InitErr
	}
	d.inited = true
	return nil
}

// SetEventSink implements backend.Driver.
func (d *Driver) SetEventSink(sink func(data []byte)) {
	d.mu.Lock()
	d.sink = sink
	d.mu.Unlock()
}

type wireMsg struct {
	Ref      uint64         `json:"ref"`
	Class    string         `json:"class"`
	ID       string         `json:"id"`
	Props    map[string]any `json:"props"`
	Args     map[string]any `json:"args"`
	Event    string         `json:"event"`
	Children []struct {
		Ref   uint64  `json:"ref"`
		Share float64 `json:"share"`
	} `json:"children"`
}

// Invoke implements backend.Driver. Commands run synchronously on the
// calling goroutine, which in a running app is the loop thread.
func (d *Driver) Invoke(method string, args []byte) ([]byte, error) {
	var msg wireMsg
	if err := json.Unmarshal(args, &msg); err != nil {
		return nil, fmt.Errorf("headless: bad %s payload: %w", method, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch method {
	case "create":
		if d.FailCreateClass != "" && msg.Class == d.FailCreateClass {
			return nil, fmt.Errorf("headless: create %s refused", msg.Class)
		}
		d.objects[msg.Ref] = &Object{
			Ref:       msg.Ref,
			Class:     msg.Class,
			WidgetID:  msg.ID,
			Props:     msg.Props,
			Listeners: make(map[string]bool),
		}
		d.log = append(d.log, fmt.Sprintf("create %s %s", msg.Class, msg.ID))
	case "update":
		obj, ok := d.objects[msg.Ref]
		if !ok {
			return nil, fmt.Errorf("headless: update of unknown ref %d", msg.Ref)
		}
		if obj.Props == nil {
			obj.Props = make(map[string]any)
		}
		for k, v := range msg.Props {
			obj.Props[k] = v
		}
		obj.Updates++
		d.log = append(d.log, fmt.Sprintf("update %s", obj.WidgetID))
	case "arrange":
		obj, ok := d.objects[msg.Ref]
		if !ok {
			return nil, fmt.Errorf("headless: arrange of unknown ref %d", msg.Ref)
		}
		obj.Children = obj.Children[:0]
		obj.Shares = obj.Shares[:0]
		for _, c := range msg.Children {
			if _, live := d.objects[c.Ref]; !live {
				return nil, fmt.Errorf("headless: arrange references dead ref %d", c.Ref)
			}
			obj.Children = append(obj.Children, c.Ref)
			obj.Shares = append(obj.Shares, c.Share)
		}
		obj.ArrangeArgs = msg.Args
		d.log = append(d.log, fmt.Sprintf("arrange %s", obj.WidgetID))
	case "destroy":
		obj, ok := d.objects[msg.Ref]
		if !ok {
			return nil, fmt.Errorf("headless: destroy of unknown ref %d", msg.Ref)
		}
		delete(d.objects, msg.Ref)
		d.log = append(d.log, fmt.Sprintf("destroy %s", obj.WidgetID))
	case "bind":
		obj, ok := d.objects[msg.Ref]
		if !ok {
			return nil, fmt.Errorf("headless: bind on unknown ref %d", msg.Ref)
		}
		obj.Listeners[msg.Event] = true
		d.log = append(d.log, fmt.Sprintf("bind %s %s", obj.WidgetID, msg.Event))
	case "unbind":
		if obj, ok := d.objects[msg.Ref]; ok {
			delete(obj.Listeners, msg.Event)
			d.log = append(d.log, fmt.Sprintf("unbind %s %s", obj.WidgetID, msg.Event))
		}
	default:
		return nil, fmt.Errorf("headless: unknown method %q", method)
	}
	return nil, nil
}

// Run implements backend.Driver: a cooperative loop executing posted
// tasks until Stop.
func (d *Driver) Run() error {
	d.loopMu.Lock()
	if d.running {
		d.loopMu.Unlock()
		return fmt.Errorf("headless: loop already running")
	}
	if d.pending {
		d.pending = false
		d.loopMu.Unlock()
		return nil
	}
	d.tasks = make(chan func(), 64)
	d.stop = make(chan struct{})
	d.stopOnce = &sync.Once{}
	d.running = true
	tasks, stop := d.tasks, d.stop
	d.loopMu.Unlock()

	defer func() {
		d.loopMu.Lock()
		d.running = false
		d.loopMu.Unlock()
	}()

	for {
		select {
		case <-stop:
			// Drain remaining tasks so posted teardown work still runs.
			for {
				select {
				case fn := <-tasks:
					fn()
				default:
					return nil
				}
			}
		case fn := <-tasks:
			fn()
		}
	}
}

// Stop implements backend.Driver. A Stop that lands before Run enters
// the loop is remembered, so the next Run exits immediately instead of
// blocking on a request that already happened.
func (d *Driver) Stop() {
	d.loopMu.Lock()
	if !d.running {
		d.pending = true
		d.loopMu.Unlock()
		return
	}
	once, stop := d.stopOnce, d.stop
	d.loopMu.Unlock()
	once.Do(func() { close(stop) })
}

// Post schedules fn on the loop thread. It reports false if the loop is
// not running.
func (d *Driver) Post(fn func()) bool {
	d.loopMu.Lock()
	running, tasks := d.running, d.tasks
	d.loopMu.Unlock()
	if !running {
		return false
	}
	select {
	case tasks <- fn:
		return true
	default:
		return false
	}
}

// EmitEvent simulates a native event on the object with the given widget
// id, delivering it through the registered event sink.
func (d *Driver) EmitEvent(widgetID, nativeEvent string, value any) error {
	d.mu.Lock()
	var target *Object
	for _, obj := range d.objects {
		if obj.WidgetID == widgetID {
			target = obj
			break
		}
	}
	sink := d.sink
	d.mu.Unlock()

	if target == nil {
		return fmt.Errorf("headless: no object for widget %q", widgetID)
	}
	if !target.Listeners[nativeEvent] {
		return fmt.Errorf("headless: widget %q has no %q listener", widgetID, nativeEvent)
	}
	if sink == nil {
		return fmt.Errorf("headless: no event sink registered")
	}
	data, err := json.Marshal(map[string]any{
		"ref":   target.Ref,
		"event": nativeEvent,
		"value": value,
	})
	if err != nil {
		return err
	}
	sink(data)
	return nil
}

// LiveCount returns the number of objects not yet destroyed.
func (d *Driver) LiveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

// ObjectByWidgetID returns the simulated object for a widget id.
func (d *Driver) ObjectByWidgetID(widgetID string) (*Object, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, obj := range d.objects {
		if obj.WidgetID == widgetID {
			return obj, true
		}
	}
	return nil, false
}

// Log returns the command log in execution order.
func (d *Driver) Log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.log))
	copy(out, d.log)
	return out
}
