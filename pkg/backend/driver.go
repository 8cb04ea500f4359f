package backend

import (
	"sync"
)

// Driver is the seam between an adapter and its native toolkit. Real
// builds plug in a CGO or embedding bridge per platform; tests and the
// doctor command plug in the headless driver.
//
// A driver owns the toolkit's object table and event loop. Adapters talk
// to it exclusively through encoded messages, so the capability model
// never sees a native object.
type Driver interface {
	// Init initializes the native toolkit. Called once, lazily, at
	// resolve time. An error here surfaces as backend-unavailable.
	Init() error

	// Invoke sends one encoded command ("create", "update", "arrange",
	// "destroy", "bind", "unbind") to the native side and returns the
	// encoded result.
	Invoke(method string, args []byte) ([]byte, error)

	// SetEventSink registers the function receiving encoded native
	// events. The driver invokes it on the loop thread.
	SetEventSink(sink func(data []byte))

	// Run enters the native event loop, blocking until Stop.
	Run() error

	// Stop requests the running loop to exit. A Stop issued before Run
	// enters the loop must make that Run return immediately, so a stop
	// racing loop entry is never lost. Safe from any goroutine.
	Stop()

	// Post schedules fn on the loop thread (Toga: call_soon_threadsafe,
	// Kivy: Clock.schedule_once). It reports false when the loop is not
	// running. Safe from any goroutine.
	Post(fn func()) bool
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver installs the native driver for a backend id. Platform
// bridge packages call this from their initialization; tests install the
// headless driver. Registering nil removes the driver.
func RegisterDriver(backendID string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		delete(drivers, backendID)
		return
	}
	drivers[backendID] = d
}

// DriverFor returns the registered driver for a backend id.
func DriverFor(backendID string) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[backendID]
	return d, ok
}

// ResetDriversForTest clears all registered drivers.
func ResetDriversForTest() {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers = make(map[string]Driver)
}
