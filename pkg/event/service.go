package event

import (
	"github.com/go-mosf/mosf/pkg/errors"
)

// Args carries extra arguments for a service invocation, fixed on binding
// time. A value may be a Lazy, in which case it is re-evaluated on every
// dispatch (useful for reading the current value of another widget).
type Args map[string]any

// Lazy is an argument resolved at dispatch time rather than binding time.
type Lazy func() any

// resolve evaluates lazy arguments. Plain function values that are not
// Lazy are rejected: the caller almost certainly meant to wrap them.
func (a Args) resolve() (Args, error) {
	if a == nil {
		return nil, nil
	}
	out := make(Args, len(a))
	for k, v := range a {
		switch fn := v.(type) {
		case Lazy:
			out[k] = fn()
		case func() any:
			out[k] = fn()
		default:
			if isFunc(v) {
				return nil, errors.New("event.Args.resolve", errors.KindServiceArgument,
					"argument %q is a function with the wrong shape; wrap it as event.Lazy", k)
			}
			out[k] = v
		}
	}
	return out, nil
}

// Callback receives a service's result, when the service produces one.
type Callback func(result any)

// Service handles UI event callbacks. Implementations do the actual
// application work when a bound widget raises an event.
type Service interface {
	// HandleEvent processes one event. args are the binding's extra
	// arguments with lazy values already resolved. cb may be nil.
	HandleEvent(p Payload, args Args, cb Callback) error

	// OnExit is invoked once when the app is about to exit.
	OnExit()
}

// AsyncService marks a Service whose HandleEvent may run off the loop
// thread. The dispatcher runs it on a background goroutine and marshals
// the callback result back onto the loop thread.
type AsyncService interface {
	Service
	// Async is a marker; it distinguishes the interface.
	Async()
}

// ServiceFunc adapts a plain function to Service with a no-op OnExit.
type ServiceFunc func(p Payload, args Args, cb Callback) error

func (f ServiceFunc) HandleEvent(p Payload, args Args, cb Callback) error { return f(p, args, cb) }

func (f ServiceFunc) OnExit() {}
