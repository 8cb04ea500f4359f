// Package errors provides structured error handling for the mosf framework.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindUnsupportedWidget indicates a widget kind no backend variant can render.
	KindUnsupportedWidget
	// KindBackendUnavailable indicates a backend whose native toolkit is
	// missing or failed to initialize.
	KindBackendUnavailable
	// KindNoBackend indicates the backend registry exhausted all candidates.
	KindNoBackend
	// KindStateTransition indicates a misuse of the app lifecycle.
	KindStateTransition
	// KindAlreadyDestroyed indicates a double release of a backend handle.
	KindAlreadyDestroyed
	// KindServiceArgument indicates an event service received malformed arguments.
	KindServiceArgument
	// KindLayout indicates an invalid layout description, such as a
	// stretch-factor distribution the resolver cannot disambiguate.
	KindLayout
	// KindConfig indicates a configuration load or validation failure.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedWidget:
		return "unsupported-widget"
	case KindBackendUnavailable:
		return "backend-unavailable"
	case KindNoBackend:
		return "no-backend"
	case KindStateTransition:
		return "state-transition"
	case KindAlreadyDestroyed:
		return "already-destroyed"
	case KindServiceArgument:
		return "service-argument"
	case KindLayout:
		return "layout"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error represents a structured error in the mosf framework.
type Error struct {
	// Op is the operation that failed (e.g., "backend.Registry.Resolve").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Backend is the backend identifier, if applicable.
	Backend string
	// Widget is the id of the widget involved, if applicable.
	Widget string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	switch {
	case e.Backend != "" && e.Widget != "":
		return fmt.Sprintf("%s [%s] backend=%s widget=%s: %v", e.Op, e.Kind, e.Backend, e.Widget, e.Err)
	case e.Backend != "":
		return fmt.Sprintf("%s [%s] backend=%s: %v", e.Op, e.Kind, e.Backend, e.Err)
	case e.Widget != "":
		return fmt.Sprintf("%s [%s] widget=%s: %v", e.Op, e.Kind, e.Widget, e.Err)
	default:
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given operation, kind, and message.
func New(op string, kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Op:        op,
		Kind:      kind,
		Err:       fmt.Errorf(format, args...),
		Timestamp: time.Now(),
	}
}

// Wrap creates an Error wrapping err. Returns nil if err is nil.
func Wrap(op string, kind ErrorKind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:        op,
		Kind:      kind,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// KindOf extracts the ErrorKind from an error chain.
// Returns KindUnknown if err is nil or carries no *Error.
func KindOf(err error) ErrorKind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return KindUnknown
		}
		err = u.Unwrap()
	}
	return KindUnknown
}

// Is reports whether err's kind matches kind.
func Is(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "event.Dispatcher.Dispatch").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}
