package errors

import (
	"runtime"
	"strings"
	"sync"
	"time"
)

// ErrorHandler receives framework errors and recovered panics.
type ErrorHandler interface {
	HandleError(err *Error)
	HandlePanic(err *PanicError)
}

var (
	// DefaultHandler is the global error handler.
	// It defaults to LogHandler with verbose=false.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

func getHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *Error) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleError(err)
	}
}

// ReportPanic sends a recovered panic to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandlePanic(err)
	}
}

// Recover converts a recovered panic value into a reported PanicError.
// Use in a deferred call around callback invocations:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        errors.Recover("event.Dispatcher.Dispatch", r)
//	    }
//	}()
func Recover(op string, value any) *PanicError {
	perr := &PanicError{
		Op:         op,
		Value:      value,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
	ReportPanic(perr)
	return perr
}

// CaptureStack returns the current goroutine's stack trace, trimmed of
// the capture frames themselves.
func CaptureStack() string {
	buf := make([]byte, 16*1024)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	// Drop the goroutine header and the frames for CaptureStack/Recover.
	lines := strings.Split(stack, "\n")
	start := 0
	for i, line := range lines {
		if strings.Contains(line, "errors.CaptureStack") || strings.Contains(line, "errors.Recover") {
			start = i + 2
		}
	}
	if start > 0 && start < len(lines) {
		return strings.Join(lines[start:], "\n")
	}
	return stack
}
