package errors

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LogHandler is an ErrorHandler that writes errors to stderr, and
// optionally to a log file.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// File is an optional secondary sink (see OpenLogFile).
	File io.Writer
}

func (h *LogHandler) write(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	if h.File != nil {
		fmt.Fprintf(h.File, format, args...)
	}
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	if h.Verbose {
		h.write("[mosf error] %s [%s]", err.Op, err.Kind)
		if err.Backend != "" {
			h.write(" backend=%s", err.Backend)
		}
		if err.Widget != "" {
			h.write(" widget=%s", err.Widget)
		}
		h.write(": %v\n", err.Err)
		if err.StackTrace != "" {
			h.write("Stack trace:\n%s\n", err.StackTrace)
		}
	} else {
		h.write("[mosf error] %s: %v\n", err.Op, err.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Op != "" {
		h.write("[mosf panic] %s: %v\n", err.Op, err.Value)
	} else {
		h.write("[mosf panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		h.write("Stack trace:\n%s\n", err.StackTrace)
	}
}

// OpenLogFile opens (creating parent directories as needed) an append-mode
// log file suitable for LogHandler.File. The caller owns the returned file.
func OpenLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
