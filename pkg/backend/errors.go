package backend

import (
	"fmt"
	"time"

	"github.com/go-mosf/mosf/pkg/errors"
	"github.com/go-mosf/mosf/pkg/spec"
)

func errorUnavailable(backendID, reason string) *errors.Error {
	return &errors.Error{
		Op:        "backend." + backendID,
		Kind:      errors.KindBackendUnavailable,
		Err:       fmt.Errorf("%s", reason),
		Backend:   backendID,
		Timestamp: time.Now(),
	}
}

func errorUnavailableErr(backendID string, err error) *errors.Error {
	return &errors.Error{
		Op:        "backend." + backendID + ".Init",
		Kind:      errors.KindBackendUnavailable,
		Err:       err,
		Backend:   backendID,
		Timestamp: time.Now(),
	}
}

func errorUnsupported(backendID string, s spec.WidgetSpec) *errors.Error {
	return &errors.Error{
		Op:        "backend." + backendID + ".Materialize",
		Kind:      errors.KindUnsupportedWidget,
		Err:       fmt.Errorf("backend cannot render widget kind %q", s.Kind()),
		Backend:   backendID,
		Widget:    s.ID(),
		Timestamp: time.Now(),
	}
}

func errorDestroyed(backendID, op, widgetID string) *errors.Error {
	return &errors.Error{
		Op:        "backend." + backendID + "." + op,
		Kind:      errors.KindAlreadyDestroyed,
		Err:       fmt.Errorf("handle has already been destroyed"),
		Backend:   backendID,
		Widget:    widgetID,
		Timestamp: time.Now(),
	}
}

func errorForeignHandle(backendID, op string, h Handle) *errors.Error {
	owner := "unknown"
	widget := ""
	if h != nil {
		owner = h.Backend()
		widget = h.WidgetID()
	}
	return &errors.Error{
		Op:        "backend." + backendID + "." + op,
		Kind:      errors.KindUnknown,
		Err:       fmt.Errorf("handle is owned by backend %q, not %q", owner, backendID),
		Backend:   backendID,
		Widget:    widget,
		Timestamp: time.Now(),
	}
}
