// Package toga implements the BeeWare/Toga backend adapter.
//
// Toga widgets use assignment-style event handlers (button.on_press = fn)
// and Pack-style layout (direction, alignment, flex). The adapter encodes
// capability operations into driver commands using Toga's class and
// attribute vocabulary; the native driver executes them against the
// toolkit.
package toga

import (
	"github.com/go-mosf/mosf/pkg/backend"
	"github.com/go-mosf/mosf/pkg/errors"
	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/spec"
)

// BackendID is the identifier this adapter registers under.
const BackendID = "toga"

// Adapter is the Toga variant of the backend adapter.
type Adapter struct {
	*backend.DriverAdapter
}

// New creates a Toga adapter. Most callers use the instance registered
// with backend.Default at import time.
func New() *Adapter {
	return &Adapter{backend.NewDriverAdapter(BackendID, translator{})}
}

func init() {
	backend.Register(New())
}

var classes = map[spec.Kind]string{
	spec.KindButton:    "toga.Button",
	spec.KindLabel:     "toga.Label",
	spec.KindTextInput: "toga.TextInput",
	spec.KindContainer: "toga.Box",
	spec.KindImage:     "toga.ImageView",
	spec.KindList:      "toga.DetailedList",
}

// events maps neutral event types to Toga handler attributes. Touch
// events have no Toga equivalent; pointer interaction arrives as press
// and release.
var events = map[event.Type]string{
	event.OnPress:   "on_press",
	event.OnRelease: "on_release",
	event.OnChange:  "on_change",
}

type translator struct{}

func (translator) CanRender(kind spec.Kind) bool {
	_, ok := classes[kind]
	return ok
}

func (translator) NativeClass(kind spec.Kind) string {
	return classes[kind]
}

// NativeProps maps the neutral property vocabulary onto Toga attribute
// names. Unknown properties pass through untouched so applications can
// reach toolkit-specific attributes when they accept the coupling.
func (translator) NativeProps(s spec.WidgetSpec) map[string]any {
	props := s.Props()
	out := make(map[string]any, len(props))
	for name, value := range props {
		switch name {
		case spec.PropSource:
			out["image"] = value
		case spec.PropItems:
			out["data"] = value
		case spec.PropWidthHint:
			out["width"] = value
		case spec.PropHeightHint:
			out["height"] = value
		default:
			out[name] = value
		}
	}
	return out
}

// NativeEvent resolves the Toga handler attribute for a neutral event
// type. Property bindings fold into on_change: Toga has no general
// property observation, so the bound property's changes surface through
// the widget's change handler.
func (translator) NativeEvent(t event.Type, property string) (string, error) {
	if t == event.Bind {
		return "on_change", nil
	}
	name, ok := events[t]
	if !ok {
		return "", errors.New("toga.NativeEvent", errors.KindServiceArgument,
			"event type %q has no Toga handler", t)
	}
	return name, nil
}

// ArrangeArgs expresses an arrangement in Pack terms: direction COLUMN or
// ROW, cross-axis alignment, and per-child flex factors carried by the
// children's shares.
func (translator) ArrangeArgs(arr backend.Arrangement) map[string]any {
	direction := "COLUMN"
	switch arr.Direction {
	case "row":
		direction = "ROW"
	case "stack":
		// Toga has no z-stack container; overlaid children collapse to
		// a column, matching Toga's own fallback for unsupported styles.
		direction = "COLUMN"
	}
	align := "START"
	switch arr.Alignment {
	case "center":
		align = "CENTER"
	case "end":
		align = "END"
	case "stretch":
		align = "STRETCH"
	}
	return map[string]any{
		"direction": direction,
		"alignment": align,
	}
}
