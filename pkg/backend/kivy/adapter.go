// Package kivy implements the Kivy backend adapter.
//
// Kivy widgets register listeners through bind(event=fn) and observe
// property changes the same way (switch.bind(active=fn)), which is why
// Bind-type events require a property name here. Layout uses BoxLayout
// orientation and size hints. The adapter encodes capability operations
// into driver commands using Kivy's class and attribute vocabulary.
package kivy

import (
	"github.com/go-mosf/mosf/pkg/backend"
	"github.com/go-mosf/mosf/pkg/errors"
	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/spec"
)

// BackendID is the identifier this adapter registers under.
const BackendID = "kivy"

// Adapter is the Kivy variant of the backend adapter.
type Adapter struct {
	*backend.DriverAdapter
}

// New creates a Kivy adapter. Most callers use the instance registered
// with backend.Default at import time.
func New() *Adapter {
	return &Adapter{backend.NewDriverAdapter(BackendID, translator{})}
}

func init() {
	backend.Register(New())
}

var classes = map[spec.Kind]string{
	spec.KindButton:    "kivy.uix.button.Button",
	spec.KindLabel:     "kivy.uix.label.Label",
	spec.KindTextInput: "kivy.uix.textinput.TextInput",
	spec.KindContainer: "kivy.uix.boxlayout.BoxLayout",
	spec.KindImage:     "kivy.uix.image.Image",
	spec.KindList:      "kivy.uix.recycleview.RecycleView",
}

var events = map[event.Type]string{
	event.OnPress:     "on_press",
	event.OnRelease:   "on_release",
	event.OnChange:    "text",
	event.OnTouchDown: "on_touch_down",
	event.OnTouchMove: "on_touch_move",
	event.OnTouchUp:   "on_touch_up",
}

type translator struct{}

func (translator) CanRender(kind spec.Kind) bool {
	_, ok := classes[kind]
	return ok
}

func (translator) NativeClass(kind spec.Kind) string {
	return classes[kind]
}

// NativeProps maps the neutral property vocabulary onto Kivy attribute
// names. The enabled flag inverts into Kivy's disabled property.
func (translator) NativeProps(s spec.WidgetSpec) map[string]any {
	props := s.Props()
	out := make(map[string]any, len(props))
	for name, value := range props {
		switch name {
		case spec.PropEnabled:
			if enabled, ok := value.(bool); ok {
				out["disabled"] = !enabled
			}
		case spec.PropPlaceholder:
			out["hint_text"] = value
		case spec.PropItems:
			out["data"] = value
		case spec.PropValue:
			out["value"] = value
		case spec.PropWidthHint:
			out["size_hint_x"] = value
		case spec.PropHeightHint:
			out["size_hint_y"] = value
		default:
			out[name] = value
		}
	}
	return out
}

// NativeEvent resolves the Kivy bind() keyword for a neutral event type.
// A Bind-type event observes the named property directly; omitting the
// property name is a declaration mistake, mirrored from the binding-table
// validation the event registry performs.
func (translator) NativeEvent(t event.Type, property string) (string, error) {
	if t == event.Bind {
		if property == "" {
			return "", errors.New("kivy.NativeEvent", errors.KindServiceArgument,
				"property bindings need a property name (e.g. bind(active=...))")
		}
		return property, nil
	}
	name, ok := events[t]
	if !ok {
		return "", errors.New("kivy.NativeEvent", errors.KindServiceArgument,
			"event type %q has no Kivy binding", t)
	}
	return name, nil
}

// ArrangeArgs expresses an arrangement as BoxLayout arguments: vertical
// or horizontal orientation, with FloatLayout for stacks. Child shares
// become size hints on the driver side.
func (translator) ArrangeArgs(arr backend.Arrangement) map[string]any {
	orientation := "vertical"
	layoutClass := "BoxLayout"
	switch arr.Direction {
	case "row":
		orientation = "horizontal"
	case "stack":
		layoutClass = "FloatLayout"
	}
	args := map[string]any{
		"orientation": orientation,
		"layout":      layoutClass,
	}
	if arr.Alignment != "" {
		args["pos_hint"] = arr.Alignment
	}
	return args
}
