// Package spec defines the toolkit-neutral capability model: immutable
// descriptions of UI elements that any registered backend can materialize.
//
// A WidgetSpec is pure data. It never references native toolkit objects;
// backends own those exclusively (see package backend). Specs are immutable
// once constructed: Update returns a derived spec, and callers must re-submit
// the result to a backend adapter for the change to take visual effect.
package spec

import (
	"github.com/google/uuid"

	"github.com/go-mosf/mosf/pkg/errors"
)

// Kind identifies a supported widget kind.
type Kind string

// The fixed set of widget kinds every backend variant must handle.
const (
	KindButton    Kind = "button"
	KindLabel     Kind = "label"
	KindTextInput Kind = "text-input"
	KindContainer Kind = "container"
	KindImage     Kind = "image"
	KindList      Kind = "list"
)

var supportedKinds = map[Kind]bool{
	KindButton:    true,
	KindLabel:     true,
	KindTextInput: true,
	KindContainer: true,
	KindImage:     true,
	KindList:      true,
}

// Kinds returns the supported widget kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindButton, KindLabel, KindTextInput, KindContainer, KindImage, KindList}
}

// Supported reports whether k is a member of the fixed kind set.
func Supported(k Kind) bool {
	return supportedKinds[k]
}

// WidgetSpec is a toolkit-neutral description of one UI element.
//
// The zero value is not valid; construct specs with New or Build.
// Children is meaningful only for container kinds and is nil otherwise.
type WidgetSpec struct {
	kind     Kind
	id       string
	props    Props
	children []WidgetSpec
}

// New creates a WidgetSpec with a generated id.
// It fails with an unsupported-widget error when kind is not in the
// supported set, before any backend resource is touched.
func New(kind Kind, props Props, children ...WidgetSpec) (WidgetSpec, error) {
	return Build(kind, uuid.NewString(), props, children...)
}

// Build creates a WidgetSpec with an explicit id. Widgets that participate
// in event bindings need stable ids; everything else can use New.
func Build(kind Kind, id string, props Props, children ...WidgetSpec) (WidgetSpec, error) {
	if !Supported(kind) {
		return WidgetSpec{}, errors.New("spec.Build", errors.KindUnsupportedWidget,
			"widget kind %q is not in the supported set", kind)
	}
	if id == "" {
		id = uuid.NewString()
	}
	s := WidgetSpec{kind: kind, id: id, props: props.clone()}
	if len(children) > 0 {
		s.children = make([]WidgetSpec, len(children))
		copy(s.children, children)
	}
	return s, nil
}

// MustBuild is Build for statically known kinds; it panics on error.
// Intended for application layout code where the kind is a package constant.
func MustBuild(kind Kind, id string, props Props, children ...WidgetSpec) WidgetSpec {
	s, err := Build(kind, id, props, children...)
	if err != nil {
		panic(err)
	}
	return s
}

// Kind returns the widget kind tag.
func (s WidgetSpec) Kind() Kind { return s.kind }

// ID returns the stable identity of the widget.
func (s WidgetSpec) ID() string { return s.id }

// Props returns a copy of the widget's properties.
func (s WidgetSpec) Props() Props { return s.props.clone() }

// Prop returns one property value and whether it is set.
func (s WidgetSpec) Prop(name string) (any, bool) {
	v, ok := s.props[name]
	return v, ok
}

// Children returns the ordered child specs. The returned slice is shared;
// treat it as read-only.
func (s WidgetSpec) Children() []WidgetSpec { return s.children }

// Update returns a copy of s with changes merged over its properties.
// A nil value removes the property. The receiver is never mutated; the
// caller must submit the returned spec to the adapter for visual effect.
func (s WidgetSpec) Update(changes Props) WidgetSpec {
	out := s
	out.props = s.props.clone()
	if out.props == nil {
		out.props = Props{}
	}
	for k, v := range changes {
		if v == nil {
			delete(out.props, k)
		} else {
			out.props[k] = v
		}
	}
	return out
}

// WithChildren returns a copy of s with the child list replaced.
func (s WidgetSpec) WithChildren(children ...WidgetSpec) WidgetSpec {
	out := s
	out.children = make([]WidgetSpec, len(children))
	copy(out.children, children)
	return out
}

// Walk visits s and every descendant depth-first in declaration order.
// Returning false from fn stops the walk.
func (s WidgetSpec) Walk(fn func(WidgetSpec) bool) bool {
	if !fn(s) {
		return false
	}
	for _, c := range s.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the spec with the given id in s's subtree.
func (s WidgetSpec) Find(id string) (WidgetSpec, bool) {
	var found WidgetSpec
	ok := false
	s.Walk(func(w WidgetSpec) bool {
		if w.id == id {
			found, ok = w, true
			return false
		}
		return true
	})
	return found, ok
}
