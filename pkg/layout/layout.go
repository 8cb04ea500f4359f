// Package layout translates declarative layout trees into ordered
// backend materialization commands.
//
// A Node wraps one WidgetSpec with layout metadata (direction, stretch
// weight, alignment). Resolution walks the tree depth-first and emits
// commands children-before-parent, so child handles always exist before
// a parent arranges them.
package layout

import (
	"github.com/go-mosf/mosf/pkg/spec"
)

// Direction is the main axis of a container node.
type Direction int

const (
	// Column stacks children vertically.
	Column Direction = iota
	// Row lays children out horizontally.
	Row
	// Stack overlays children in declaration order.
	Stack
)

func (d Direction) String() string {
	switch d {
	case Row:
		return "row"
	case Stack:
		return "stack"
	default:
		return "column"
	}
}

// Alignment positions children on the cross axis.
type Alignment int

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	case AlignStretch:
		return "stretch"
	default:
		return "start"
	}
}

// Node wraps a WidgetSpec with layout metadata. The child list mirrors
// the spec's nesting: Children[i].Spec must be a child of Spec.
type Node struct {
	// Spec is the widget this node lays out.
	Spec spec.WidgetSpec
	// Direction is the main axis for this node's children.
	Direction Direction
	// Weight is this node's stretch factor within its parent.
	// Zero means unspecified; the resolver assigns an equal share.
	Weight float64
	// Alignment positions this node's children on the cross axis.
	Alignment Alignment
	// Children are the child nodes in declaration order.
	Children []*Node

	parent *Node
}

// NewNode creates a leaf node for the given spec.
func NewNode(s spec.WidgetSpec) *Node {
	return &Node{Spec: s}
}

// FromSpec builds a layout tree mirroring the spec tree, with default
// metadata (column direction, unspecified weights, start alignment).
func FromSpec(s spec.WidgetSpec) *Node {
	n := NewNode(s)
	for _, c := range s.Children() {
		n.Append(FromSpec(c))
	}
	return n
}

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) *Node {
	child.parent = n
	n.Children = append(n.Children, child)
	return n
}

// Remove detaches child from n. It reports whether the child was found.
// The caller is responsible for destroying the removed subtree's handles.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// WithDirection sets the main axis and returns n for chaining.
func (n *Node) WithDirection(d Direction) *Node {
	n.Direction = d
	return n
}

// WithWeight sets the stretch factor and returns n for chaining.
func (n *Node) WithWeight(w float64) *Node {
	n.Weight = w
	return n
}

// WithAlignment sets the cross-axis alignment and returns n for chaining.
func (n *Node) WithAlignment(a Alignment) *Node {
	n.Alignment = a
	return n
}

// Walk visits n and its descendants depth-first in declaration order.
// Returning false stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the node whose spec has the given widget id.
func (n *Node) Find(id string) (*Node, bool) {
	var found *Node
	n.Walk(func(node *Node) bool {
		if node.Spec.ID() == id {
			found = node
			return false
		}
		return true
	})
	return found, found != nil
}

// contains reports whether other is n or one of n's descendants.
func (n *Node) contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}
