package mosftest

import (
	"fmt"

	"github.com/go-mosf/mosf/pkg/layout"
	"github.com/go-mosf/mosf/pkg/spec"
)

// Finder locates nodes in a layout tree.
type Finder interface {
	// Evaluate returns all matches under root in depth-first pre-order.
	Evaluate(root *layout.Node) []*layout.Node
	// Description returns a human-readable description for failures.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*layout.Node
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *layout.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("finder found no nodes: %s", r.finder.Description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *layout.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*layout.Node { return r.nodes }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.nodes) }

// Exists reports whether at least one node matched.
func (r FinderResult) Exists() bool { return len(r.nodes) > 0 }

// Find evaluates a finder against the pumped tree.
func (ts *Tester) Find(f Finder) FinderResult {
	root := ts.app.Snapshot().Root
	return FinderResult{nodes: f.Evaluate(root), finder: f}
}

type predicateFinder struct {
	desc  string
	match func(*layout.Node) bool
}

func (f predicateFinder) Description() string { return f.desc }

func (f predicateFinder) Evaluate(root *layout.Node) []*layout.Node {
	var out []*layout.Node
	if root == nil {
		return out
	}
	root.Walk(func(n *layout.Node) bool {
		if f.match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// ByID matches the node carrying the given widget id.
func ByID(id string) Finder {
	return predicateFinder{
		desc:  fmt.Sprintf("widget id %q", id),
		match: func(n *layout.Node) bool { return n.Spec.ID() == id },
	}
}

// ByKind matches every node of the given widget kind.
func ByKind(k spec.Kind) Finder {
	return predicateFinder{
		desc:  fmt.Sprintf("widget kind %q", k),
		match: func(n *layout.Node) bool { return n.Spec.Kind() == k },
	}
}

// ByText matches every node whose text property equals text.
func ByText(text string) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("text %q", text),
		match: func(n *layout.Node) bool {
			v, ok := n.Spec.Prop(spec.PropText)
			return ok && v == text
		},
	}
}
