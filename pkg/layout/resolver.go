package layout

import (
	"math"

	"github.com/go-mosf/mosf/pkg/errors"
)

// CommandKind identifies a materialization command.
type CommandKind int

const (
	// CmdMaterialize instructs the backend to create the node's native widget.
	CmdMaterialize CommandKind = iota
	// CmdArrange instructs the backend to arrange a container's already
	// materialized children along the node's axis with the given shares.
	CmdArrange
)

func (k CommandKind) String() string {
	if k == CmdArrange {
		return "arrange"
	}
	return "materialize"
}

// ChildShare is one child's slot in an arrangement: its widget id and
// its normalized share of the parent's main axis.
type ChildShare struct {
	WidgetID string
	Share    float64
}

// Command is one step of a resolved materialization sequence.
type Command struct {
	Kind      CommandKind
	Node      *Node
	Direction Direction
	Alignment Alignment
	// Shares holds the children's normalized stretch shares, in
	// declaration order. Set only for CmdArrange.
	Shares []ChildShare
}

// WidgetID returns the id of the command's subject widget.
func (c Command) WidgetID() string { return c.Node.Spec.ID() }

// Resolve produces the deterministic command sequence materializing the
// subtree rooted at n: depth-first, children before their parent, and a
// final arrange command for every node with children.
//
// For a tree A(B, C(D)) the sequence is:
//
//	materialize B, materialize D, materialize C, arrange C,
//	materialize A, arrange A
//
// so child handles always exist before their parent arranges them.
func Resolve(n *Node) ([]Command, error) {
	var cmds []Command
	if err := resolveInto(n, &cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

func resolveInto(n *Node, cmds *[]Command) error {
	for _, c := range n.Children {
		if err := resolveInto(c, cmds); err != nil {
			return err
		}
	}
	*cmds = append(*cmds, Command{
		Kind:      CmdMaterialize,
		Node:      n,
		Direction: n.Direction,
		Alignment: n.Alignment,
	})
	if len(n.Children) == 0 {
		return nil
	}
	shares, err := Shares(n)
	if err != nil {
		return err
	}
	*cmds = append(*cmds, Command{
		Kind:      CmdArrange,
		Node:      n,
		Direction: n.Direction,
		Alignment: n.Alignment,
		Shares:    shares,
	})
	return nil
}

// Shares computes the normalized stretch distribution for n's children,
// in declaration order. Children with explicit weights split the axis
// proportionally; unspecified weights count as one unit each, so a
// container whose children carry no weights yields equal shares summing
// to 1.0.
func Shares(n *Node) ([]ChildShare, error) {
	if len(n.Children) == 0 {
		return nil, nil
	}
	total := 0.0
	weights := make([]float64, len(n.Children))
	for i, c := range n.Children {
		w := c.Weight
		if w == 0 {
			w = 1
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.New("layout.Shares", errors.KindLayout,
				"widget %q has stretch weight %v; weights must be finite and non-negative",
				c.Spec.ID(), c.Weight)
		}
		weights[i] = w
		total += w
	}
	shares := make([]ChildShare, len(n.Children))
	for i, c := range n.Children {
		shares[i] = ChildShare{WidgetID: c.Spec.ID(), Share: weights[i] / total}
	}
	return shares, nil
}

// Resolver tracks structurally changed subtrees between resolutions, so
// relayout after a child insertion or removal recomputes only the
// affected commands instead of the whole tree.
type Resolver struct {
	dirty    []*Node
	dirtySet map[*Node]bool
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{dirtySet: make(map[*Node]bool)}
}

// MarkDirty records that n's subtree changed structurally. Marking a
// node already covered by a dirty ancestor is a no-op.
func (r *Resolver) MarkDirty(n *Node) {
	if n == nil || r.dirtySet[n] {
		return
	}
	for _, d := range r.dirty {
		if d.contains(n) {
			return
		}
	}
	// Drop previously marked nodes now covered by n.
	kept := r.dirty[:0]
	for _, d := range r.dirty {
		if n.contains(d) {
			delete(r.dirtySet, d)
			continue
		}
		kept = append(kept, d)
	}
	r.dirty = append(kept, n)
	r.dirtySet[n] = true
}

// NeedsResolve reports whether any subtree is marked dirty.
func (r *Resolver) NeedsResolve() bool {
	return len(r.dirty) > 0
}

// Flush resolves every dirty subtree and clears the dirty set. Each
// dirty root additionally re-emits its parent's arrange command, since
// a structural change alters the parent's share distribution.
func (r *Resolver) Flush() ([]Command, error) {
	var cmds []Command
	for _, n := range r.dirty {
		sub, err := Resolve(n)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, sub...)
		if p := n.Parent(); p != nil {
			shares, err := Shares(p)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, Command{
				Kind:      CmdArrange,
				Node:      p,
				Direction: p.Direction,
				Alignment: p.Alignment,
				Shares:    shares,
			})
		}
	}
	r.dirty = nil
	r.dirtySet = make(map[*Node]bool)
	return cmds, nil
}
