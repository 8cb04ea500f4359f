package layout

import (
	"math"
	"testing"

	"github.com/go-mosf/mosf/pkg/errors"
	"github.com/go-mosf/mosf/pkg/spec"
)

func node(t *testing.T, kind spec.Kind, id string) *Node {
	t.Helper()
	s, err := spec.Build(kind, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewNode(s)
}

// tree builds A(B, C(D)) from the depth-first ordering property.
func abcdTree(t *testing.T) (a, b, c, d *Node) {
	t.Helper()
	a = node(t, spec.KindContainer, "A")
	b = node(t, spec.KindButton, "B")
	c = node(t, spec.KindContainer, "C")
	d = node(t, spec.KindLabel, "D")
	c.Append(d)
	a.Append(b)
	a.Append(c)
	return a, b, c, d
}

func commandIDs(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Kind.String() + ":" + c.WidgetID()
	}
	return out
}

func assertSequence(t *testing.T, got []Command, want []string) {
	t.Helper()
	ids := commandIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("commands = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("commands = %v, want %v", ids, want)
		}
	}
}

func TestResolveDepthFirstChildrenBeforeParent(t *testing.T) {
	a, _, _, _ := abcdTree(t)

	cmds, err := Resolve(a)
	if err != nil {
		t.Fatal(err)
	}
	assertSequence(t, cmds, []string{
		"materialize:B",
		"materialize:D",
		"materialize:C",
		"arrange:C",
		"materialize:A",
		"arrange:A",
	})
}

func TestResolveLeafHasNoArrange(t *testing.T) {
	leaf := node(t, spec.KindLabel, "solo")
	cmds, err := Resolve(leaf)
	if err != nil {
		t.Fatal(err)
	}
	assertSequence(t, cmds, []string{"materialize:solo"})
}

func TestEqualShareDistribution(t *testing.T) {
	parent := node(t, spec.KindContainer, "row").WithDirection(Row)
	for _, id := range []string{"x", "y", "z"} {
		parent.Append(node(t, spec.KindButton, id))
	}

	shares, err := Shares(parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(shares))
	}
	sum := 0.0
	for i, s := range shares {
		if math.Abs(s.Share-1.0/3.0) > 1e-9 {
			t.Errorf("share[%d] = %v, want 1/3", i, s.Share)
		}
		sum += s.Share
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("shares sum to %v, want 1.0", sum)
	}
	// Declaration order preserved.
	if shares[0].WidgetID != "x" || shares[1].WidgetID != "y" || shares[2].WidgetID != "z" {
		t.Errorf("share order %v, want declaration order", shares)
	}
}

func TestWeightedShareDistribution(t *testing.T) {
	parent := node(t, spec.KindContainer, "p")
	parent.Append(node(t, spec.KindLabel, "big").WithWeight(3))
	parent.Append(node(t, spec.KindLabel, "small")) // unspecified counts as 1

	shares, err := Shares(parent)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(shares[0].Share-0.75) > 1e-9 || math.Abs(shares[1].Share-0.25) > 1e-9 {
		t.Errorf("shares = %v, want [0.75 0.25]", shares)
	}
}

func TestNegativeWeightRejected(t *testing.T) {
	parent := node(t, spec.KindContainer, "p")
	parent.Append(node(t, spec.KindLabel, "bad").WithWeight(-1))

	_, err := Resolve(parent)
	if !errors.Is(err, errors.KindLayout) {
		t.Errorf("error kind = %v, want KindLayout", errors.KindOf(err))
	}
}

func TestResolverFlushRecomputesOnlyDirtySubtree(t *testing.T) {
	a, _, c, _ := abcdTree(t)

	r := NewResolver()
	if r.NeedsResolve() {
		t.Error("fresh resolver should have nothing to do")
	}

	// Structural change inside C: add a child.
	c.Append(node(t, spec.KindImage, "E"))
	r.MarkDirty(c)

	cmds, err := r.Flush()
	if err != nil {
		t.Fatal(err)
	}
	// Only C's subtree plus A's re-arrangement; B and A are not rebuilt.
	assertSequence(t, cmds, []string{
		"materialize:D",
		"materialize:E",
		"materialize:C",
		"arrange:C",
		"arrange:A",
	})
	if r.NeedsResolve() {
		t.Error("Flush must clear the dirty set")
	}
	_ = a
}

func TestResolverDirtyAncestorAbsorbsDescendants(t *testing.T) {
	a, _, c, d := abcdTree(t)

	r := NewResolver()
	r.MarkDirty(d)
	r.MarkDirty(c) // covers d
	r.MarkDirty(d) // already covered

	cmds, err := r.Flush()
	if err != nil {
		t.Fatal(err)
	}
	// One resolution of C's subtree, not two.
	assertSequence(t, cmds, []string{
		"materialize:D",
		"materialize:C",
		"arrange:C",
		"arrange:A",
	})
	_ = a
}

func TestFromSpecMirrorsTree(t *testing.T) {
	inner := spec.MustBuild(spec.KindLabel, "inner", nil)
	root := spec.MustBuild(spec.KindContainer, "outer", nil, inner)

	n := FromSpec(root)
	if len(n.Children) != 1 || n.Children[0].Spec.ID() != "inner" {
		t.Fatalf("FromSpec did not mirror spec nesting: %+v", n)
	}
	if n.Children[0].Parent() != n {
		t.Error("child parent pointer not set")
	}
}

func TestRemoveDetachesChild(t *testing.T) {
	a, b, c, _ := abcdTree(t)
	if !a.Remove(c) {
		t.Fatal("Remove failed to find child")
	}
	if len(a.Children) != 1 || a.Children[0] != b {
		t.Errorf("unexpected children after remove: %v", a.Children)
	}
	if a.Remove(c) {
		t.Error("second Remove should report not found")
	}
	if _, ok := a.Find("D"); ok {
		t.Error("removed subtree still reachable")
	}
}
