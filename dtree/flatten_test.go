// ABOUTME: Tests for Snapshot flattening into slot-positioned node/edge graphs.
// ABOUTME: Covers the one-split example, pre-order slot assignment, and repeat determinism.
package dtree

import (
	"reflect"
	"testing"
)

func leaf(depth int, label string) Snapshot {
	l := Label(label)
	return Snapshot{
		Depth:      depth,
		Samples:    1,
		IsLeaf:     true,
		Prediction: &l,
		Points:     []Point{{X: 0.1, Y: 0.2, Class: 0}},
	}
}

func split(depth, feature int, threshold float64, children ...Snapshot) Snapshot {
	samples := 0
	for _, c := range children {
		samples += c.Samples
	}
	if samples == 0 {
		samples = 1
	}
	return Snapshot{
		Depth:        depth,
		Samples:      samples,
		Impurity:     0.5,
		FeatureIndex: &feature,
		Threshold:    &threshold,
		Points:       []Point{{X: 0.1, Y: 0.2, Class: 0}, {X: 0.9, Y: 0.8, Class: 1}},
		Children:     children,
	}
}

func TestFlattenOneSplit(t *testing.T) {
	root := split(0, 0, 0.5, leaf(1, "A"), leaf(1, "B"))

	g := Flatten(root)

	if len(g.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(g.Nodes))
	}
	for i, n := range g.Nodes {
		if n.Slot != i {
			t.Errorf("node %d slot = %d, want %d", i, n.Slot, i)
		}
	}
	want := []Edge{{From: 0, To: 1}, {From: 0, To: 2}}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
	if g.Nodes[0].Parent != -1 {
		t.Errorf("root parent = %d, want -1", g.Nodes[0].Parent)
	}
	if got := *g.Nodes[2].Node.Prediction; got != "B" {
		t.Errorf("slot 2 prediction = %q, want B", got)
	}
}

func TestFlattenPreOrder(t *testing.T) {
	//        0
	//      /   \
	//     1     4
	//    / \
	//   2   3
	root := split(0, 0, 0.5,
		split(1, 1, 0.2, leaf(2, "0"), leaf(2, "1")),
		leaf(1, "1"),
	)

	g := Flatten(root)

	depths := []int{0, 1, 2, 2, 1}
	for i, d := range depths {
		if g.Nodes[i].Depth != d {
			t.Errorf("slot %d depth = %d, want %d", i, g.Nodes[i].Depth, d)
		}
	}
	want := []Edge{{0, 1}, {1, 2}, {1, 3}, {0, 4}}
	if !reflect.DeepEqual(g.Edges, want) {
		t.Errorf("edges = %v, want %v", g.Edges, want)
	}
	if g.MaxDepth() != 2 {
		t.Errorf("MaxDepth = %d, want 2", g.MaxDepth())
	}
}

func TestFlattenDeterministic(t *testing.T) {
	root := split(0, 0, 0.5,
		split(1, 1, 0.2, leaf(2, "0"), leaf(2, "1")),
		split(1, 0, 0.9, leaf(2, "1"), leaf(2, "0")),
	)

	first := Flatten(root)
	for i := 0; i < 10; i++ {
		again := Flatten(root)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("flatten run %d differs from first run", i)
		}
	}
}

func TestFlattenSingleLeaf(t *testing.T) {
	g := Flatten(leaf(0, "0"))
	if len(g.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(g.Nodes))
	}
	if len(g.Edges) != 0 {
		t.Errorf("edges = %v, want none", g.Edges)
	}
}
