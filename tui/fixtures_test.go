// ABOUTME: Shared snapshot fixtures for TUI panel and app tests.
// ABOUTME: Builds a one-split tree and a three-step history by hand so outputs are predictable.
package tui

import "github.com/2389-research/sapling/dtree"

func intp(v int) *int              { return &v }
func floatp(v float64) *float64    { return &v }
func labelp(v string) *dtree.Label { return (*dtree.Label)(&v) }

var fixturePoints = []dtree.Point{
	{X: -1.0, Y: -1.0, Class: 0, Color: "#FF9999"},
	{X: -0.5, Y: 0.5, Class: 0, Color: "#FF9999"},
	{X: 0.8, Y: -0.2, Class: 1, Color: "#66B2FF"},
	{X: 1.2, Y: 1.0, Class: 1, Color: "#66B2FF"},
}

func leaf(depth int, class string, pts []dtree.Point) dtree.Snapshot {
	return dtree.Snapshot{
		Depth:      depth,
		Samples:    len(pts),
		Criterion:  "gini",
		IsLeaf:     true,
		Prediction: labelp(class),
		Points:     pts,
		Children:   []dtree.Snapshot{},
	}
}

// splitRoot is a root split on X[0] at 0.15 with two pure leaves.
func splitRoot(activeChild int) dtree.Snapshot {
	left := leaf(1, "0", fixturePoints[:2])
	right := leaf(1, "1", fixturePoints[2:])
	switch activeChild {
	case 0:
		left.Active = true
	case 1:
		right.Active = true
	}
	return dtree.Snapshot{
		Depth:        0,
		Samples:      4,
		Impurity:     0.5,
		Criterion:    "gini",
		FeatureIndex: intp(0),
		Threshold:    floatp(0.15),
		Points:       fixturePoints,
		Children:     []dtree.Snapshot{left, right},
	}
}

// fixtureHistory is three steps: the root split (root active), then each leaf.
func fixtureHistory() dtree.History {
	root := splitRoot(-1)
	root.Active = true
	root.Children = []dtree.Snapshot{}
	return dtree.History{root, splitRoot(0), splitRoot(1)}
}
