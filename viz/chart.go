// ABOUTME: Declarative chart descriptions for the tree diagram and the feature-space scatter plot.
// ABOUTME: Charting backends (browser, terminal, image renderers) draw these without seeing Snapshots.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
)

// Colors shared by every backend.
const (
	LeafColor     = "#FF9999"
	InternalColor = "#66B2FF"
	ActiveColor   = "#FFC107"
	OutlineColor  = "#333333"
	EdgeColor     = "gray"
	SplitColor    = "red"
)

// Surface names identify the two drawables.
const (
	SurfaceTree  = "tree-viz"
	SurfaceSpace = "space-viz"
)

// defaultRange is used when a snapshot carries no points.
var defaultRange = Range{Min: -2, Max: 2}

// Surface is a named drawable with its current pixel size.
type Surface struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Range is an axis interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TreeNode is one marker in the tree diagram.
type TreeNode struct {
	Slot    int     `json:"slot"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Label   string  `json:"label"`
	// Color is the fill and always tells leaf from internal. The active node is
	// marked by Outline instead.
	Color   string  `json:"color"`
	Outline string  `json:"outline"`
	Leaf    bool    `json:"leaf"`
	Active  bool    `json:"active"`
}

// Segment is a straight line between two chart coordinates.
type Segment struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// TreeChart describes the tree-structure diagram.
type TreeChart struct {
	Surface Surface    `json:"surface"`
	Nodes   []TreeNode `json:"nodes"`
	Edges   []Segment  `json:"edges"`
}

// ClassSeries is the scatter series for one class.
type ClassSeries struct {
	Class int       `json:"class"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

// SplitLine is the axis-aligned split boundary. Feature 0 draws a vertical line.
type SplitLine struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Segment   Segment `json:"segment"`
}

// SpaceChart describes the feature-space scatter plot.
type SpaceChart struct {
	Surface Surface       `json:"surface"`
	Title   string        `json:"title"`
	XRange  Range         `json:"x_range"`
	YRange  Range         `json:"y_range"`
	Series  []ClassSeries `json:"series"`
	Split   *SplitLine    `json:"split,omitempty"`
}

// Frame is everything a backend needs to draw one playback position.
type Frame struct {
	Tree  TreeChart      `json:"tree"`
	Space SpaceChart     `json:"space"`
	State playback.State `json:"state"`
}

// BuildFrame builds both charts for a snapshot at the given surface sizes.
func BuildFrame(snap dtree.Snapshot, st playback.State, tree, space Surface) Frame {
	return Frame{
		Tree:  BuildTree(snap, tree),
		Space: BuildSpace(snap, space),
		State: st,
	}
}

// BuildTree flattens snap and positions node i at (slot*2, -depth*2).
func BuildTree(snap dtree.Snapshot, surface Surface) TreeChart {
	g := dtree.Flatten(snap)
	c := TreeChart{
		Surface: surface,
		Nodes:   make([]TreeNode, len(g.Nodes)),
		Edges:   make([]Segment, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		color := InternalColor
		if n.Node.IsLeaf {
			color = LeafColor
		}
		outline := OutlineColor
		if n.Node.Active {
			outline = ActiveColor
		}
		c.Nodes[i] = TreeNode{
			Slot:    n.Slot,
			X:       float64(n.Slot) * 2,
			Y:       -float64(n.Depth) * 2,
			Label:   NodeLabel(n.Node),
			Color:   color,
			Outline: outline,
			Leaf:    n.Node.IsLeaf,
			Active:  n.Node.Active,
		}
	}
	for i, e := range g.Edges {
		from, to := c.Nodes[e.From], c.Nodes[e.To]
		c.Edges[i] = Segment{X0: from.X, Y0: from.Y, X1: to.X, Y1: to.Y}
	}
	return c
}

// NodeLabel is the multi-line label for a tree node. Lines are separated by "\n".
func NodeLabel(s dtree.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Depth: %d\nSamples: %d\n%s: %.3f", s.Depth, s.Samples, criterionTitle(s), s.Impurity)
	if s.IsLeaf {
		if s.Prediction != nil {
			fmt.Fprintf(&b, "\nPrediction: %s", *s.Prediction)
		}
	} else if f, t, ok := s.Split(); ok {
		fmt.Fprintf(&b, "\nX[%d] ≤ %.2f", f, t)
	}
	return b.String()
}

// BuildSpace plots the focus node's points by class, with axis ranges taken from
// the root's points so they stay fixed while stepping.
func BuildSpace(snap dtree.Snapshot, surface Surface) SpaceChart {
	focus := snap.Focus()
	xr, yr := Bounds(snap.Points, 0.5)
	c := SpaceChart{
		Surface: surface,
		Title:   fmt.Sprintf("Depth: %d, Samples: %d, %s: %.3f", focus.Depth, focus.Samples, criterionTitle(focus), focus.Impurity),
		XRange:  xr,
		YRange:  yr,
	}

	byClass := map[int]int{}
	for _, p := range focus.Points {
		i, ok := byClass[p.Class]
		if !ok {
			color := p.Color
			if color == "" {
				color = dtree.ClassColor(p.Class)
			}
			i = len(c.Series)
			byClass[p.Class] = i
			c.Series = append(c.Series, ClassSeries{
				Class: p.Class,
				Name:  fmt.Sprintf("Class %d", p.Class),
				Color: color,
			})
		}
		c.Series[i].X = append(c.Series[i].X, p.X)
		c.Series[i].Y = append(c.Series[i].Y, p.Y)
	}

	if f, t, ok := focus.Split(); ok {
		line := SplitLine{Feature: f, Threshold: t}
		if f == 0 {
			line.Segment = Segment{X0: t, Y0: yr.Min, X1: t, Y1: yr.Max}
		} else {
			line.Segment = Segment{X0: xr.Min, Y0: t, X1: xr.Max, Y1: t}
		}
		c.Split = &line
	}
	return c
}

// Bounds returns the x and y ranges of points widened by pad on each side.
func Bounds(points []dtree.Point, pad float64) (Range, Range) {
	if len(points) == 0 {
		return defaultRange, defaultRange
	}
	xr := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	yr := xr
	for _, p := range points {
		xr.Min = math.Min(xr.Min, p.X)
		xr.Max = math.Max(xr.Max, p.X)
		yr.Min = math.Min(yr.Min, p.Y)
		yr.Max = math.Max(yr.Max, p.Y)
	}
	xr.Min -= pad
	xr.Max += pad
	yr.Min -= pad
	yr.Max += pad
	return xr, yr
}

func criterionTitle(s dtree.Snapshot) string {
	return dtree.Criterion(s.Criterion).Title()
}
