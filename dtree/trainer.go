// ABOUTME: CART decision tree trainer that records a full-tree snapshot after every node visit.
// ABOUTME: Supports depth and min-samples stopping rules and Gini or entropy split scoring.
package dtree

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidParams is returned when training parameters or inputs are unusable.
var ErrInvalidParams = errors.New("invalid training parameters")

// Limits on user-selectable hyperparameters.
const (
	MinDepth        = 1
	MaxDepthLimit   = 20
	MinSplitSamples = 2
)

// Palette holds the display colors for class indices, cycling when exhausted.
var Palette = []string{"#FF9999", "#66B2FF", "#99CC66", "#FFCC66"}

// ClassColor returns the palette color for a class index.
func ClassColor(class int) string {
	if class < 0 {
		return "#999999"
	}
	return Palette[class%len(Palette)]
}

// Params configures a training run.
type Params struct {
	MaxDepth        int       `json:"max_depth" yaml:"max_depth"`
	MinSamplesSplit int       `json:"min_samples_split" yaml:"min_samples_split"`
	Criterion       Criterion `json:"criterion" yaml:"criterion"`
}

// DefaultParams returns depth 3, min samples 2, Gini.
func DefaultParams() Params {
	return Params{MaxDepth: 3, MinSamplesSplit: 2, Criterion: CriterionGini}
}

// Validate checks the parameters against the selectable ranges.
func (p Params) Validate() error {
	if p.MaxDepth < MinDepth || p.MaxDepth > MaxDepthLimit {
		return fmt.Errorf("%w: max_depth %d not in [%d, %d]", ErrInvalidParams, p.MaxDepth, MinDepth, MaxDepthLimit)
	}
	if p.MinSamplesSplit < MinSplitSamples {
		return fmt.Errorf("%w: min_samples_split %d below %d", ErrInvalidParams, p.MinSamplesSplit, MinSplitSamples)
	}
	if _, err := ParseCriterion(string(p.Criterion)); err != nil {
		return err
	}
	return nil
}

// Trainer builds decision trees and records their construction history.
type Trainer struct {
	params Params
}

// NewTrainer validates params and returns a Trainer.
func NewTrainer(p Params) (*Trainer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Criterion, _ = ParseCriterion(string(p.Criterion))
	return &Trainer{params: p}, nil
}

// buildNode is the mutable form of a node while the tree is under construction.
type buildNode struct {
	depth      int
	impurity   float64
	leaf       bool
	prediction int
	feature    int
	threshold  float64
	indices    []int
	children   []*buildNode
}

// fit holds the per-run state shared by the recursive builder.
type fit struct {
	params  Params
	x       [][2]float64
	y       []int
	classes int
	root    *buildNode
	history History
}

// Fit trains on x (two features per row) and y (class indices >= 0) and returns
// one full-tree snapshot per node visit, in pre-order.
func (t *Trainer) Fit(x [][2]float64, y []int) (History, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidParams)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d labels", ErrInvalidParams, len(x), len(y))
	}

	classes := 0
	for i, c := range y {
		if c < 0 {
			return nil, fmt.Errorf("%w: negative class %d at row %d", ErrInvalidParams, c, i)
		}
		if c+1 > classes {
			classes = c + 1
		}
	}

	f := &fit{params: t.params, x: x, y: y, classes: classes}
	indices := make([]int, len(y))
	for i := range indices {
		indices[i] = i
	}
	f.build(indices, 0, nil)
	return f.history, nil
}

func (f *fit) build(indices []int, depth int, parent *buildNode) {
	counts := f.counts(indices)
	node := &buildNode{
		depth:    depth,
		impurity: f.params.Criterion.Impurity(counts),
		indices:  indices,
	}
	if parent == nil {
		f.root = node
	} else {
		parent.children = append(parent.children, node)
	}

	node.leaf = depth >= f.params.MaxDepth ||
		len(indices) < f.params.MinSamplesSplit ||
		nonZero(counts) == 1

	if !node.leaf {
		feature, threshold, ok := f.bestSplit(indices)
		if ok {
			node.feature = feature
			node.threshold = threshold
		} else {
			node.leaf = true
		}
	}
	if node.leaf {
		node.prediction = argmax(counts)
	}

	f.history = append(f.history, f.freeze(f.root, node))

	if node.leaf {
		return
	}

	var left, right []int
	for _, i := range indices {
		if f.x[i][node.feature] <= node.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	f.build(left, depth+1, node)
	f.build(right, depth+1, node)
}

// bestSplit sweeps each feature in sorted order and returns the threshold that
// minimizes weighted child impurity. Thresholds are sample values; x <= t goes left.
// Splits that leave either side empty are never considered.
func (f *fit) bestSplit(indices []int) (int, float64, bool) {
	n := len(indices)
	best := 0.0
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, n)
	for feature := 0; feature < 2; feature++ {
		copy(sorted, indices)
		sort.SliceStable(sorted, func(a, b int) bool {
			return f.x[sorted[a]][feature] < f.x[sorted[b]][feature]
		})

		left := make([]int, f.classes)
		right := f.counts(sorted)
		for i := 0; i < n-1; i++ {
			c := f.y[sorted[i]]
			left[c]++
			right[c]--

			v := f.x[sorted[i]][feature]
			if v == f.x[sorted[i+1]][feature] {
				continue
			}

			nl, nr := i+1, n-i-1
			score := (float64(nl)*f.params.Criterion.Impurity(left) +
				float64(nr)*f.params.Criterion.Impurity(right)) / float64(n)
			if bestFeature < 0 || score < best {
				best = score
				bestFeature = feature
				bestThreshold = v
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func (f *fit) counts(indices []int) []int {
	counts := make([]int, f.classes)
	for _, i := range indices {
		counts[f.y[i]]++
	}
	return counts
}

// freeze converts the tree under construction into an immutable Snapshot,
// marking active as the node visited in this step.
func (f *fit) freeze(n, active *buildNode) Snapshot {
	s := Snapshot{
		Depth:          n.depth,
		Samples:        len(n.indices),
		Impurity:       n.impurity,
		Criterion:      string(f.params.Criterion),
		IsLeaf:         n.leaf,
		Points:         make([]Point, len(n.indices)),
		SamplesIndices: append([]int(nil), n.indices...),
		Active:         n == active,
		Children:       make([]Snapshot, 0, len(n.children)),
	}
	for i, idx := range n.indices {
		s.Points[i] = Point{
			X:     f.x[idx][0],
			Y:     f.x[idx][1],
			Class: f.y[idx],
			Color: ClassColor(f.y[idx]),
		}
	}
	if n.leaf {
		label := ClassLabel(n.prediction)
		s.Prediction = &label
	} else {
		feature, threshold := n.feature, n.threshold
		s.FeatureIndex = &feature
		s.Threshold = &threshold
	}
	for _, c := range n.children {
		s.Children = append(s.Children, f.freeze(c, active))
	}
	return s
}

func nonZero(counts []int) int {
	k := 0
	for _, n := range counts {
		if n > 0 {
			k++
		}
	}
	return k
}

// argmax returns the index of the largest count, preferring the lowest index on ties.
func argmax(counts []int) int {
	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}
	return best
}
