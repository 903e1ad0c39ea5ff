// ABOUTME: Snapshot and History types describing a decision tree at each construction step.
// ABOUTME: Includes the Label wire type, point tags, deep lookup helpers, and structural validation.
package dtree

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidSnapshot is returned by Validate when a snapshot breaks a structural rule.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Label is a class label. It decodes from either a JSON string or a JSON number
// and always encodes as a string.
type Label string

// UnmarshalJSON accepts "A", 1, or 1.0 style values.
func (l *Label) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("label must be a string or number: %w", err)
	}
	*l = Label(n.String())
	return nil
}

// ClassLabel returns the label for a numeric class index.
func ClassLabel(class int) Label {
	return Label(strconv.Itoa(class))
}

// Point is one 2-D sample visible at a node, tagged with its class and display color.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Class int     `json:"class"`
	Color string  `json:"color,omitempty"`
}

// Snapshot is one node of a recorded decision tree together with its recursive
// substructure. A History element is the root Snapshot of the tree at that step.
type Snapshot struct {
	Depth          int        `json:"depth"`
	Samples        int        `json:"samples"`
	Impurity       float64    `json:"impurity"`
	Criterion      string     `json:"criterion,omitempty"`
	IsLeaf         bool       `json:"is_leaf"`
	Prediction     *Label     `json:"prediction,omitempty"`
	FeatureIndex   *int       `json:"feature_idx,omitempty"`
	Threshold      *float64   `json:"threshold,omitempty"`
	Points         []Point    `json:"points"`
	SamplesIndices []int      `json:"samples_indices,omitempty"`
	Active         bool       `json:"active,omitempty"`
	Children       []Snapshot `json:"children"`
}

// History is the ordered sequence of snapshots produced by one training run.
type History []Snapshot

// Len returns the number of nodes in the subtree rooted at s.
func (s Snapshot) Len() int {
	n := 1
	for _, c := range s.Children {
		n += c.Len()
	}
	return n
}

// Focus returns the node marked active in the subtree, or s itself when no node is.
func (s Snapshot) Focus() Snapshot {
	if f, ok := s.findActive(); ok {
		return f
	}
	return s
}

func (s Snapshot) findActive() (Snapshot, bool) {
	if s.Active {
		return s, true
	}
	for _, c := range s.Children {
		if f, ok := c.findActive(); ok {
			return f, true
		}
	}
	return Snapshot{}, false
}

// Split returns the split feature and threshold for an internal node.
func (s Snapshot) Split() (feature int, threshold float64, ok bool) {
	if s.IsLeaf || s.FeatureIndex == nil || s.Threshold == nil {
		return 0, 0, false
	}
	return *s.FeatureIndex, *s.Threshold, true
}

// Validate checks the structural rules of a snapshot tree: non-negative depth,
// positive sample counts, finite non-negative impurity, leaf/internal field
// exclusivity, and children one level deeper than their parent.
func (s Snapshot) Validate() error {
	return s.validate("root")
}

func (s Snapshot) validate(path string) error {
	switch {
	case s.Depth < 0:
		return fmt.Errorf("%w: %s: negative depth %d", ErrInvalidSnapshot, path, s.Depth)
	case s.Samples <= 0:
		return fmt.Errorf("%w: %s: samples must be positive, got %d", ErrInvalidSnapshot, path, s.Samples)
	case math.IsNaN(s.Impurity) || math.IsInf(s.Impurity, 0) || s.Impurity < 0:
		return fmt.Errorf("%w: %s: impurity %v out of range", ErrInvalidSnapshot, path, s.Impurity)
	}

	if s.IsLeaf {
		if s.Prediction == nil {
			return fmt.Errorf("%w: %s: leaf without prediction", ErrInvalidSnapshot, path)
		}
		if s.FeatureIndex != nil || s.Threshold != nil {
			return fmt.Errorf("%w: %s: leaf with split", ErrInvalidSnapshot, path)
		}
		if len(s.Children) > 0 {
			return fmt.Errorf("%w: %s: leaf with children", ErrInvalidSnapshot, path)
		}
		return nil
	}

	if s.FeatureIndex == nil || s.Threshold == nil {
		return fmt.Errorf("%w: %s: internal node without split", ErrInvalidSnapshot, path)
	}
	if *s.FeatureIndex < 0 {
		return fmt.Errorf("%w: %s: negative feature index", ErrInvalidSnapshot, path)
	}
	for i, c := range s.Children {
		if c.Depth != s.Depth+1 {
			return fmt.Errorf("%w: %s.%d: depth %d under parent depth %d", ErrInvalidSnapshot, path, i, c.Depth, s.Depth)
		}
		if err := c.validate(fmt.Sprintf("%s.%d", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the history is non-empty and that every step is a valid tree.
func (h History) Validate() error {
	if len(h) == 0 {
		return fmt.Errorf("%w: empty history", ErrInvalidSnapshot)
	}
	for i, s := range h {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}
