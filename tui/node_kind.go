// ABOUTME: Defines the NodeKind enum classifying tree nodes as internal, leaf, or active for display.
// ABOUTME: Provides String/Icon methods used by the tree panel.
package tui

import "github.com/2389-research/sapling/dtree"

// NodeKind is how a tree node is drawn.
type NodeKind int

const (
	NodeInternal NodeKind = iota // Node has been split
	NodeLeaf                     // Node is a leaf with a prediction
	NodeActive                   // Node is being processed at this step
)

// KindOf classifies a snapshot node. Active wins over leaf.
func KindOf(s dtree.Snapshot) NodeKind {
	switch {
	case s.Active:
		return NodeActive
	case s.IsLeaf:
		return NodeLeaf
	default:
		return NodeInternal
	}
}

// String returns the lowercase name of the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeInternal:
		return "internal"
	case NodeLeaf:
		return "leaf"
	case NodeActive:
		return "active"
	default:
		return "unknown"
	}
}

// Icon returns a bracket-style marker for TUI display.
func (k NodeKind) Icon() string {
	switch k {
	case NodeInternal:
		return "[+]"
	case NodeLeaf:
		return "[*]"
	case NodeActive:
		return "[>]"
	default:
		return "[?]"
	}
}
