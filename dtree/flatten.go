// ABOUTME: Flattens a recursive Snapshot tree into a positioned node/edge graph for diagramming.
// ABOUTME: Pre-order traversal assigns sequential slots, giving a deterministic layout per tree shape.
package dtree

// GraphNode is one flattened tree node. Slot is its pre-order visit index and
// doubles as its horizontal position; Depth is its vertical position.
type GraphNode struct {
	Slot   int
	Parent int // -1 for the root
	Depth  int
	Node   Snapshot
}

// Edge connects a parent slot to a child slot.
type Edge struct {
	From int
	To   int
}

// Graph is a flattened Snapshot tree.
type Graph struct {
	Nodes []GraphNode
	Edges []Edge
}

// MaxDepth returns the largest node depth in the graph, or -1 when empty.
func (g Graph) MaxDepth() int {
	max := -1
	for _, n := range g.Nodes {
		if n.Depth > max {
			max = n.Depth
		}
	}
	return max
}

// Flatten walks root in document order (parent before children, children in their
// given order), assigns each node the next slot starting at 0, and records a
// parent->child edge for every non-root node.
func Flatten(root Snapshot) Graph {
	g := Graph{
		Nodes: make([]GraphNode, 0, root.Len()),
	}

	type item struct {
		node   Snapshot
		parent int
	}

	// Explicit stack; children pushed in reverse so they pop in order.
	stack := []item{{node: root, parent: -1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		slot := len(g.Nodes)
		g.Nodes = append(g.Nodes, GraphNode{
			Slot:   slot,
			Parent: it.parent,
			Depth:  it.node.Depth,
			Node:   it.node,
		})
		if it.parent >= 0 {
			g.Edges = append(g.Edges, Edge{From: it.parent, To: slot})
		}

		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: it.node.Children[i], parent: slot})
		}
	}

	return g
}
