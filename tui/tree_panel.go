// ABOUTME: Bubble Tea sub-model rendering the current tree snapshot as an indented outline.
// ABOUTME: Nodes are numbered by pre-order slot, colored by kind, and scrolled to keep the active node visible.
package tui

import (
	"fmt"
	"strings"

	"github.com/2389-research/sapling/dtree"
)

// TreePanelModel displays the visible snapshot's tree structure.
type TreePanelModel struct {
	snap   *dtree.Snapshot
	width  int
	height int
}

// NewTreePanelModel creates an empty tree panel.
func NewTreePanelModel() TreePanelModel {
	return TreePanelModel{}
}

// SetSnapshot replaces the displayed tree.
func (m *TreePanelModel) SetSnapshot(s dtree.Snapshot) {
	m.snap = &s
}

// SetSize sets the available dimensions.
func (m *TreePanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the tree panel as a string.
func (m TreePanelModel) View() string {
	if m.snap == nil {
		return m.frame(TitleStyle.Render("=== TREE: (none) ===") + "\n\nPress t to train.")
	}

	g := dtree.Flatten(*m.snap)
	title := fmt.Sprintf("=== TREE: %d nodes, depth %d ===", len(g.Nodes), g.MaxDepth())

	lines, active := outline(*m.snap)
	lines = m.window(lines, active)

	return m.frame(TitleStyle.Render(title) + "\n" + strings.Join(lines, "\n"))
}

// window trims lines to the panel body height, keeping the active line in view.
// When lines remain below the window, the last row reports how many.
func (m TreePanelModel) window(lines []string, active int) []string {
	body := m.height - 3 // border and title
	if body < 2 || len(lines) <= body {
		return lines
	}
	visible := body - 1
	start := 0
	if active >= visible {
		start = active - visible + 1
	}
	end := start + visible
	if end >= len(lines) {
		return lines[len(lines)-body:]
	}
	out := append([]string(nil), lines[start:end]...)
	return append(out, EdgeStyle.Render(fmt.Sprintf("… %d more", len(lines)-end)))
}

func (m TreePanelModel) frame(content string) string {
	style := BorderStyle
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	if m.height > 0 {
		style = style.Height(m.height - 2)
	}
	return style.Render(content)
}

// outline renders the tree in pre-order, one line per node, and returns the
// index of the active node's line (or -1). Line i is the node in slot i.
func outline(root dtree.Snapshot) ([]string, int) {
	var lines []string
	active := -1
	var walk func(s dtree.Snapshot, prefix, connector, indent string)
	walk = func(s dtree.Snapshot, prefix, connector, indent string) {
		slot := len(lines)
		kind := KindOf(s)
		if kind == NodeActive {
			active = slot
		}
		node := StyleForKind(kind).Render(fmt.Sprintf("%s #%d %s", kind.Icon(), slot, nodeSummary(s)))
		lines = append(lines, EdgeStyle.Render(prefix+connector)+node)

		for i, c := range s.Children {
			last := i == len(s.Children)-1
			next := "│  "
			if last {
				next = "   "
			}
			walk(c, prefix+indent, branch(i, last), next)
		}
	}
	walk(root, "", "", "")
	return lines, active
}

// branch returns the connector for the i-th child. The first child holds the
// samples that satisfy the split test.
func branch(i int, last bool) string {
	edge := "yes "
	if i > 0 {
		edge = "no  "
	}
	if last {
		return "└─ " + edge
	}
	return "├─ " + edge
}

// nodeSummary is the one-line description of a node.
func nodeSummary(s dtree.Snapshot) string {
	crit := s.Criterion
	if crit == "" {
		crit = "impurity"
	}
	stats := fmt.Sprintf("%s=%.3f n=%d", crit, s.Impurity, s.Samples)

	if f, t, ok := s.Split(); ok {
		return fmt.Sprintf("X[%d] ≤ %.2f  %s", f, t, stats)
	}
	if s.IsLeaf && s.Prediction != nil {
		return fmt.Sprintf("leaf → %s  %s", string(*s.Prediction), stats)
	}
	return "pending  " + stats
}
