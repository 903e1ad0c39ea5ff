// ABOUTME: Converts decision tree snapshots to DOT text and renders them to SVG/PNG via graphviz.
// ABOUTME: Provides ToDOT, Render, and RenderDOTSource for the static tree image endpoints and exports.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/viz"
)

// graphName is the DOT digraph identifier used for every tree.
const graphName = "decision_tree"

// ToDOT serializes a snapshot tree into DOT digraph text. Node IDs follow the
// pre-order slot numbering from dtree.Flatten, so output is deterministic.
func ToDOT(snap dtree.Snapshot) string {
	g := dtree.Flatten(snap)

	var buf strings.Builder
	fmt.Fprintf(&buf, "digraph %s {\n", graphName)
	writeAttrsBlock(&buf, map[string]string{"rankdir": "TB", "bgcolor": "white"})
	fmt.Fprintf(&buf, "  node [%s]\n", formatAttrs(map[string]string{
		"shape":    "box",
		"style":    "rounded,filled",
		"fontname": "Helvetica",
		"fontsize": "10",
	}))
	fmt.Fprintf(&buf, "  edge [%s]\n", formatAttrs(map[string]string{"color": viz.EdgeColor}))

	for _, n := range g.Nodes {
		writeNode(&buf, n)
	}
	for _, e := range g.Edges {
		label := "no"
		if e.To == e.From+1 {
			label = "yes"
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s]\n", nodeID(e.From), nodeID(e.To), formatAttrs(map[string]string{"label": label}))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Render produces rendered output from a snapshot in the specified format.
// Supported formats: "dot" (returns DOT text), "svg", "png" (shell out to graphviz dot command).
func Render(ctx context.Context, snap dtree.Snapshot, format string) ([]byte, error) {
	return RenderDOTSource(ctx, ToDOT(snap), format)
}

// GraphvizAvailable checks whether the graphviz dot command is installed and reachable.
func GraphvizAvailable() bool {
	_, err := exec.LookPath("dot")
	return err == nil
}

// RenderDOTSource takes raw DOT text and renders it to the specified format (svg, png).
// For "dot" format, it returns the input text as-is.
func RenderDOTSource(ctx context.Context, dotText string, format string) ([]byte, error) {
	if dotText == "" {
		return nil, fmt.Errorf("cannot render empty DOT text")
	}

	switch format {
	case "dot":
		return []byte(dotText), nil
	case "svg", "png":
		return renderWithGraphviz(ctx, dotText, format)
	default:
		return nil, fmt.Errorf("unsupported format %q: supported formats are dot, svg, png", format)
	}
}

// renderWithGraphviz pipes DOT text to the graphviz dot command and returns the output.
func renderWithGraphviz(ctx context.Context, dotText string, format string) ([]byte, error) {
	if !GraphvizAvailable() {
		return nil, fmt.Errorf("graphviz dot command not found: install graphviz to render %s output", format)
	}

	cmd := exec.CommandContext(ctx, "dot", "-T"+format)
	cmd.Stdin = strings.NewReader(dotText)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("graphviz dot command failed: %w: %s", err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// writeNode writes one tree node with its label and fill color.
func writeNode(buf *strings.Builder, n dtree.GraphNode) {
	fill := viz.InternalColor
	if n.Node.IsLeaf {
		fill = viz.LeafColor
	}
	attrs := map[string]string{
		"label":     viz.NodeLabel(n.Node),
		"fillcolor": fill,
	}
	if n.Node.Active {
		attrs["color"] = viz.ActiveColor
		attrs["penwidth"] = "3"
	}
	fmt.Fprintf(buf, "  %s [%s]\n", nodeID(n.Slot), formatAttrs(attrs))
}

// nodeID names a node by its flattened slot.
func nodeID(slot int) string {
	return fmt.Sprintf("n%d", slot)
}

// writeAttrsBlock writes graph-level attributes as individual lines.
func writeAttrsBlock(buf *strings.Builder, attrs map[string]string) {
	for _, k := range sortedKeys(attrs) {
		fmt.Fprintf(buf, "  %s=%q\n", k, attrs[k])
	}
}

// formatAttrs formats a map of attributes as a DOT attribute list (key="value", key="value").
func formatAttrs(attrs map[string]string) string {
	keys := sortedKeys(attrs)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, attrs[k]))
	}
	return strings.Join(parts, ", ")
}

// sortedKeys returns the keys of a map in sorted order for deterministic output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
