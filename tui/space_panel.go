// ABOUTME: Bubble Tea sub-model rendering the feature-space scatter plot as a character grid.
// ABOUTME: Uses viz.BuildSpace for ranges, class series, and the split line so it matches the web charts.
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/viz"
)

// Glyphs used on the scatter grid.
const (
	glyphEmpty    = ' '
	glyphSample   = '●'
	glyphOverlap  = '◆'
	glyphVertical = '│'
	glyphHoriz    = '─'
)

// cell is one grid position: the class drawn there (or -1) and whether the
// split line crosses it.
type cell struct {
	class int
	color string
	mixed bool
	split rune
}

// SpacePanelModel displays the focus node's samples and split line.
type SpacePanelModel struct {
	chart  *viz.SpaceChart
	width  int
	height int
}

// NewSpacePanelModel creates an empty feature-space panel.
func NewSpacePanelModel() SpacePanelModel {
	return SpacePanelModel{}
}

// SetSnapshot rebuilds the chart for s at the current panel size.
func (m *SpacePanelModel) SetSnapshot(s dtree.Snapshot) {
	c := viz.BuildSpace(s, viz.Surface{Name: viz.SurfaceSpace, Width: m.width, Height: m.height})
	m.chart = &c
}

// SetSize sets the available dimensions.
func (m *SpacePanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.chart != nil {
		m.chart.Surface.Width = w
		m.chart.Surface.Height = h
	}
}

// View renders the panel as a string.
func (m SpacePanelModel) View() string {
	if m.chart == nil {
		return m.frame(TitleStyle.Render("=== FEATURE SPACE ===") + "\n\nNo data yet.")
	}

	cols, rows := m.gridSize()
	grid := rasterize(*m.chart, cols, rows)

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.chart.Title))
	b.WriteString("\n")
	for _, row := range grid {
		for _, c := range row {
			b.WriteString(renderCell(c))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.legend())
	return m.frame(b.String())
}

// gridSize is the plot area inside the border, title, and legend.
func (m SpacePanelModel) gridSize() (int, int) {
	cols := m.width - 4
	rows := m.height - 5
	if cols < 10 {
		cols = 10
	}
	if rows < 4 {
		rows = 4
	}
	return cols, rows
}

func (m SpacePanelModel) legend() string {
	parts := make([]string, 0, len(m.chart.Series)+1)
	for _, s := range m.chart.Series {
		parts = append(parts, ClassStyle(s.Color).Render(string(glyphSample))+" "+s.Name)
	}
	if sp := m.chart.Split; sp != nil {
		parts = append(parts, SplitStyle.Render("┆")+fmt.Sprintf(" X[%d] ≤ %.2f", sp.Feature, sp.Threshold))
	}
	return strings.Join(parts, "  ")
}

func (m SpacePanelModel) frame(content string) string {
	style := BorderStyle
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	if m.height > 0 {
		style = style.Height(m.height - 2)
	}
	return style.Render(content)
}

// rasterize maps the chart onto a cols x rows grid. Row 0 is the top of the
// plot (largest y).
func rasterize(c viz.SpaceChart, cols, rows int) [][]cell {
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for i := range grid[r] {
			grid[r][i].class = -1
		}
	}

	if sp := c.Split; sp != nil {
		if sp.Feature == 0 {
			col := scale(sp.Threshold, c.XRange, cols)
			for r := range grid {
				grid[r][col].split = glyphVertical
			}
		} else {
			row := rows - 1 - scale(sp.Threshold, c.YRange, rows)
			for i := range grid[row] {
				grid[row][i].split = glyphHoriz
			}
		}
	}

	for _, s := range c.Series {
		for i := range s.X {
			col := scale(s.X[i], c.XRange, cols)
			row := rows - 1 - scale(s.Y[i], c.YRange, rows)
			cur := &grid[row][col]
			switch {
			case cur.class == -1:
				cur.class = s.Class
				cur.color = s.Color
			case cur.class != s.Class:
				cur.mixed = true
			}
		}
	}
	return grid
}

// scale maps v in r onto [0, n).
func scale(v float64, r viz.Range, n int) int {
	span := r.Max - r.Min
	if span <= 0 || math.IsNaN(v) {
		return 0
	}
	i := int((v - r.Min) / span * float64(n))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func renderCell(c cell) string {
	switch {
	case c.mixed:
		return string(glyphOverlap)
	case c.class >= 0:
		return ClassStyle(c.color).Render(string(glyphSample))
	case c.split != 0:
		return SplitStyle.Render(string(c.split))
	default:
		return string(glyphEmpty)
	}
}
