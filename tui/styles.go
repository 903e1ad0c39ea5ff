// ABOUTME: Defines lipgloss style constants for the TUI layout panels, node kinds, and log formatting.
// ABOUTME: Provides StyleForKind and ClassStyle to map tree nodes and sample classes to display styles.
package tui

import (
	"github.com/2389-research/sapling/viz"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Tree node kinds, matching the chart colors
	LeafStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(viz.LeafColor))
	InternalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(viz.InternalColor))
	ActiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(viz.ActiveColor)).Bold(true)
	EdgeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	SplitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Log levels
	LogTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	LogInfoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	LogErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	LogSuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	LogWarnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	PlayingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	PausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// Training spinner
	RunningSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Parameter panel labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// StyleForKind returns the lipgloss style for a tree node kind.
func StyleForKind(kind NodeKind) lipgloss.Style {
	switch kind {
	case NodeActive:
		return ActiveStyle
	case NodeLeaf:
		return LeafStyle
	default:
		return InternalStyle
	}
}

// ClassStyle colors a sample of the given class the way the charts do.
func ClassStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
