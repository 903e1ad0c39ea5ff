// ABOUTME: Implements a scrollable event log panel using the bubbles viewport component.
// ABOUTME: Displays training outcomes and playback events with color-coded formatting by level.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// LogLevel classifies a log entry.
type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelSuccess LogLevel = "success"
	LevelWarn    LogLevel = "warning"
	LevelError   LogLevel = "error"
)

// LogEntry is one line in the event log.
type LogEntry struct {
	Time    time.Time
	Level   LogLevel
	Message string
}

// LogPanelModel is a scrollable event log.
type LogPanelModel struct {
	entries  []LogEntry
	max      int
	viewport viewport.Model
	width    int
	height   int
}

// NewLogPanelModel creates a new log panel with a maximum number of entries.
// If maxEntries is <= 0, it defaults to 200.
func NewLogPanelModel(maxEntries int) LogPanelModel {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return LogPanelModel{
		entries:  make([]LogEntry, 0, maxEntries),
		max:      maxEntries,
		viewport: viewport.New(80, 10),
	}
}

// Append adds an entry, evicting the oldest entry if at capacity.
func (m *LogPanelModel) Append(e LogEntry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if len(m.entries) >= m.max {
		m.entries = m.entries[1:]
	}
	m.entries = append(m.entries, e)
	m.syncViewport()
}

// Add appends a message at the given level stamped with the current time.
func (m *LogPanelModel) Add(level LogLevel, msg string) {
	m.Append(LogEntry{Level: level, Message: msg})
}

// Len returns the number of entries in the log.
func (m LogPanelModel) Len() int {
	return len(m.entries)
}

// Last returns the most recent entry.
func (m LogPanelModel) Last() (LogEntry, bool) {
	if len(m.entries) == 0 {
		return LogEntry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

// SetSize sets the available dimensions and updates the viewport.
func (m *LogPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Reserve space for the border (2 lines top/bottom) and title (1 line)
	m.viewport.Width = max(w-2, 1)
	m.viewport.Height = max(h-3, 1)
	m.syncViewport()
}

// View renders the log panel.
func (m LogPanelModel) View() string {
	content := "No events yet"
	if len(m.entries) > 0 {
		content = m.viewport.View()
	}
	rendered := TitleStyle.Render("EVENT LOG") + "\n" + content

	style := BorderStyle
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	if m.height > 0 {
		style = style.Height(m.height - 2)
	}
	return style.Render(rendered)
}

// syncViewport rebuilds the viewport content from entries and scrolls to the bottom.
func (m *LogPanelModel) syncViewport() {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, formatEntry(e))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// formatEntry formats a single entry as a log line.
func formatEntry(e LogEntry) string {
	ts := LogTimestampStyle.Render(e.Time.Format("15:04:05"))
	return ts + " " + levelStyle(e.Level).Render(e.Message)
}

// levelStyle returns the lipgloss style for a log level.
func levelStyle(level LogLevel) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return LogSuccessStyle
	case LevelWarn:
		return LogWarnStyle
	case LevelError:
		return LogErrorStyle
	default:
		return LogInfoStyle
	}
}
