// ABOUTME: Bubble Tea sub-model holding the training parameters the user edits before pressing train.
// ABOUTME: Cycles datasets and criteria, clamps depth and min samples, and renders a label/value table.
package tui

import (
	"fmt"
	"strings"

	"github.com/2389-research/sapling/dataset"
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
)

// minSamplesLimit caps the min samples control.
const minSamplesLimit = 50

// ParamsPanelModel displays and edits the next training request.
type ParamsPanelModel struct {
	req     playback.Request
	source  string
	replay  string
	width   int
	height  int
	trained *playback.Request
}

// NewParamsPanelModel creates a panel starting from req. source names the
// training backend shown to the user.
func NewParamsPanelModel(req playback.Request, source string) ParamsPanelModel {
	return ParamsPanelModel{req: req, source: source}
}

// Request returns the parameters the next training run will use.
func (m ParamsPanelModel) Request() playback.Request {
	return m.req
}

// SetTrained records the parameters of the history on screen.
func (m *ParamsPanelModel) SetTrained(req playback.Request) {
	m.trained = &req
	m.replay = ""
}

// SetReplay records that the history on screen is an archived run.
func (m *ParamsPanelModel) SetReplay(runID string) {
	m.replay = runID
	m.trained = nil
}

// CycleDataset moves to the next dataset name.
func (m *ParamsPanelModel) CycleDataset() {
	names := dataset.Names()
	m.req.Dataset = names[(indexOf(names, m.req.Dataset)+1)%len(names)]
}

// CycleCriterion moves to the next split criterion.
func (m *ParamsPanelModel) CycleCriterion() {
	all := dtree.Criteria()
	i := 0
	for j, c := range all {
		if c == m.req.Params.Criterion {
			i = j
		}
	}
	m.req.Params.Criterion = all[(i+1)%len(all)]
}

// AdjustDepth changes max depth by delta within [dtree.MinDepth, dtree.MaxDepthLimit].
func (m *ParamsPanelModel) AdjustDepth(delta int) {
	m.req.Params.MaxDepth = clamp(m.req.Params.MaxDepth+delta, dtree.MinDepth, dtree.MaxDepthLimit)
}

// AdjustMinSamples changes min samples split by delta within
// [dtree.MinSplitSamples, minSamplesLimit].
func (m *ParamsPanelModel) AdjustMinSamples(delta int) {
	m.req.Params.MinSamplesSplit = clamp(m.req.Params.MinSamplesSplit+delta, dtree.MinSplitSamples, minSamplesLimit)
}

// SetSize sets the available dimensions.
func (m *ParamsPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the parameter panel as a string.
func (m ParamsPanelModel) View() string {
	lines := []string{
		TitleStyle.Render("PARAMETERS"),
		row("Dataset:", titleCase(m.req.Dataset)) + HintStyle.Render("  d"),
		row("Max depth:", fmt.Sprintf("%d", m.req.Params.MaxDepth)) + HintStyle.Render("  +/-"),
		row("Min split:", fmt.Sprintf("%d", m.req.Params.MinSamplesSplit)) + HintStyle.Render("  [/]"),
		row("Criterion:", m.req.Params.Criterion.Title()) + HintStyle.Render("  c"),
		row("Backend:", m.source),
	}
	switch {
	case m.replay != "":
		lines = append(lines, row("Showing:", "run "+m.replay))
	case m.trained != nil:
		t := m.trained
		lines = append(lines, row("Showing:", fmt.Sprintf("%s d=%d m=%d %s",
			t.Dataset, t.Params.MaxDepth, t.Params.MinSamplesSplit, t.Params.Criterion)))
	}

	style := BorderStyle
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	if m.height > 0 {
		style = style.Height(m.height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// row renders a label-value pair using the standard label and value styles.
func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// titleCase upper-cases the first byte; dataset names are ASCII.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
