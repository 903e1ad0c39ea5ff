// ABOUTME: Tests for the ParamsPanelModel that edits the next training request.
// ABOUTME: Covers dataset and criterion cycling, clamped adjustments, and the rendered table.
package tui

import (
	"strings"
	"testing"

	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/playback"
)

func defaultRequest() playback.Request {
	return playback.Request{Dataset: "moons", Params: dtree.DefaultParams()}
}

func TestParamsPanelCycleDataset(t *testing.T) {
	m := NewParamsPanelModel(defaultRequest(), "local")

	var seen []string
	for i := 0; i < 3; i++ {
		m.CycleDataset()
		seen = append(seen, m.Request().Dataset)
	}
	if got := strings.Join(seen, ","); got != "circles,linear,moons" {
		t.Errorf("cycle order = %s, want circles,linear,moons", got)
	}
}

func TestParamsPanelCycleCriterion(t *testing.T) {
	m := NewParamsPanelModel(defaultRequest(), "local")
	m.CycleCriterion()
	if got := m.Request().Params.Criterion; got != dtree.CriterionEntropy {
		t.Errorf("criterion = %s, want entropy", got)
	}
	m.CycleCriterion()
	if got := m.Request().Params.Criterion; got != dtree.CriterionGini {
		t.Errorf("criterion = %s, want gini", got)
	}
}

func TestParamsPanelAdjustClamps(t *testing.T) {
	m := NewParamsPanelModel(defaultRequest(), "local")

	m.AdjustDepth(-10)
	if got := m.Request().Params.MaxDepth; got != dtree.MinDepth {
		t.Errorf("max depth = %d, want %d", got, dtree.MinDepth)
	}
	m.AdjustDepth(100)
	if got := m.Request().Params.MaxDepth; got != dtree.MaxDepthLimit {
		t.Errorf("max depth = %d, want %d", got, dtree.MaxDepthLimit)
	}

	m.AdjustMinSamples(-1)
	if got := m.Request().Params.MinSamplesSplit; got != dtree.MinSplitSamples {
		t.Errorf("min samples = %d, want %d", got, dtree.MinSplitSamples)
	}
	m.AdjustMinSamples(3)
	if got := m.Request().Params.MinSamplesSplit; got != 5 {
		t.Errorf("min samples = %d, want 5", got)
	}
	if err := m.Request().Params.Validate(); err != nil {
		t.Errorf("adjusted params should stay valid: %v", err)
	}
}

func TestParamsPanelView(t *testing.T) {
	m := NewParamsPanelModel(defaultRequest(), "http://127.0.0.1:2390")
	m.SetSize(60, 10)

	view := m.View()
	for _, want := range []string{"PARAMETERS", "Moons", "Gini", "http://127.0.0.1:2390"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Showing:") {
		t.Error("nothing trained yet, Showing row should be absent")
	}

	m.SetTrained(playback.Request{Dataset: "circles", Params: dtree.Params{MaxDepth: 4, MinSamplesSplit: 2, Criterion: dtree.CriterionEntropy}})
	if view := m.View(); !strings.Contains(view, "circles d=4 m=2 entropy") {
		t.Errorf("expected trained summary, got:\n%s", view)
	}

	m.SetReplay("01ABC")
	if view := m.View(); !strings.Contains(view, "run 01ABC") {
		t.Errorf("expected replay id, got:\n%s", view)
	}
}
