package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/beeswarm/pkg/plot"
)

func testLayout() plot.Layout {
	return plot.Layout{
		Overflow: "gutters",
		Lanes: []plot.Lane{
			{Category: "Sun", Center: 100, HalfWidth: 40, Shrink: 1, Converged: true,
				Points: []plot.Point{{Value: 10}, {Value: 24.5}}},
			{Category: "Sat", Center: 200, HalfWidth: 40, Shrink: 1, Converged: true, Overflow: 0.25,
				HadOverflow: true, Warning: "25.0% of the points cannot be placed as swarm",
				Points: []plot.Point{{Value: 3}, {Value: 3}, {Value: 3}, {Value: 3}}},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLaneListNavigation(t *testing.T) {
	var m tea.Model = NewLaneListModel(testLayout())

	m, _ = m.Update(key("up"))
	if got := m.(LaneListModel).Cursor; got != 0 {
		t.Errorf("cursor moved above the first lane: %d", got)
	}
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("j"))
	if got := m.(LaneListModel).Cursor; got != 1 {
		t.Errorf("cursor = %d, want 1 (clamped to the last lane)", got)
	}
	m, _ = m.Update(key("k"))
	if got := m.(LaneListModel).Cursor; got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
}

func TestLaneListDetail(t *testing.T) {
	var m tea.Model = NewLaneListModel(testLayout())
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))

	view := m.View()
	for _, want := range []string{"Sat", "cannot be placed as swarm", "3 … 3", "[2/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m, _ = m.Update(key("enter"))
	if strings.Contains(m.View(), "warning") {
		t.Error("second enter should hide the detail panel")
	}
}

func TestLaneListQuit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m := NewLaneListModel(testLayout())
		var msg tea.KeyMsg
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = key(k)
		}
		if _, cmd := m.Update(msg); cmd == nil {
			t.Errorf("%s should quit", k)
		}
	}
}

func TestRenderLaneTable(t *testing.T) {
	out := renderLaneTable(testLayout(), -1)
	for _, want := range []string{"Lane", "Overflow", "Sun", "0.0%", "Sat", "25.0%", "warn", "ok"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestValueRange(t *testing.T) {
	lo, hi := valueRange(plot.Lane{Points: []plot.Point{{Value: 5}, {Value: -2}, {Value: 9}}})
	if lo != -2 || hi != 9 {
		t.Errorf("valueRange = (%g, %g), want (-2, 9)", lo, hi)
	}
}
