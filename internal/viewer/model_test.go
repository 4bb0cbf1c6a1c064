package viewer

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/procreport/internal/cuts"
	"github.com/verte-zerg/procreport/internal/model"
)

func newViewer(t *testing.T, selection []string) *Model {
	t.Helper()
	src := cuts.NewManager()
	if err := src.Load([]model.CutStat{
		{Name: "trigger", Processed: 100, Accepted: 80, Rejected: 20},
		{Name: "quality", Processed: 80, Accepted: 50, Rejected: 30},
	}); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewModel(src, "Run 1", selection)
}

func TestViewerRendersEveryMode(t *testing.T) {
	m := newViewer(t, nil)
	if !strings.Contains(m.Content(model.ModeMeter), "Cut 'quality'") {
		t.Fatalf("meter content missing cut:\n%s", m.Content(model.ModeMeter))
	}
	if !strings.Contains(m.Content(model.ModeTable), "62.50%") {
		t.Fatalf("table content missing percentage:\n%s", m.Content(model.ModeTable))
	}
	if !strings.Contains(m.Content(model.ModeTree), "status report") {
		t.Fatalf("tree content missing header:\n%s", m.Content(model.ModeTree))
	}
}

func TestViewerTabNavigation(t *testing.T) {
	m := newViewer(t, []string{"trigger"})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.ActiveMode() != model.ModeMeter {
		t.Fatalf("expected meter tab first, got %s", m.ActiveMode())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.ActiveMode() != model.ModeTable {
		t.Fatalf("expected table tab, got %s", m.ActiveMode())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.ActiveMode() != model.ModeTree {
		t.Fatalf("expected wrap to tree tab, got %s", m.ActiveMode())
	}
	view := m.View()
	if !strings.Contains(view, "cuts: trigger") {
		t.Fatalf("expected selection in header:\n%s", view)
	}
	if lines := strings.Split(view, "\n"); len(lines) != 30 {
		t.Fatalf("expected 30 lines, got %d", len(lines))
	}
}
