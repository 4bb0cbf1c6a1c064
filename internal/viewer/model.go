// Package viewer provides the Bubble Tea report viewer.
package viewer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/procreport/internal/model"
	"github.com/verte-zerg/procreport/internal/render"
)

const (
	reportIndent = " "
	emptyReport  = "No cuts to report."
	helpLine     = "←/→ mode  ↑/↓ scroll  g/G top/bottom  q quit"
)

var (
	tabBase = lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder(), true)
	activeTab = tabBase.
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			BorderForeground(lipgloss.Color("#5FAFD7"))
	inactiveTab = tabBase.
			Foreground(lipgloss.Color("#9E9E9E")).
			BorderForeground(lipgloss.Color("#444444"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F5F"))
)

type keyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Prev:   key.NewBinding(key.WithKeys("left", "h", "shift+tab")),
	Next:   key.NewBinding(key.WithKeys("right", "l", "tab")),
	Top:    key.NewBinding(key.WithKeys("g", "home")),
	Bottom: key.NewBinding(key.WithKeys("G", "end")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

// pane is one tab: a render mode and the scrollable report it produced.
type pane struct {
	mode    model.RenderMode
	content string
	vp      viewport.Model
}

// Model shows one cut selection rendered in every report mode, a tab per mode.
type Model struct {
	title     string
	selection []string
	panes     []pane
	current   int
	failures  []string

	width  int
	height int
}

// NewModel renders src once per mode and returns the viewer.
func NewModel(src render.Source, title string, selection []string) *Model {
	m := &Model{
		title:     title,
		selection: append([]string(nil), selection...),
	}
	for _, mode := range []model.RenderMode{model.ModeMeter, model.ModeTable, model.ModeTree} {
		content, err := renderMode(src, mode, m.selection)
		if err != nil {
			m.failures = append(m.failures, fmt.Sprintf("%s: %v", mode, err))
		}
		vp := viewport.New(0, 0)
		vp.SetContent(content)
		m.panes = append(m.panes, pane{mode: mode, content: content, vp: vp})
	}
	return m
}

func renderMode(src render.Source, mode model.RenderMode, selection []string) (string, error) {
	var buf bytes.Buffer
	err := render.Render(&buf, src, render.Options{Mode: mode, Indent: reportIndent, Cuts: selection}, nil)
	if strings.TrimSpace(buf.String()) == "" {
		return emptyReport, err
	}
	return buf.String(), err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		p := &m.panes[m.current]
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Prev):
			m.switchTab(-1)
		case key.Matches(msg, keys.Next):
			m.switchTab(1)
		case key.Matches(msg, keys.Top):
			p.vp.GotoTop()
		case key.Matches(msg, keys.Bottom):
			p.vp.GotoBottom()
		default:
			var cmd tea.Cmd
			p.vp, cmd = p.vp.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	top, middle, bottom := m.heights()
	return lipgloss.JoinVertical(lipgloss.Left,
		block(m.header(), m.width, top),
		block(m.panes[m.current].vp.View(), m.width, middle),
		block(m.footer(), m.width, bottom),
	)
}

// ActiveMode returns the mode of the visible tab.
func (m *Model) ActiveMode() model.RenderMode {
	return m.panes[m.current].mode
}

// Content returns the rendered report of a mode.
func (m *Model) Content(mode model.RenderMode) string {
	for _, p := range m.panes {
		if p.mode == mode {
			return p.content
		}
	}
	return ""
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	_, middle, _ := m.heights()
	for i := range m.panes {
		m.panes[i].vp.Width = width
		m.panes[i].vp.Height = middle
	}
}

func (m *Model) switchTab(delta int) {
	n := len(m.panes)
	m.current = ((m.current+delta)%n + n) % n
}

// heights splits the window into tab bar plus summary, report body and footer.
func (m *Model) heights() (top, middle, bottom int) {
	top = lipgloss.Height(activeTab.Render("x")) + 1
	bottom = 1 + len(m.failures)
	middle = max(m.height-top-bottom, 1)
	return top, middle, bottom
}

func (m *Model) header() string {
	tabs := make([]string, len(m.panes))
	for i, p := range m.panes {
		label := strings.ToUpper(p.mode.String()[:1]) + p.mode.String()[1:]
		if i == m.current {
			tabs[i] = activeTab.Render(label)
		} else {
			tabs[i] = inactiveTab.Render(label)
		}
	}
	scope := "all cuts"
	if len(m.selection) > 0 {
		scope = strings.Join(m.selection, " ")
	}
	summary := runewidth.Truncate(fmt.Sprintf("%s  cuts: %s", m.title, scope), m.width, "...")
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n" + dimStyle.Render(summary)
}

func (m *Model) footer() string {
	lines := []string{dimStyle.Render(helpLine)}
	for _, f := range m.failures {
		lines = append(lines, failStyle.Render("render failed: "+f))
	}
	return strings.Join(lines, "\n")
}

// block pads or clips s to exactly width x height cells.
func block(s string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).MaxWidth(width).
		Height(height).MaxHeight(height).
		Render(s)
}
