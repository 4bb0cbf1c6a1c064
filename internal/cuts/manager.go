package cuts

import (
	"errors"
	"fmt"
	"io"

	"github.com/verte-zerg/procreport/internal/model"
)

var (
	// ErrManagerInitialized is returned when registering into a locked manager.
	ErrManagerInitialized = errors.New("cut manager is already initialized")

	// ErrDuplicateCut is returned when a name is registered twice.
	ErrDuplicateCut = errors.New("duplicate cut")

	// ErrUnknownCut is returned when a name has no registered evaluator.
	ErrUnknownCut = errors.New("unknown cut")
)

type entry struct {
	name string
	cut  *Cut
}

// Manager is the registry of named cuts. Entries may be declared without an evaluator;
// only entries with one are visible to reports.
type Manager struct {
	entries     map[string]*entry
	order       []string
	initialized bool
}

// NewManager returns an empty, uninitialized manager.
func NewManager() *Manager {
	return &Manager{entries: map[string]*entry{}}
}

// Declare adds a named entry with no evaluator.
func (m *Manager) Declare(name string) error {
	_, err := m.add(name, nil)
	return err
}

// Register adds a cut with an evaluator and returns it for counting.
func (m *Manager) Register(name, description string) (*Cut, error) {
	return m.add(name, &Cut{name: name, description: description})
}

func (m *Manager) add(name string, cut *Cut) (*Cut, error) {
	if m.initialized {
		return nil, ErrManagerInitialized
	}
	if name == "" || model.IsSeparator(name) {
		return nil, fmt.Errorf("invalid cut name %q", name)
	}
	if _, ok := m.entries[name]; ok {
		return nil, fmt.Errorf("%w %q", ErrDuplicateCut, name)
	}
	m.entries[name] = &entry{name: name, cut: cut}
	m.order = append(m.order, name)
	return cut, nil
}

// Load registers one cut per snapshot, keeping counters and order.
func (m *Manager) Load(stats []model.CutStat) error {
	for _, s := range stats {
		c, err := m.Register(s.Name, s.Description)
		if err != nil {
			return err
		}
		c.processed = s.Processed
		c.accepted = s.Accepted
		c.rejected = s.Rejected
	}
	return nil
}

// Initialize locks the registry.
func (m *Manager) Initialize() error {
	if m.initialized {
		return ErrManagerInitialized
	}
	m.initialized = true
	return nil
}

// IsInitialized reports whether Initialize was called.
func (m *Manager) IsInitialized() bool { return m.initialized }

// Reset drops every entry.
func (m *Manager) Reset() {
	m.entries = map[string]*entry{}
	m.order = nil
	m.initialized = false
}

// Has reports whether name has a registered evaluator.
func (m *Manager) Has(name string) bool {
	e, ok := m.entries[name]
	return ok && e.cut != nil
}

// Cut returns the cut registered under name.
func (m *Manager) Cut(name string) (*Cut, bool) {
	if !m.Has(name) {
		return nil, false
	}
	return m.entries[name].cut, true
}

// Stat returns the counters of name, or a zero snapshot when unknown.
func (m *Manager) Stat(name string) model.CutStat {
	c, ok := m.Cut(name)
	if !ok {
		return model.CutStat{Name: name}
	}
	return c.Stat()
}

// Names lists cuts with an evaluator in registration order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.order))
	for _, name := range m.order {
		if m.entries[name].cut != nil {
			names = append(names, name)
		}
	}
	return names
}

// Snapshot returns the counters of every cut with an evaluator.
func (m *Manager) Snapshot() []model.CutStat {
	names := m.Names()
	out := make([]model.CutStat, 0, len(names))
	for _, name := range names {
		out = append(out, m.entries[name].cut.Stat())
	}
	return out
}

// Dump writes the tree dump of name.
func (m *Manager) Dump(w io.Writer, name, indent string) error {
	c, ok := m.Cut(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownCut, name)
	}
	return c.TreeDump(w, indent)
}
