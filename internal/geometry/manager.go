// Package geometry provides the minimal geometry registry handle bound by the geometry report driver.
package geometry

import "errors"

// ErrAlreadyInitialized is returned by a second Initialize call.
var ErrAlreadyInitialized = errors.New("geometry manager is already initialized")

// Manager identifies the detector setup a run was processed with.
type Manager struct {
	setupLabel  string
	version     string
	initialized bool
}

// NewManager returns an uninitialized manager for a setup.
func NewManager(setupLabel, version string) *Manager {
	return &Manager{setupLabel: setupLabel, version: version}
}

// Initialize marks the manager ready.
func (m *Manager) Initialize() error {
	if m.initialized {
		return ErrAlreadyInitialized
	}
	m.initialized = true
	return nil
}

// IsInitialized reports whether Initialize was called.
func (m *Manager) IsInitialized() bool { return m.initialized }

// Reset returns the manager to its uninitialized state.
func (m *Manager) Reset() { m.initialized = false }

// SetupLabel returns the setup label.
func (m *Manager) SetupLabel() string { return m.setupLabel }

// Version returns the setup version.
func (m *Manager) Version() string { return m.version }
