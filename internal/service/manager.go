// Package service holds the label-keyed registry the process report module looks services up in.
package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/verte-zerg/procreport/internal/cuts"
	"github.com/verte-zerg/procreport/internal/geometry"
)

// Default service labels.
const (
	DefaultCutLabel      = "cuts"
	DefaultGeometryLabel = "geometry"
)

var (
	// ErrServiceNotFound is returned when no service is registered under a label.
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceType is returned when a service has an unexpected type.
	ErrServiceType = errors.New("unexpected service type")

	// ErrDuplicateService is returned when a label is registered twice.
	ErrDuplicateService = errors.New("duplicate service")
)

// Manager maps labels to services.
type Manager struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewManager returns an empty registry.
func NewManager() *Manager {
	return &Manager{services: map[string]any{}}
}

// Register stores svc under label.
func (m *Manager) Register(label string, svc any) error {
	if label == "" {
		return fmt.Errorf("service label is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.services[label]; ok {
		return fmt.Errorf("%w %q", ErrDuplicateService, label)
	}
	m.services[label] = svc
	return nil
}

// Has reports whether label is registered.
func (m *Manager) Has(label string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.services[label]
	return ok
}

// Lookup returns the service under label if it has type T.
func Lookup[T any](m *Manager, label string) (T, error) {
	var zero T
	m.mu.RLock()
	svc, ok := m.services[label]
	m.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("%w %q", ErrServiceNotFound, label)
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T", ErrServiceType, label, svc)
	}
	return typed, nil
}

// CutService exposes a cut manager.
type CutService struct {
	manager *cuts.Manager
}

// NewCutService wraps a cut manager.
func NewCutService(m *cuts.Manager) *CutService {
	return &CutService{manager: m}
}

// CutManager returns the wrapped manager.
func (s *CutService) CutManager() *cuts.Manager {
	if s == nil {
		return nil
	}
	return s.manager
}

// GeometryService exposes a geometry manager.
type GeometryService struct {
	manager *geometry.Manager
}

// NewGeometryService wraps a geometry manager.
func NewGeometryService(m *geometry.Manager) *GeometryService {
	return &GeometryService{manager: m}
}

// GeometryManager returns the wrapped manager.
func (s *GeometryService) GeometryManager() *geometry.Manager {
	if s == nil {
		return nil
	}
	return s.manager
}
