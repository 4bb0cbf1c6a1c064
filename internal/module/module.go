// Package module wires report drivers to registry services and writes their reports at teardown.
package module

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/verte-zerg/procreport/internal/config"
	"github.com/verte-zerg/procreport/internal/driver"
	"github.com/verte-zerg/procreport/internal/logging"
	"github.com/verte-zerg/procreport/internal/service"
)

// Property keys read by Initialize.
const (
	KeyOutput         = "output"
	KeyOutputFilename = "output.filename"
	KeyDrivers        = "drivers"
	KeyCutLabel       = "Cut_label"
	KeyGeoLabel       = "Geo_label"
)

// Output labels.
const (
	OutputClog = "clog"
	OutputCout = "cout"
	OutputFile = "file"
)

var (
	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("module is already initialized")

	// ErrNotInitialized is returned by Process or Reset before Initialize.
	ErrNotInitialized = errors.New("module is not initialized")

	// ErrNotSupported is returned for the file output, which is declared but not implemented.
	ErrNotSupported = errors.New("not supported")

	// ErrInvalidOutput is returned for an unknown output label.
	ErrInvalidOutput = errors.New("invalid output label")

	// ErrUnknownDriver is returned for a driver id other than CRD or GRD.
	ErrUnknownDriver = errors.New("unknown driver")

	// ErrDuplicateDriver is returned when a driver id is listed twice.
	ErrDuplicateDriver = errors.New("duplicate driver")
)

// Status is the result of processing one data record.
type Status int

const (
	ProcessSuccess Status = iota
	ProcessError
)

type reporter interface {
	ID() string
	IsInitialized() bool
	Report(w io.Writer) error
	Reset() error
}

// Option configures a Module.
type Option func(*Module)

// WithLogger sets the module and driver logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Module) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStreams replaces the writers used for the cout and clog outputs.
func WithStreams(stdout, stderr io.Writer) Option {
	return func(m *Module) {
		m.stdout = stdout
		m.stderr = stderr
	}
}

// Module is the process report module.
type Module struct {
	name   string
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer

	initialized bool
	out         io.Writer
	drivers     []reporter
}

// New returns an uninitialized module.
func New(name string, opts ...Option) *Module {
	m := &Module{
		name:   name,
		logger: zap.NewNop(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(zap.String("module", name))
	return m
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// IsInitialized reports whether Initialize succeeded.
func (m *Module) IsInitialized() bool { return m.initialized }

// Drivers returns the ids of the configured drivers in order.
func (m *Module) Drivers() []string {
	ids := make([]string, 0, len(m.drivers))
	for _, d := range m.drivers {
		ids = append(ids, d.ID())
	}
	return ids
}

// Initialize selects the output, then builds and initializes every listed driver.
// On failure no driver stays initialized.
func (m *Module) Initialize(props config.Properties, services *service.Manager) error {
	if m.initialized {
		return m.errorf(ErrAlreadyInitialized)
	}
	priority, err := props.StringOr(logging.PriorityKey, logging.DefaultPriority)
	if err != nil {
		return m.errorf(err)
	}
	level, err := logging.ParsePriority(priority)
	if err != nil {
		return m.errorf(err)
	}
	logger := logging.WithPriority(m.logger, level)

	out, err := m.selectOutput(props)
	if err != nil {
		return m.errorf(err)
	}

	ids, err := props.Strings(KeyDrivers)
	if err != nil {
		return m.errorf(err)
	}
	drivers := make([]reporter, 0, len(ids))
	abort := func(err error) error {
		for _, d := range drivers {
			if d.IsInitialized() {
				_ = d.Reset()
			}
		}
		return m.errorf(err)
	}
	seen := map[string]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return abort(fmt.Errorf("%w %q", ErrDuplicateDriver, id))
		}
		seen[id] = struct{}{}
		d, err := buildDriver(id, props, services, logger)
		if d != nil {
			drivers = append(drivers, d)
		}
		if err != nil {
			return abort(err)
		}
	}

	m.logger = logger
	m.out = out
	m.drivers = drivers
	m.initialized = true
	logger.Debug("module initialized", zap.Strings("drivers", ids))
	return nil
}

func (m *Module) selectOutput(props config.Properties) (io.Writer, error) {
	label, err := props.String(KeyOutput)
	if err != nil {
		return nil, err
	}
	switch label {
	case OutputClog:
		return m.stderr, nil
	case OutputCout:
		return m.stdout, nil
	case OutputFile:
		if _, err := props.String(KeyOutputFilename); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("output %q: %w", label, ErrNotSupported)
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidOutput, label)
	}
}

func buildDriver(id string, props config.Properties, services *service.Manager, logger *zap.Logger) (reporter, error) {
	sub := props.Export(id + ".")
	switch id {
	case driver.CutDriverID:
		label, err := props.StringOr(KeyCutLabel, service.DefaultCutLabel)
		if err != nil {
			return nil, err
		}
		svc, err := lookup[*service.CutService](services, KeyCutLabel, label)
		if err != nil {
			return nil, err
		}
		d := driver.NewCutReportDriver(driver.WithLogger(logger))
		if err := d.SetSource(svc.CutManager()); err != nil {
			return nil, err
		}
		return d, d.Initialize(sub)
	case driver.GeometryDriverID:
		label, err := props.StringOr(KeyGeoLabel, service.DefaultGeometryLabel)
		if err != nil {
			return nil, err
		}
		svc, err := lookup[*service.GeometryService](services, KeyGeoLabel, label)
		if err != nil {
			return nil, err
		}
		d := driver.NewGeometryReportDriver(driver.WithLogger(logger))
		if err := d.SetSource(svc.GeometryManager()); err != nil {
			return nil, err
		}
		return d, d.Initialize(sub)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, id)
	}
}

func lookup[T any](services *service.Manager, key, label string) (T, error) {
	var zero T
	if label == "" {
		return zero, fmt.Errorf("%w: %q is empty", config.ErrMissingKey, key)
	}
	if services == nil {
		return zero, fmt.Errorf("%w %q", service.ErrServiceNotFound, label)
	}
	return service.Lookup[T](services, label)
}

// Process accepts a data record. The module only reports at teardown.
func (m *Module) Process() (Status, error) {
	if !m.initialized {
		return ProcessError, m.errorf(ErrNotInitialized)
	}
	return ProcessSuccess, nil
}

// Reset writes every driver report to the output, then resets the drivers and the module.
// All drivers are reset even when a report fails; the first error is returned.
func (m *Module) Reset() error {
	if !m.initialized {
		return m.errorf(ErrNotInitialized)
	}
	var first error
	for _, d := range m.drivers {
		if err := d.Report(m.out); err != nil && first == nil {
			first = err
		}
	}
	for _, d := range m.drivers {
		if err := d.Reset(); err != nil && first == nil {
			first = err
		}
	}
	m.initialized = false
	m.out = nil
	m.drivers = nil
	if first != nil {
		return m.errorf(first)
	}
	return nil
}

// Close resets the module if it is still initialized.
func (m *Module) Close() error {
	if !m.initialized {
		return nil
	}
	return m.Reset()
}

func (m *Module) errorf(err error) error {
	return fmt.Errorf("module %q: %w", m.name, err)
}
