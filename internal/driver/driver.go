// Package driver binds report renderers to the statistics source they read from.
//
// A driver goes through a fixed lifecycle: SetSource, Initialize, any number of
// Report calls, then Reset. The source is borrowed: the caller keeps it alive for as
// long as the driver is initialized and must not mutate it during Report.
package driver

import (
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/procreport/internal/config"
	"github.com/verte-zerg/procreport/internal/logging"
	"github.com/verte-zerg/procreport/internal/model"
)

// Property keys read by Initialize.
const (
	KeyTitle       = "title"
	KeyIndent      = "indent"
	KeyPrintReport = "print_report"
	KeyCuts        = "cuts"
	KeyColor       = "color"
)

// Source is what every driver needs from the registry it reports on.
type Source interface {
	IsInitialized() bool
}

// Renderer writes the body of a report for src.
type Renderer[S Source] func(w io.Writer, src S, cfg model.DriverConfig, logger *zap.Logger) error

// Option configures a driver at construction.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger diagnostics go to. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Driver renders reports of one source type.
type Driver[S Source] struct {
	id       string
	renderer Renderer[S]
	base     *zap.Logger

	initialized bool
	logger      *zap.Logger
	source      S
	hasSource   bool
	cfg         model.DriverConfig
}

// New builds an uninitialized driver.
func New[S Source](id string, renderer Renderer[S], opts ...Option) *Driver[S] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	d := &Driver[S]{
		id:       id,
		renderer: renderer,
		base:     o.logger.With(zap.String("driver", id)),
	}
	d.setDefaults()
	return d
}

func (d *Driver[S]) setDefaults() {
	var zero S
	d.initialized = false
	d.logger = logging.WithPriority(d.base, zapcore.WarnLevel)
	d.source = zero
	d.hasSource = false
	d.cfg = model.DriverConfig{LogLevel: logging.DefaultPriority, Mode: model.ModeNone}
}

// ID returns the driver identifier used in module configuration.
func (d *Driver[S]) ID() string { return d.id }

// IsInitialized reports whether Initialize succeeded and Reset was not called since.
func (d *Driver[S]) IsInitialized() bool { return d.initialized }

// HasSource reports whether a source is bound.
func (d *Driver[S]) HasSource() bool { return d.hasSource }

// Config returns the parsed configuration.
func (d *Driver[S]) Config() model.DriverConfig {
	cfg := d.cfg
	cfg.Cuts = append([]string(nil), d.cfg.Cuts...)
	return cfg
}

// Source returns the bound source.
func (d *Driver[S]) Source() (S, error) {
	if !d.hasSource {
		var zero S
		return zero, ErrMissingSource
	}
	return d.source, nil
}

// SetSource binds the statistics source. Only allowed before Initialize.
func (d *Driver[S]) SetSource(src S) error {
	if d.initialized {
		return fmt.Errorf("driver %s: %w", d.id, ErrAlreadyInitialized)
	}
	if isNil(src) {
		return fmt.Errorf("driver %s: %w", d.id, ErrMissingSource)
	}
	d.source = src
	d.hasSource = true
	return nil
}

// isNil also catches an interface holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// Initialize parses props and marks the driver ready.
func (d *Driver[S]) Initialize(props config.Properties) error {
	if d.initialized {
		return fmt.Errorf("driver %s: %w", d.id, ErrAlreadyInitialized)
	}
	if !d.hasSource {
		return fmt.Errorf("driver %s: %w", d.id, ErrMissingSource)
	}
	if !d.source.IsInitialized() {
		return fmt.Errorf("driver %s: %w", d.id, ErrSourceNotReady)
	}

	priority, err := props.StringOr(logging.PriorityKey, logging.DefaultPriority)
	if err != nil {
		return fmt.Errorf("driver %s: %w", d.id, err)
	}
	level, err := logging.ParsePriority(priority)
	if err != nil {
		return fmt.Errorf("driver %s: %w", d.id, err)
	}
	logger := logging.WithPriority(d.base, level)

	cfg, err := parseConfig(props, logger)
	if err != nil {
		return fmt.Errorf("driver %s: %w", d.id, err)
	}
	cfg.LogLevel = priority

	d.logger = logger
	d.cfg = cfg
	d.initialized = true
	logger.Debug("driver initialized",
		zap.Stringer("mode", cfg.Mode),
		zap.Int("cuts", len(cfg.Cuts)))
	return nil
}

func parseConfig(props config.Properties, logger *zap.Logger) (model.DriverConfig, error) {
	cfg := model.DriverConfig{Mode: model.DefaultRenderMode}
	var err error
	if cfg.Title, err = props.StringOr(KeyTitle, ""); err != nil {
		return model.DriverConfig{}, err
	}
	if cfg.Indent, err = props.StringOr(KeyIndent, ""); err != nil {
		return model.DriverConfig{}, err
	}
	if props.Has(KeyPrintReport) {
		value, err := props.String(KeyPrintReport)
		if err != nil {
			return model.DriverConfig{}, err
		}
		if mode, ok := model.ParseRenderMode(value); ok {
			cfg.Mode = mode
		} else {
			logger.Warn("ignoring print_report value",
				zap.String("value", value),
				zap.Stringer("fallback", cfg.Mode),
				zap.Error(ErrUnknownRenderFormat))
		}
	}
	if props.Has(KeyCuts) {
		if cfg.Cuts, err = props.Strings(KeyCuts); err != nil {
			return model.DriverConfig{}, err
		}
	}
	if cfg.Color, err = props.BoolOr(KeyColor, false); err != nil {
		return model.DriverConfig{}, err
	}
	return cfg, nil
}

// Report writes the title, if any, and the rendered report to w.
func (d *Driver[S]) Report(w io.Writer) error {
	if !d.hasSource {
		return fmt.Errorf("driver %s: %w", d.id, ErrMissingSource)
	}
	if d.cfg.Title != "" {
		if _, err := fmt.Fprintf(w, "%s%s\n", d.cfg.Indent, d.cfg.Title); err != nil {
			return err
		}
	}
	return d.renderer(w, d.source, d.Config(), d.logger)
}

// Reset unbinds the source and restores defaults. It does not report.
func (d *Driver[S]) Reset() error {
	if !d.initialized {
		return fmt.Errorf("driver %s: %w", d.id, ErrNotInitialized)
	}
	d.setDefaults()
	return nil
}

// Close resets the driver if it is still initialized.
func (d *Driver[S]) Close() error {
	if !d.initialized {
		return nil
	}
	return d.Reset()
}
