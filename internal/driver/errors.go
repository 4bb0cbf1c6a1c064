package driver

import "errors"

// Lifecycle and configuration errors. Callers match them with errors.Is.
var (
	// ErrAlreadyInitialized is returned by Initialize or SetSource on an initialized driver.
	ErrAlreadyInitialized = errors.New("driver is already initialized")

	// ErrNotInitialized is returned by Reset on a driver that was never initialized.
	ErrNotInitialized = errors.New("driver is not initialized")

	// ErrMissingSource is returned when no statistics source is bound.
	ErrMissingSource = errors.New("missing statistics source")

	// ErrSourceNotReady is returned when the bound source is not initialized itself.
	ErrSourceNotReady = errors.New("statistics source is not initialized")

	// ErrUnknownRenderFormat tags the warning logged for an unrecognised print_report value.
	// Initialization does not fail on it; the default mode is used instead.
	ErrUnknownRenderFormat = errors.New("unknown report format")
)
