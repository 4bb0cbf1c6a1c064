package driver

import (
	"io"

	"go.uber.org/zap"

	"github.com/verte-zerg/procreport/internal/model"
)

// GeometryDriverID identifies the geometry report driver in module configuration.
const GeometryDriverID = "GRD"

// GeometrySource is the geometry registry handle.
type GeometrySource interface {
	Source
	SetupLabel() string
}

// NewGeometryReportDriver returns a driver with the geometry lifecycle. Its report body is empty.
func NewGeometryReportDriver(opts ...Option) *Driver[GeometrySource] {
	return New[GeometrySource](GeometryDriverID, renderGeometry, opts...)
}

func renderGeometry(_ io.Writer, src GeometrySource, _ model.DriverConfig, logger *zap.Logger) error {
	logger.Debug("geometry report has no content", zap.String("setup", src.SetupLabel()))
	return nil
}
