package driver

import (
	"io"

	"go.uber.org/zap"

	"github.com/verte-zerg/procreport/internal/model"
	"github.com/verte-zerg/procreport/internal/render"
)

// CutDriverID identifies the cut report driver in module configuration.
const CutDriverID = "CRD"

// CutSource is a cut registry a cut report can be rendered from.
type CutSource interface {
	Source
	render.Source
}

// NewCutReportDriver returns a driver reporting cut efficiencies.
func NewCutReportDriver(opts ...Option) *Driver[CutSource] {
	return New[CutSource](CutDriverID, renderCuts, opts...)
}

func renderCuts(w io.Writer, src CutSource, cfg model.DriverConfig, logger *zap.Logger) error {
	return render.Render(w, src, render.Options{
		Mode:       cfg.Mode,
		Indent:     cfg.Indent,
		Cuts:       cfg.Cuts,
		ForceColor: cfg.Color,
	}, logger)
}
