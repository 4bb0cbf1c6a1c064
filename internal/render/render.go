// Package render formats cut statistics as trees, fixed-width tables or ASCII meters.
package render

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/verte-zerg/procreport/internal/model"
)

// Source is the read-only view of the cut registry a report is built from.
type Source interface {
	Has(name string) bool
	Stat(name string) model.CutStat
	Names() []string
	Dump(w io.Writer, name, indent string) error
}

// Options configures one report rendering.
type Options struct {
	Mode   model.RenderMode
	Indent string
	// Cuts is the explicit selection; tokens starting with "-" separate series.
	Cuts []string
	// ForceColor colours meter bars even when w is not a terminal.
	ForceColor bool
}

type row struct {
	stat  model.CutStat
	start bool
}

// Resolve returns the selection, or every cut known to src when the selection is empty.
func Resolve(src Source, selection []string) []string {
	if len(selection) > 0 {
		return append([]string(nil), selection...)
	}
	return src.Names()
}

// Render writes the report for the resolved selection to w.
// Unknown cut names are logged at warning level and skipped.
func Render(w io.Writer, src Source, opts Options, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	rows := collectRows(src, Resolve(src, opts.Cuts), logger)
	switch opts.Mode {
	case model.ModeTree:
		return renderTree(w, src, rows, opts.Indent)
	case model.ModeTable:
		state := NewTableState()
		for _, r := range rows {
			if err := state.WriteRow(w, opts.Indent, r.stat, r.start); err != nil {
				return err
			}
		}
		return state.Close(w, opts.Indent)
	case model.ModeMeter:
		meter := newMeterState(shouldUseColor(w, opts.ForceColor))
		for _, r := range rows {
			if err := meter.writeRow(w, opts.Indent, r.stat, r.start); err != nil {
				return err
			}
		}
		return nil
	case model.ModeNone:
		return nil
	default:
		return fmt.Errorf("unknown render mode %d", opts.Mode)
	}
}

func collectRows(src Source, names []string, logger *zap.Logger) []row {
	rows := make([]row, 0, len(names))
	start := true
	for _, name := range names {
		if model.IsSeparator(name) {
			start = true
			continue
		}
		if !src.Has(name) {
			logger.Warn("skipping unknown cut", zap.String("cut", name))
			continue
		}
		rows = append(rows, row{stat: src.Stat(name), start: start})
		start = false
	}
	return rows
}

// Percent returns 100*count/base, or 0 when base is 0.
func Percent(count, base uint64) float64 {
	if base == 0 {
		return 0
	}
	return 100 * float64(count) / float64(base)
}
