package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/procreport/internal/model"
)

const (
	meterCells  = 10
	meterFilled = "█"
	meterEmpty  = " "
)

// meterState holds the normalisation base of the current series.
// Every row of a series is scaled against the processed count of its first row.
type meterState struct {
	norm     uint64
	digit    int
	useColor bool
}

func newMeterState(useColor bool) *meterState {
	return &meterState{useColor: useColor}
}

func (m *meterState) writeRow(w io.Writer, indent string, stat model.CutStat, seriesStart bool) error {
	if seriesStart {
		m.norm = stat.Processed
		m.digit = digitWidth(stat.Processed)
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	if err := writeLine(w, indent, fmt.Sprintf("Cut '%s'", stat.Name)); err != nil {
		return err
	}
	accepted := Percent(stat.Accepted, m.norm)
	rejected := Percent(stat.Rejected, m.norm)
	line := fmt.Sprintf("  accepted |%s| %*d (%6.2f%%)  rejected |%s| %*d (%6.2f%%)",
		m.colorize(meterBar(accepted), colorAccepted), m.digit, stat.Accepted, accepted,
		m.colorize(meterBar(rejected), colorRejected), m.digit, stat.Rejected, rejected,
	)
	return writeLine(w, indent, line)
}

func (m *meterState) colorize(bar, code string) string {
	if !m.useColor {
		return bar
	}
	return code + bar + colorReset
}

// FilledCells returns how many of the ten meter cells a percentage fills.
func FilledCells(percent float64) int {
	if percent <= 0 {
		return 0
	}
	n := int(math.Floor(percent/10)) + 1
	if n > meterCells {
		n = meterCells
	}
	return n
}

func meterBar(percent float64) string {
	filled := FilledCells(percent)
	return strings.Repeat(meterFilled, filled) + strings.Repeat(meterEmpty, meterCells-filled)
}

// digitWidth is ceil(log10(n+1)), at least 1.
func digitWidth(n uint64) int {
	d := int(math.Ceil(math.Log10(float64(n) + 1)))
	if d < 1 {
		d = 1
	}
	return d
}
