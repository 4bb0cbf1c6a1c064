package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/procreport/internal/model"
)

const (
	nameWidth    = 25
	percentWidth = 8
	ellipsis     = "..."
)

// TableState carries the table geometry across rows of one run.
// The numeric column width is taken from the first row and kept for the whole run.
type TableState struct {
	hline       string
	columnWidth int
	started     bool
}

// NewTableState returns the state for a new run.
func NewTableState() *TableState {
	return &TableState{}
}

// WriteRow writes one cut row. The header is written before the first row of the run
// and a border before the first row of every series.
func (s *TableState) WriteRow(w io.Writer, indent string, stat model.CutStat, seriesStart bool) error {
	if !s.started {
		s.columnWidth = len(strconv.FormatUint(stat.Processed, 10))
		s.hline = borderLine(s.columnWidth)
		s.started = true
		if err := writeLine(w, indent, s.hline); err != nil {
			return err
		}
		if err := writeLine(w, indent, headerLine(s.columnWidth)); err != nil {
			return err
		}
		seriesStart = true
	}
	if seriesStart {
		if err := writeLine(w, indent, s.hline); err != nil {
			return err
		}
	}
	return writeLine(w, indent, s.formatRow(stat))
}

// Close writes the closing border when at least one row was written.
func (s *TableState) Close(w io.Writer, indent string) error {
	if !s.started {
		return nil
	}
	return writeLine(w, indent, s.hline)
}

func (s *TableState) formatRow(stat model.CutStat) string {
	cw := s.columnWidth
	return fmt.Sprintf("| %s | %*d | %*d | %*.2f%% | %*d | %*.2f%% |",
		fitName(stat.Name),
		cw, stat.Processed,
		cw, stat.Accepted,
		percentWidth, Percent(stat.Accepted, stat.Processed),
		cw, stat.Rejected,
		percentWidth, Percent(stat.Rejected, stat.Processed),
	)
}

func borderLine(cw int) string {
	cells := []int{nameWidth + 2, cw + 2, cw + 2, percentWidth + 3, cw + 2, percentWidth + 3}
	var b strings.Builder
	b.WriteByte('+')
	for _, n := range cells {
		b.WriteString(strings.Repeat("-", n))
		b.WriteByte('+')
	}
	return b.String()
}

func headerLine(cw int) string {
	span := cw + percentWidth + 4
	return "| " + padCell("Cut name", nameWidth) +
		" | " + strings.Repeat(" ", cw) +
		" | " + padCell("Accepted", span) +
		" | " + padCell("Rejected", span) + " |"
}

// fitName pads a name to the name column, or truncates it keeping room for the ellipsis.
func fitName(name string) string {
	if runewidth.StringWidth(name) > nameWidth {
		name = runewidth.Truncate(name, nameWidth, ellipsis)
	}
	return padCell(name, nameWidth)
}

func padCell(value string, width int) string {
	return runewidth.FillRight(value, width)
}

func writeLine(w io.Writer, indent, line string) error {
	_, err := fmt.Fprintf(w, "%s%s\n", indent, line)
	return err
}
