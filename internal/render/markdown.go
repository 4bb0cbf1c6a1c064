package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"go.uber.org/zap"
)

// WriteMarkdown writes the selected cuts as a Markdown document with one table per series.
// Percentages are relative to each cut's own processed count.
func WriteMarkdown(w io.Writer, title string, src Source, selection []string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Cut report"
	}
	md := markdown.NewMarkdown(w)
	md.H1(title)
	md.PlainText("")

	rows := collectRows(src, Resolve(src, selection), logger)
	if len(rows) == 0 {
		md.Note("No cuts to report.")
		return md.Build()
	}

	var series [][]string
	flush := func() {
		if len(series) == 0 {
			return
		}
		md.Table(markdown.TableSet{
			Header: []string{"Cut", "Processed", "Accepted", "Accepted %", "Rejected", "Rejected %"},
			Rows:   series,
		})
		md.PlainText("")
		series = nil
	}
	for _, r := range rows {
		if r.start {
			flush()
		}
		s := r.stat
		series = append(series, []string{
			"`" + s.Name + "`",
			strconv.FormatUint(s.Processed, 10),
			strconv.FormatUint(s.Accepted, 10),
			fmt.Sprintf("%.2f%%", Percent(s.Accepted, s.Processed)),
			strconv.FormatUint(s.Rejected, 10),
			fmt.Sprintf("%.2f%%", Percent(s.Rejected, s.Processed)),
		})
	}
	flush()
	return md.Build()
}
