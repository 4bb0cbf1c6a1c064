package render

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	colorAccepted = "\x1b[32m"
	colorRejected = "\x1b[31m"
	colorReset    = "\x1b[0m"
)

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
