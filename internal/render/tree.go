package render

import (
	"fmt"
	"io"
)

const (
	treeTag         = "|-- "
	treeLastTag     = "`-- "
	treeSkipTag     = "|   "
	treeLastSkipTag = "    "
)

func renderTree(w io.Writer, src Source, rows []row, indent string) error {
	for i, r := range rows {
		tag, skip := treeTag, treeSkipTag
		if i == len(rows)-1 {
			tag, skip = treeLastTag, treeLastSkipTag
		}
		if _, err := fmt.Fprintf(w, "%s%sCut '%s' status report :\n", indent, tag, r.stat.Name); err != nil {
			return err
		}
		if err := src.Dump(w, r.stat.Name, indent+skip); err != nil {
			return err
		}
	}
	return nil
}
