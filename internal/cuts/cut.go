// Package cuts holds named cut counters and the manager that serves them to report drivers.
package cuts

import (
	"fmt"
	"io"

	"github.com/verte-zerg/procreport/internal/model"
)

// Result is the outcome of applying a cut to one entry.
type Result int

const (
	// Inapplicable means the cut abstained: the entry counts as processed only.
	Inapplicable Result = iota
	Accepted
	Rejected
)

// Tree dump tags.
const (
	Tag         = "|-- "
	LastTag     = "`-- "
	SkipTag     = "|   "
	LastSkipTag = "    "
)

// Cut counts how many entries a selection criterion processed, accepted and rejected.
type Cut struct {
	name        string
	description string
	processed   uint64
	accepted    uint64
	rejected    uint64
}

// Name returns the cut name.
func (c *Cut) Name() string { return c.name }

// Description returns the optional description.
func (c *Cut) Description() string { return c.description }

// Processed returns the number of entries seen.
func (c *Cut) Processed() uint64 { return c.processed }

// Accepted returns the number of accepted entries.
func (c *Cut) Accepted() uint64 { return c.accepted }

// Rejected returns the number of rejected entries.
func (c *Cut) Rejected() uint64 { return c.rejected }

// Record counts one entry.
func (c *Cut) Record(r Result) {
	c.processed++
	switch r {
	case Accepted:
		c.accepted++
	case Rejected:
		c.rejected++
	}
}

// Stat returns a snapshot of the counters.
func (c *Cut) Stat() model.CutStat {
	return model.CutStat{
		Name:        c.name,
		Description: c.description,
		Processed:   c.processed,
		Accepted:    c.accepted,
		Rejected:    c.rejected,
	}
}

// TreeDump writes the counters as an indented tree.
func (c *Cut) TreeDump(w io.Writer, indent string) error {
	lines := []string{fmt.Sprintf("Name              : '%s'", c.name)}
	if c.description != "" {
		lines = append(lines, fmt.Sprintf("Description       : '%s'", c.description))
	}
	lines = append(lines,
		fmt.Sprintf("Processed entries : %d", c.processed),
		fmt.Sprintf("Accepted entries  : %d", c.accepted),
		fmt.Sprintf("Rejected entries  : %d", c.rejected),
	)
	for i, line := range lines {
		tag := Tag
		if i == len(lines)-1 {
			tag = LastTag
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, tag, line); err != nil {
			return err
		}
	}
	return nil
}
