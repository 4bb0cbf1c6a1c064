// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// SeparatorPrefix marks a selection token as a series separator.
const SeparatorPrefix = "-"

// CutStat is a snapshot of the counters of one named cut.
// Accepted+Rejected may be lower than Processed when a cut abstains.
type CutStat struct {
	Name        string
	Description string
	Processed   uint64
	Accepted    uint64
	Rejected    uint64
}

// RenderMode selects how a cut report is rendered.
type RenderMode int

const (
	ModeNone RenderMode = iota
	ModeTree
	ModeTable
	ModeMeter
)

// DefaultRenderMode is used when no print_report value was configured.
const DefaultRenderMode = ModeMeter

func (m RenderMode) String() string {
	switch m {
	case ModeTree:
		return "tree"
	case ModeTable:
		return "table"
	case ModeMeter:
		return "meter"
	default:
		return "none"
	}
}

// ParseRenderMode maps a print_report value to a mode.
func ParseRenderMode(value string) (RenderMode, bool) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "tree":
		return ModeTree, true
	case "table":
		return ModeTable, true
	case "meter":
		return ModeMeter, true
	default:
		return ModeNone, false
	}
}

// IsSeparator reports whether a selection token splits the selection into series.
func IsSeparator(token string) bool {
	return strings.HasPrefix(token, SeparatorPrefix)
}

// DriverConfig holds the parsed options of a report driver.
type DriverConfig struct {
	LogLevel string
	Mode     RenderMode
	Title    string
	Indent   string
	Cuts     []string
	// Color forces ANSI colour on meter bars.
	Color bool
}

// Run describes a stored set of cut counters.
type Run struct {
	ID        int64
	UUID      string
	Label     string
	CreatedAt time.Time
	Cuts      int
}
