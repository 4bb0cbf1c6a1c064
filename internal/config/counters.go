package config

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/procreport/internal/model"
)

// CountersFile is an exported snapshot of cut counters, written by the processing pipeline.
type CountersFile struct {
	Label string       `toml:"label" yaml:"label"`
	Cuts  []CutCounter `toml:"cuts" yaml:"cuts"`
}

// CutCounter maps one cut entry of a counters file.
type CutCounter struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	Processed   uint64 `toml:"processed" yaml:"processed"`
	Accepted    uint64 `toml:"accepted" yaml:"accepted"`
	Rejected    uint64 `toml:"rejected" yaml:"rejected"`
}

// LoadCounters reads a TOML or YAML counters file.
func LoadCounters(path string) (CountersFile, error) {
	var cf CountersFile
	if err := decodeFile(path, &cf); err != nil {
		return CountersFile{}, err
	}
	seen := make(map[string]struct{}, len(cf.Cuts))
	for i, c := range cf.Cuts {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return CountersFile{}, fmt.Errorf("cut #%d has no name", i+1)
		}
		if model.IsSeparator(name) {
			return CountersFile{}, fmt.Errorf("cut name %q must not start with %q", name, model.SeparatorPrefix)
		}
		if _, dup := seen[name]; dup {
			return CountersFile{}, fmt.Errorf("duplicate cut %q", name)
		}
		seen[name] = struct{}{}
		cf.Cuts[i].Name = name
	}
	return cf, nil
}

// Stats converts the file entries to cut snapshots, preserving order.
func (cf CountersFile) Stats() []model.CutStat {
	out := make([]model.CutStat, 0, len(cf.Cuts))
	for _, c := range cf.Cuts {
		out = append(out, model.CutStat{
			Name:        c.Name,
			Description: c.Description,
			Processed:   c.Processed,
			Accepted:    c.Accepted,
			Rejected:    c.Rejected,
		})
	}
	return out
}
