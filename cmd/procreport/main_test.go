package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countersTOML = `label = "physics"

[[cuts]]
name = "trigger"
description = "L1 trigger"
processed = 100
accepted = 80
rejected = 20

[[cuts]]
name = "quality"
processed = 80
accepted = 50
rejected = 30
`

type env struct {
	dir    string
	config string
	db     string
}

func newEnv(t *testing.T, configBody string) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		db:     filepath.Join(dir, "runs.db"),
	}
	require.NoError(t, os.WriteFile(e.config, []byte(configBody), 0o644))
	return e
}

func (e env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.config, "--db", e.db}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e env) importCounters(t *testing.T) {
	t.Helper()
	path := filepath.Join(e.dir, "counters.toml")
	require.NoError(t, os.WriteFile(path, []byte(countersTOML), 0o644))
	out, _, err := e.run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported run 1 (physics) with 2 cuts")
}

func TestReportTableFromConfig(t *testing.T) {
	e := newEnv(t, `output = "cout"
drivers = ["CRD"]

[CRD]
title = "Selection"
print_report = "table"
cuts = ["trigger", "quality"]
`)
	e.importCounters(t)

	out, _, err := e.run(t, "report")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Selection", lines[0])
	assert.Equal(t, "| trigger                   | 100 |  80 |    80.00% |  20 |    20.00% |", lines[4])
	assert.Equal(t, "| quality                   |  80 |  50 |    62.50% |  30 |    37.50% |", lines[5])
}

func TestReportFlagsOverrideConfig(t *testing.T) {
	e := newEnv(t, `[CRD]
print_report = "table"
`)
	e.importCounters(t)

	out, _, err := e.run(t, "report", "--mode", "tree", "--cuts", "quality")
	require.NoError(t, err)
	assert.Contains(t, out, "Cut 'quality' status report :")
	assert.NotContains(t, out, "trigger")
}

func TestReportUnknownModeFallsBackToMeter(t *testing.T) {
	e := newEnv(t, "")
	e.importCounters(t)

	out, errOut, err := e.run(t, "report", "--mode", "pie")
	require.NoError(t, err)
	assert.Contains(t, out, "Cut 'trigger'")
	assert.Contains(t, out, "accepted |")
	assert.Contains(t, errOut, "ignoring print_report value")
}

func TestReportColorFlag(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	e := newEnv(t, "")
	e.importCounters(t)

	out, _, err := e.run(t, "report", "--cuts", "trigger")
	require.NoError(t, err)
	assert.NotContains(t, out, "\x1b[")

	out, _, err = e.run(t, "report", "--cuts", "trigger", "--color")
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[32m")
	assert.Contains(t, out, "\x1b[31m")
}

func TestReportToClog(t *testing.T) {
	e := newEnv(t, "")
	e.importCounters(t)

	out, errOut, err := e.run(t, "report", "--output", "clog", "--drivers", "CRD GRD")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Cut 'quality'")
}

func TestReportRejectsFileOutput(t *testing.T) {
	e := newEnv(t, `output = "file"
"output.filename" = "report.txt"
`)
	e.importCounters(t)

	_, _, err := e.run(t, "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestReportWithoutRuns(t *testing.T) {
	e := newEnv(t, "")
	_, _, err := e.run(t, "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestRunsListsImportedRuns(t *testing.T) {
	e := newEnv(t, "")
	out, _, err := e.run(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs stored")

	e.importCounters(t)
	out, _, err = e.run(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "physics")
	assert.Contains(t, out, "LABEL")
}

func TestExportMarkdown(t *testing.T) {
	e := newEnv(t, "")
	e.importCounters(t)

	out, _, err := e.run(t, "export", "--cuts", "trigger - quality")
	require.NoError(t, err)
	assert.Contains(t, out, "# Run 1: physics")
	assert.Contains(t, out, "`trigger`")
	assert.Contains(t, out, "62.50%")

	_, _, err = e.run(t, "export", "--format", "csv")
	require.Error(t, err)
}

func TestImportRejectsDuplicateCuts(t *testing.T) {
	e := newEnv(t, "")
	path := filepath.Join(e.dir, "dup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cuts:\n  - name: a\n  - name: a\n"), 0o644))
	_, _, err := e.run(t, "import", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate cut")
}

func TestInvalidLogLevel(t *testing.T) {
	e := newEnv(t, "")
	_, _, err := e.run(t, "--log-level", "loud", "runs")
	require.Error(t, err)
}

func TestDefaultConfigTemplateIsValidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644))
	e := env{dir: dir, config: path, db: filepath.Join(dir, "runs.db")}
	e.importCounters(t)
	_, _, err := e.run(t, "report")
	require.NoError(t, err)
}
