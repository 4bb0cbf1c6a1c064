package driver

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/procreport/internal/config"
	"github.com/verte-zerg/procreport/internal/cuts"
	"github.com/verte-zerg/procreport/internal/geometry"
	"github.com/verte-zerg/procreport/internal/model"
)

func newCuts(t *testing.T, stats ...model.CutStat) *cuts.Manager {
	t.Helper()
	m := cuts.NewManager()
	require.NoError(t, m.Load(stats))
	require.NoError(t, m.Initialize())
	return m
}

func runCuts(t *testing.T) *cuts.Manager {
	return newCuts(t,
		model.CutStat{Name: "trigger", Processed: 100, Accepted: 80, Rejected: 20},
		model.CutStat{Name: "quality", Processed: 80, Accepted: 50, Rejected: 30},
	)
}

func TestInitializeRequiresSource(t *testing.T) {
	d := NewCutReportDriver()
	assert.ErrorIs(t, d.Initialize(config.Properties{}), ErrMissingSource)

	notReady := cuts.NewManager()
	require.NoError(t, d.SetSource(notReady))
	assert.ErrorIs(t, d.Initialize(config.Properties{}), ErrSourceNotReady)
	assert.False(t, d.IsInitialized())
}

func TestSetSourceRejectsNilPointer(t *testing.T) {
	d := NewCutReportDriver()
	assert.ErrorIs(t, d.SetSource((*cuts.Manager)(nil)), ErrMissingSource)
	assert.False(t, d.HasSource())
	assert.ErrorIs(t, d.Initialize(config.Properties{}), ErrMissingSource)

	g := NewGeometryReportDriver()
	assert.ErrorIs(t, g.SetSource((*geometry.Manager)(nil)), ErrMissingSource)
	assert.ErrorIs(t, g.Initialize(config.Properties{}), ErrMissingSource)
}

func TestInitializeTwiceKeepsFirstConfig(t *testing.T) {
	d := NewCutReportDriver()
	require.NoError(t, d.SetSource(runCuts(t)))
	require.NoError(t, d.Initialize(config.Properties{"print_report": "table", "title": "first"}))

	err := d.Initialize(config.Properties{"print_report": "tree", "title": "second"})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, model.ModeTable, d.Config().Mode)
	assert.Equal(t, "first", d.Config().Title)

	assert.ErrorIs(t, d.SetSource(runCuts(t)), ErrAlreadyInitialized)
}

func TestReportWithoutSource(t *testing.T) {
	d := NewCutReportDriver()
	var buf bytes.Buffer
	assert.ErrorIs(t, d.Report(&buf), ErrMissingSource)
	assert.Zero(t, buf.Len())
}

func TestResetLifecycle(t *testing.T) {
	d := NewCutReportDriver()
	assert.ErrorIs(t, d.Reset(), ErrNotInitialized)
	require.NoError(t, d.Close())

	require.NoError(t, d.SetSource(runCuts(t)))
	require.NoError(t, d.Initialize(config.Properties{"print_report": "tree", "cuts": []any{"trigger"}}))
	require.NoError(t, d.Reset())

	assert.False(t, d.IsInitialized())
	assert.False(t, d.HasSource())
	assert.Equal(t, model.ModeNone, d.Config().Mode)
	assert.Empty(t, d.Config().Cuts)
	_, err := d.Source()
	assert.ErrorIs(t, err, ErrMissingSource)

	require.NoError(t, d.SetSource(runCuts(t)))
	require.NoError(t, d.Initialize(config.Properties{}))
	require.NoError(t, d.Close())
	assert.False(t, d.IsInitialized())
}

func TestPrintReportDefaultsAndUnknown(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewCutReportDriver(WithLogger(zap.New(core)))
	require.NoError(t, d.SetSource(runCuts(t)))
	require.NoError(t, d.Initialize(config.Properties{"print_report": "bitmask"}))
	assert.Equal(t, model.ModeMeter, d.Config().Mode)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "bitmask", warnings[0].ContextMap()["value"])

	other := NewCutReportDriver()
	require.NoError(t, other.SetSource(runCuts(t)))
	require.NoError(t, other.Initialize(config.Properties{}))
	assert.Equal(t, model.ModeMeter, other.Config().Mode)
}

func TestColorPropertyForcesMeterColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	d := NewCutReportDriver()
	require.NoError(t, d.SetSource(runCuts(t)))
	require.NoError(t, d.Initialize(config.Properties{"color": "true", "cuts": "trigger"}))
	assert.True(t, d.Config().Color)

	var buf bytes.Buffer
	require.NoError(t, d.Report(&buf))
	assert.Contains(t, buf.String(), "|\x1b[32m█████████ \x1b[0m|")

	plain := NewCutReportDriver()
	require.NoError(t, plain.SetSource(runCuts(t)))
	require.NoError(t, plain.Initialize(config.Properties{}))
	buf.Reset()
	require.NoError(t, plain.Report(&buf))
	assert.NotContains(t, buf.String(), "\x1b[")

	bad := NewCutReportDriver()
	require.NoError(t, bad.SetSource(runCuts(t)))
	assert.ErrorIs(t, bad.Initialize(config.Properties{"color": "sometimes"}), config.ErrWrongType)
}

func TestInitializeRejectsBadProperties(t *testing.T) {
	cases := []config.Properties{
		{"logging.priority": "loud"},
		{"title": 3},
		{"cuts": []any{"a", 1}},
		{"print_report": true},
	}
	for _, props := range cases {
		d := NewCutReportDriver()
		require.NoError(t, d.SetSource(runCuts(t)))
		assert.Error(t, d.Initialize(props), "%v", props)
		assert.False(t, d.IsInitialized())
	}
}

func TestEndToEndTable(t *testing.T) {
	d := NewCutReportDriver()
	require.NoError(t, d.SetSource(runCuts(t)))
	require.NoError(t, d.Initialize(config.Properties{
		"print_report": "table",
		"title":        "Cut efficiencies",
		"indent":       "  ",
		"cuts":         []any{"trigger", "quality"},
	}))

	var buf bytes.Buffer
	require.NoError(t, d.Report(&buf))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "  Cut efficiencies", lines[0])

	var rows []string
	for _, line := range lines {
		if strings.HasPrefix(line, "  | trigger") || strings.HasPrefix(line, "  | quality") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "|  80 |")
	assert.Contains(t, rows[1], "62.50%")
}

func TestReportDoesNotMutateSource(t *testing.T) {
	src := runCuts(t)
	before := src.Snapshot()
	d := NewCutReportDriver()
	require.NoError(t, d.SetSource(src))
	require.NoError(t, d.Initialize(config.Properties{"print_report": "tree"}))

	var buf bytes.Buffer
	require.NoError(t, d.Report(&buf))
	require.NoError(t, d.Report(&buf))
	assert.Equal(t, before, src.Snapshot())
}

func TestGeometryDriverIsNoop(t *testing.T) {
	d := NewGeometryReportDriver()
	var buf bytes.Buffer
	assert.ErrorIs(t, d.Report(&buf), ErrMissingSource)

	geo := geometry.NewManager("demonstrator", "2.0")
	require.NoError(t, d.SetSource(geo))
	assert.ErrorIs(t, d.Initialize(config.Properties{}), ErrSourceNotReady)

	require.NoError(t, geo.Initialize())
	require.NoError(t, d.Initialize(config.Properties{}))
	require.NoError(t, d.Report(&buf))
	assert.Zero(t, buf.Len())
	assert.Equal(t, GeometryDriverID, d.ID())
	require.NoError(t, d.Reset())
}
