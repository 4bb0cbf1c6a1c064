// Package main provides the CLI entrypoint for procreport.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/procreport/internal/config"
	"github.com/verte-zerg/procreport/internal/cuts"
	"github.com/verte-zerg/procreport/internal/driver"
	"github.com/verte-zerg/procreport/internal/geometry"
	"github.com/verte-zerg/procreport/internal/logging"
	"github.com/verte-zerg/procreport/internal/model"
	"github.com/verte-zerg/procreport/internal/module"
	"github.com/verte-zerg/procreport/internal/render"
	"github.com/verte-zerg/procreport/internal/service"
	"github.com/verte-zerg/procreport/internal/store"
	"github.com/verte-zerg/procreport/internal/viewer"
)

const (
	defaultModuleName      = "procreport"
	defaultGeometryVersion = "v1"
	defaultTitle           = "Cut report"
)

const (
	formatMarkdown = "markdown"
	formatTable    = "table"
)

type cli struct {
	configPath string
	dbPath     string
	logLevel   string
	logger     *zap.Logger

	runID   int64
	output  string
	mode    string
	title   string
	indent  string
	cuts    string
	drivers string
	color   bool

	label  string
	format string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:           "procreport",
		Short:         "Cut report drivers for stored processing runs",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logging.ParsePriority(c.logLevel)
			if err != nil {
				return err
			}
			c.logger = logging.New(cmd.ErrOrStderr(), zap.NewAtomicLevelAt(level))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultConfigPath(), "configuration file (TOML or YAML)")
	rootCmd.PersistentFlags().StringVar(&c.dbPath, "db", config.DefaultDBPath(), "run database path")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", logging.DefaultPriority, "logging priority (fatal..trace)")

	rootCmd.AddCommand(c.newReportCmd())
	rootCmd.AddCommand(c.newImportCmd())
	rootCmd.AddCommand(c.newRunsCmd())
	rootCmd.AddCommand(c.newViewCmd())
	rootCmd.AddCommand(c.newExportCmd())
	rootCmd.AddCommand(c.newConfigCmd())

	return rootCmd
}

func (c *cli) newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the report module over a stored run",
		Args:  cobra.NoArgs,
		RunE:  c.runReportCmd,
	}
	cmd.Flags().Int64Var(&c.runID, "run", 0, "run id (default: latest)")
	cmd.Flags().StringVar(&c.output, "output", module.OutputCout, "output stream (cout, clog)")
	cmd.Flags().StringVar(&c.drivers, "drivers", driver.CutDriverID, "space separated driver ids (CRD, GRD)")
	cmd.Flags().StringVar(&c.mode, "mode", model.DefaultRenderMode.String(), "cut report mode (tree, table, meter)")
	cmd.Flags().StringVar(&c.title, "title", "", "cut report title")
	cmd.Flags().StringVar(&c.indent, "indent", "", "cut report indentation")
	cmd.Flags().StringVar(&c.cuts, "cuts", "", "space separated cut selection; '-' starts a new series")
	cmd.Flags().BoolVar(&c.color, "color", false, "colour meter bars even when not writing to a terminal")
	return cmd
}

func (c *cli) runReportCmd(cmd *cobra.Command, _ []string) error {
	props, err := c.loadProperties(cmd)
	if err != nil {
		return err
	}
	setDefault(props, module.KeyOutput, c.output)
	setDefault(props, module.KeyDrivers, strings.Fields(c.drivers))
	applyStringFlag(cmd, "output", props, module.KeyOutput, c.output)
	applyListFlag(cmd, "drivers", props, module.KeyDrivers, c.drivers)
	cutPrefix := driver.CutDriverID + "."
	applyStringFlag(cmd, "mode", props, cutPrefix+driver.KeyPrintReport, c.mode)
	applyStringFlag(cmd, "title", props, cutPrefix+driver.KeyTitle, c.title)
	applyStringFlag(cmd, "indent", props, cutPrefix+driver.KeyIndent, c.indent)
	applyListFlag(cmd, "cuts", props, cutPrefix+driver.KeyCuts, c.cuts)
	applyBoolFlag(cmd, "color", props, cutPrefix+driver.KeyColor, c.color)

	run, stats, err := c.loadRun(cmd.Context())
	if err != nil {
		return err
	}
	cm, err := newCutManager(stats)
	if err != nil {
		return err
	}
	gm := geometry.NewManager(run.Label, defaultGeometryVersion)
	if err := gm.Initialize(); err != nil {
		return err
	}
	services, err := newServices(props, cm, gm)
	if err != nil {
		return err
	}

	mod := module.New(defaultModuleName,
		module.WithLogger(c.logger),
		module.WithStreams(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)
	if err := mod.Initialize(props, services); err != nil {
		return fmt.Errorf("failed to initialize report module: %w", err)
	}
	defer func() {
		if cerr := mod.Close(); cerr != nil {
			c.logger.Error("failed to close report module", zap.Error(cerr))
		}
	}()
	if _, err := mod.Process(); err != nil {
		return err
	}
	c.logger.Info("reporting run", zap.Int64("run", run.ID), zap.String("label", run.Label))
	return mod.Reset()
}

func (c *cli) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store cut counters from a TOML or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runImportCmd,
	}
	cmd.Flags().StringVar(&c.label, "label", "", "run label (default: file label or name)")
	return cmd
}

func (c *cli) runImportCmd(cmd *cobra.Command, args []string) error {
	cf, err := config.LoadCounters(args[0])
	if err != nil {
		return fmt.Errorf("failed to load counters: %w", err)
	}
	label := c.label
	if label == "" {
		label = cf.Label
	}
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	st, err := store.Open(c.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer c.closeStore(st)

	run, err := st.InsertRun(cmd.Context(), label, time.Now(), cf.Stats())
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported run %d (%s) with %d cuts\n", run.ID, run.Label, run.Cuts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (c *cli) newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE:  c.runRunsCmd,
	}
}

func (c *cli) runRunsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(c.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer c.closeStore(st)

	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No runs stored. Import one with: procreport import <file>")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Label", "Cuts", "Created", "UUID"})
	for _, run := range runs {
		t.AppendRow(table.Row{run.ID, run.Label, run.Cuts, run.CreatedAt.Local().Format(time.DateTime), run.UUID})
	}
	t.Render()
	return nil
}

func (c *cli) newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse a stored run in every report mode",
		Args:  cobra.NoArgs,
		RunE:  c.runViewCmd,
	}
	cmd.Flags().Int64Var(&c.runID, "run", 0, "run id (default: latest)")
	cmd.Flags().StringVar(&c.cuts, "cuts", "", "space separated cut selection; '-' starts a new series")
	return cmd
}

func (c *cli) runViewCmd(cmd *cobra.Command, _ []string) error {
	run, stats, err := c.loadRun(cmd.Context())
	if err != nil {
		return err
	}
	cm, err := newCutManager(stats)
	if err != nil {
		return err
	}
	m := viewer.NewModel(cm, runTitle(run), strings.Fields(c.cuts))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

func (c *cli) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a stored run as markdown or a text table",
		Args:  cobra.NoArgs,
		RunE:  c.runExportCmd,
	}
	cmd.Flags().Int64Var(&c.runID, "run", 0, "run id (default: latest)")
	cmd.Flags().StringVar(&c.format, "format", formatMarkdown, "output format (markdown, table)")
	cmd.Flags().StringVar(&c.cuts, "cuts", "", "space separated cut selection; '-' starts a new series")
	return cmd
}

func (c *cli) runExportCmd(cmd *cobra.Command, _ []string) error {
	run, stats, err := c.loadRun(cmd.Context())
	if err != nil {
		return err
	}
	cm, err := newCutManager(stats)
	if err != nil {
		return err
	}
	selection := strings.Fields(c.cuts)
	switch strings.ToLower(strings.TrimSpace(c.format)) {
	case formatMarkdown:
		return render.WriteMarkdown(cmd.OutOrStdout(), runTitle(run), cm, selection, c.logger)
	case formatTable:
		opts := render.Options{Mode: model.ModeTable, Indent: "", Cuts: selection}
		return render.Render(cmd.OutOrStdout(), cm, opts, c.logger)
	default:
		return fmt.Errorf("unknown --format %q (want %s or %s)", c.format, formatMarkdown, formatTable)
	}
}

func (c *cli) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  c.runConfigCmd,
	}
}

func (c *cli) runConfigCmd(_ *cobra.Command, _ []string) error {
	path := c.configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...) //nolint:gosec // Editor comes from the user's environment
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// loadProperties reads the configuration file. A missing file is only an
// error when --config was given explicitly.
func (c *cli) loadProperties(cmd *cobra.Command) (config.Properties, error) {
	props, err := config.LoadProperties(c.configPath)
	if err == nil {
		return props, nil
	}
	if errors.Is(err, config.ErrConfigNotFound) && !cmd.Flags().Changed("config") {
		c.logger.Debug("no configuration file", zap.String("path", c.configPath))
		return config.Properties{}, nil
	}
	return nil, fmt.Errorf("failed to load config: %w", err)
}

func (c *cli) loadRun(ctx context.Context) (model.Run, []model.CutStat, error) {
	st, err := store.Open(c.dbPath)
	if err != nil {
		return model.Run{}, nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer c.closeStore(st)

	var run model.Run
	if c.runID > 0 {
		run, err = st.GetRun(ctx, c.runID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return model.Run{}, nil, fmt.Errorf("%w; import one with: procreport import <file>", err)
		}
		return model.Run{}, nil, fmt.Errorf("failed to load run: %w", err)
	}
	stats, err := st.LoadRun(ctx, run.ID)
	if err != nil {
		return model.Run{}, nil, fmt.Errorf("failed to load run %d: %w", run.ID, err)
	}
	return run, stats, nil
}

func (c *cli) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		c.logger.Error("failed to close db", zap.Error(err))
	}
}

func newCutManager(stats []model.CutStat) (*cuts.Manager, error) {
	cm := cuts.NewManager()
	if err := cm.Load(stats); err != nil {
		return nil, fmt.Errorf("failed to load cuts: %w", err)
	}
	if err := cm.Initialize(); err != nil {
		return nil, err
	}
	return cm, nil
}

func newServices(props config.Properties, cm *cuts.Manager, gm *geometry.Manager) (*service.Manager, error) {
	cutLabel, err := props.StringOr(module.KeyCutLabel, service.DefaultCutLabel)
	if err != nil {
		return nil, err
	}
	geoLabel, err := props.StringOr(module.KeyGeoLabel, service.DefaultGeometryLabel)
	if err != nil {
		return nil, err
	}
	services := service.NewManager()
	if err := services.Register(cutLabel, service.NewCutService(cm)); err != nil {
		return nil, err
	}
	if err := services.Register(geoLabel, service.NewGeometryService(gm)); err != nil {
		return nil, err
	}
	return services, nil
}

func runTitle(run model.Run) string {
	return fmt.Sprintf("Run %d: %s", run.ID, run.Label)
}

func setDefault(props config.Properties, key string, value any) {
	if props.Has(key) {
		return
	}
	props[key] = value
}

func applyStringFlag(cmd *cobra.Command, name string, props config.Properties, key, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	props[key] = value
}

func applyBoolFlag(cmd *cobra.Command, name string, props config.Properties, key string, value bool) {
	if !cmd.Flags().Changed(name) {
		return
	}
	props[key] = value
}

func applyListFlag(cmd *cobra.Command, name string, props config.Properties, key, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	props[key] = strings.Fields(value)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# procreport configuration
# Uncomment a value to enable it. CLI flags override config values.

# output = %q             # cout or clog
# drivers = [%q]          # report drivers, in order (CRD, GRD)
# Cut_label = %q         # cut service label
# Geo_label = %q     # geometry service label
# "logging.priority" = %q

[CRD]
# title = %q
# indent = "  "
# print_report = %q        # tree, table or meter
# color = false            # colour meter bars outside a terminal
# cuts = ["trigger", "-", "quality"]
# "logging.priority" = "warning"
`,
		module.OutputCout,
		driver.CutDriverID,
		service.DefaultCutLabel,
		service.DefaultGeometryLabel,
		logging.DefaultPriority,
		defaultTitle,
		model.DefaultRenderMode.String(),
	)
}
