// Package main provides the xlsheet command-line tool: read and edit the
// rows and cells of an .xlsx workbook in place.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/javajack/xlsheet"
	"github.com/javajack/xlsheet/internal/config"
	"github.com/spf13/cobra"
)

// app carries the resolved configuration shared by all subcommands.
type app struct {
	configPath    string
	sheet         string
	unit          string
	strict        bool
	preserveTypes bool
	logLevel      string

	cfg    config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "xlsheet",
		Short: "Read and edit worksheet rows and cells of an xlsx workbook",
		Long: `xlsheet loads every sheet of an xlsx workbook as plain text rows,
prints or edits them, and writes changed rows back into the same package.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: ./"+config.DefaultFile+" if present)")
	pf.StringVarP(&a.sheet, "sheet", "s", "", "Sheet name (default from config, else Sheet1)")
	pf.BoolVar(&a.strict, "strict", false, "Fail a save when a sheet has no worksheet part")
	pf.BoolVar(&a.preserveTypes, "preserve-types", false, "Keep numeric and boolean cell types on save")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		a.sheetsCmd(),
		a.showCmd(),
		a.rowCmd(),
		a.columnCmd(),
		a.cellCmd(),
		a.setCmd(),
		a.appendCmd(),
		a.describeCmd(),
		a.validateCmd(),
		a.queryCmd(),
		a.exportCmd(),
		a.levelsCmd(),
	)
	return root
}

// init merges the config file with flags; explicitly set flags win.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("sheet") {
		cfg.Sheet = a.sheet
	}
	if flags.Changed("strict") {
		cfg.StrictSave = a.strict
	}
	if flags.Changed("preserve-types") {
		cfg.PreserveTypes = a.preserveTypes
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

func (a *app) open(path string) (*xlsheet.Manager, error) {
	m, err := xlsheet.Open(path,
		xlsheet.WithLogger(a.logger),
		xlsheet.WithStrictSave(a.cfg.StrictSave),
		xlsheet.WithPreserveTypes(a.cfg.PreserveTypes),
	)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return m, nil
}
