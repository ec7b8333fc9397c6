package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/javajack/xlsheet"
	"github.com/javajack/xlsheet/internal/levels"
	"github.com/spf13/cobra"
)

func (a *app) sheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <file.xlsx>",
		Short: "List sheet names in workbook order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			for _, name := range m.SheetNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file.xlsx>",
		Short: "Print every row of a sheet as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			rows, err := m.Worksheet(a.cfg.Sheet)
			if err != nil {
				return err
			}
			return writeCSV(cmd.OutOrStdout(), rows)
		},
	}
}

func (a *app) rowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "row <file.xlsx> <index>",
		Short: "Print one row (0-based) as CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex("row", args[1])
			if err != nil {
				return err
			}
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			row, err := m.Row(a.cfg.Sheet, i)
			if err != nil {
				return err
			}
			return writeCSV(cmd.OutOrStdout(), [][]string{row})
		},
	}
}

func (a *app) columnCmd() *cobra.Command {
	var header bool
	cmd := &cobra.Command{
		Use:   "column <file.xlsx> <index>",
		Short: "Print one column (0-based), one value per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := parseIndex("column", args[1])
			if err != nil {
				return err
			}
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			col, err := m.Column(a.cfg.Sheet, j, header)
			if err != nil {
				return err
			}
			for _, v := range col {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&header, "header", false, "Include the header row")
	return cmd
}

func (a *app) cellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cell <file.xlsx> <ref>",
		Short: "Print one cell, addressed like B3",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.cellRef(args[1])
			if err != nil {
				return err
			}
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			v, err := m.Cell(ref.Sheet, ref.Row, ref.Col)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file.xlsx> <ref> <value>",
		Short: "Overwrite an existing cell and save",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.cellRef(args[1])
			if err != nil {
				return err
			}
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			if err := m.UpdateCell(ref.Sheet, ref.Row, ref.Col, args[2]); err != nil {
				return err
			}
			return m.Save()
		},
	}
}

func (a *app) appendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append <file.xlsx> [value...]",
		Short: "Append a row to the sheet and save",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			if err := m.AddRow(a.cfg.Sheet, args[1:]); err != nil {
				return err
			}
			return m.Save()
		},
	}
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <file.xlsx>",
		Short: "Summarize sheets, sizes and headers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), m.Describe())
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.xlsx>",
		Short: "Check that a sheet is a well-formed header-plus-rows table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			issues, err := m.Validate(a.cfg.Sheet)
			if err != nil {
				return err
			}
			failed := false
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue)
				failed = failed || issue.Severity == xlsheet.SeverityError
			}
			if failed {
				return fmt.Errorf("sheet %q is not a valid table", a.cfg.Sheet)
			}
			return nil
		},
	}
}

func (a *app) queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <file.xlsx> <condition>",
		Short: "Print data rows matching an expression, e.g. 'num(H_m) > 3'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			rows, err := m.Filter(a.cfg.Sheet, args[1])
			if err != nil {
				return err
			}
			return writeCSV(cmd.OutOrStdout(), rows)
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx> <out.xlsx>",
		Short: "Write all sheets as text into a new workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			return m.Export(args[1])
		},
	}
}

func (a *app) levelsCmd() *cobra.Command {
	var opts levels.Options
	cmd := &cobra.Command{
		Use:   "levels <file.xlsx>",
		Short: "Read a level schedule (name, height m, height ft)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit := a.cfg.Unit
			if cmd.Flags().Changed("unit") {
				unit = a.unit
			}
			u, err := levels.ParseUnit(unit)
			if err != nil {
				return err
			}
			opts.Unit = u
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			lvls, err := levels.Read(m, a.cfg.Sheet, opts.Unit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range lvls {
				fmt.Fprintf(out, "%s\t%.3f m\t%.3f ft\n", l.Name, l.Metres(), l.Feet())
				for _, v := range opts.ViewNames(l) {
					fmt.Fprintf(out, "  %s\n", v)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&a.unit, "unit", "", "Height column to read: metric or imperial")
	cmd.Flags().BoolVar(&opts.FloorPlans, "floor-plans", false, "List floor plan view names")
	cmd.Flags().BoolVar(&opts.CeilingPlans, "ceiling-plans", false, "List ceiling plan view names")
	return cmd
}

// cellRef parses an A1 reference, defaulting the sheet to the configured one.
func (a *app) cellRef(s string) (xlsheet.CellRef, error) {
	ref, err := xlsheet.ParseCellRef(s)
	if err != nil {
		return ref, err
	}
	if ref.Sheet == "" {
		ref.Sheet = a.cfg.Sheet
	}
	return ref, nil
}

func parseIndex(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s index %q is not an integer", what, s)
	}
	return n, nil
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
