// Package levels reads a building level schedule from a worksheet.
//
// The expected layout is a header row followed by one row per level:
//
//	Name | height in metres | height in feet
//
// Which height column is read depends on the chosen Unit.
package levels

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/javajack/xlsheet"
)

// FeetPerMetre is the conversion factor between the two height columns.
const FeetPerMetre = 3.2808399

// Unit selects the height column of the schedule.
type Unit string

const (
	Metric   Unit = "metric"
	Imperial Unit = "imperial"
)

// ParseUnit accepts "metric"/"imperial" in any case.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case Metric, "":
		return Metric, nil
	case Imperial:
		return Imperial, nil
	}
	return "", fmt.Errorf("unknown unit %q (want metric or imperial)", s)
}

// column returns the schedule column holding heights in u.
func (u Unit) column() int {
	if u == Imperial {
		return 2
	}
	return 1
}

// Level is one row of the schedule.
type Level struct {
	Name      string
	Elevation float64 // in Unit
	Unit      Unit
}

// Metres returns the elevation in metres.
func (l Level) Metres() float64 {
	if l.Unit == Imperial {
		return FeetToMetres(l.Elevation)
	}
	return l.Elevation
}

// Feet returns the elevation in feet.
func (l Level) Feet() float64 {
	if l.Unit == Imperial {
		return l.Elevation
	}
	return l.Elevation * FeetPerMetre
}

// FeetToMetres converts a length in feet to metres.
func FeetToMetres(feet float64) float64 {
	return feet / FeetPerMetre
}

// Options selects which plan views are derived for each level.
type Options struct {
	Unit         Unit
	FloorPlans   bool
	CeilingPlans bool
}

// ErrEmptySchedule is returned for a sheet without any level rows.
var ErrEmptySchedule = errors.New("level schedule has no rows")

// Read parses every level of the named sheet, skipping the header row.
func Read(m *xlsheet.Manager, sheet string, unit Unit) ([]Level, error) {
	count, err := m.RowCount(sheet)
	if err != nil {
		return nil, err
	}
	if count < 2 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrEmptySchedule)
	}

	col := unit.column()
	out := make([]Level, 0, count-1)
	for i := 1; i < count; i++ {
		name, err := m.Cell(sheet, i, 0)
		if err != nil {
			return nil, err
		}
		raw, err := m.Cell(sheet, i, col)
		if err != nil {
			return nil, err
		}
		h, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("level %q at %s: height %q is not a number",
				name, xlsheet.NewCellRef(sheet, i, col), raw)
		}
		out = append(out, Level{Name: name, Elevation: h, Unit: unit})
	}
	return out, nil
}

// ViewNames returns the plan view names derived for a level.
func (o Options) ViewNames(l Level) []string {
	var names []string
	if o.FloorPlans {
		names = append(names, l.Name+"_Floor Plan")
	}
	if o.CeilingPlans {
		names = append(names, l.Name+"_Ceiling Plan")
	}
	return names
}
