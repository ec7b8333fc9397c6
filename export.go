package xlsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Export writes every tracked sheet, in order, into a new workbook at path.
// All values are written as text; nothing but rows and cells is carried over.
func (m *Manager) Export(path string) error {
	f, err := m.newExportFile()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fileError(path, err)
	}
	return nil
}

// ExportTo is Export writing the new workbook to w.
func (m *Manager) ExportTo(w io.Writer) error {
	f, err := m.newExportFile()
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (m *Manager) newExportFile() (*excelize.File, error) {
	f := excelize.NewFile()
	for idx, name := range m.wb.order {
		if idx == 0 {
			// The new file starts with one default sheet; reuse it as the first.
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeExportSheet(f, name, m.wb.sheets[name].rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeExportSheet(f *excelize.File, name string, rows [][]string) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("stream sheet %q: %w", name, err)
	}
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("write %s!%s: %w", name, cell, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet %q: %w", name, err)
	}
	return nil
}
