package xlsheet

import (
	"log/slog"
	"slices"
)

// Manager owns the in-memory table of a workbook package. It is built once,
// fully, by Open; every accessor and mutator afterwards works on memory only.
// Nothing reaches the file again until Save.
//
// A Manager is not safe for concurrent use, and two Managers saving the same
// file overwrite each other: the last Save wins.
type Manager struct {
	path   string
	opts   *Options
	logger *slog.Logger
	wb     *workbook
}

// Open loads every sheet of the workbook at path. It fails with ErrFile if the
// file cannot be opened and ErrFormat if the package structure is malformed.
func Open(path string, opts ...Option) (*Manager, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	wb, err := load(path, o.logger)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path, opts: o, logger: o.logger, wb: wb}, nil
}

// Path returns the file the Manager was opened from and saves to.
func (m *Manager) Path() string {
	return m.path
}

// SheetNames returns the sheet names in workbook definition order.
func (m *Manager) SheetNames() []string {
	return slices.Clone(m.wb.order)
}

func (m *Manager) sheet(op, name string) (*sheet, error) {
	sh, ok := m.wb.sheets[name]
	if !ok {
		return nil, notFound(op, name)
	}
	return sh, nil
}

// Worksheet returns a copy of every row of the named sheet.
func (m *Manager) Worksheet(name string) ([][]string, error) {
	sh, err := m.sheet("worksheet", name)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(sh.rows))
	for i, row := range sh.rows {
		out[i] = slices.Clone(row)
	}
	return out, nil
}

// RowCount returns the number of rows in the named sheet.
func (m *Manager) RowCount(name string) (int, error) {
	sh, err := m.sheet("rows", name)
	if err != nil {
		return 0, err
	}
	return len(sh.rows), nil
}

// Width returns the declared width of the named sheet: the length of its
// first row, or 0 for an empty sheet.
func (m *Manager) Width(name string) (int, error) {
	sh, err := m.sheet("width", name)
	if err != nil {
		return 0, err
	}
	return sh.width(), nil
}

// Row returns a copy of row i.
func (m *Manager) Row(name string, i int) ([]string, error) {
	sh, err := m.sheet("row", name)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(sh.rows) {
		return nil, outOfRange("row", name, i, -1, len(sh.rows))
	}
	return slices.Clone(sh.rows[i]), nil
}

// Column returns column j of every row. The bound on j is the width of the
// first row; rows shorter than j+1 contribute "". Unless includeHeader is
// set, row 0 is left out.
func (m *Manager) Column(name string, j int, includeHeader bool) ([]string, error) {
	sh, err := m.sheet("column", name)
	if err != nil {
		return nil, err
	}
	if w := sh.width(); j < 0 || j >= w {
		return nil, outOfRange("column", name, -1, j, w)
	}
	rows := sh.rows
	if !includeHeader {
		rows = rows[1:]
	}
	col := make([]string, len(rows))
	for k, row := range rows {
		if j < len(row) {
			col[k] = row[j]
		}
	}
	return col, nil
}

// Cell returns the value at row i, column j. The row bound is checked first,
// then the column bound, which is the larger of the row's length and the
// sheet's declared width. Positions past the row's end but inside the
// declared width read as "".
func (m *Manager) Cell(name string, i, j int) (string, error) {
	sh, err := m.sheet("cell", name)
	if err != nil {
		return "", err
	}
	row, err := sh.cellRow("cell", i, j)
	if err != nil {
		return "", err
	}
	if j >= len(row) {
		return "", nil
	}
	return row[j], nil
}

// CellType returns the type the cell at (i, j) had when it was loaded, or
// CellText for values written since. Padded positions report CellBlank.
func (m *Manager) CellType(name string, i, j int) (CellType, error) {
	sh, err := m.sheet("cell", name)
	if err != nil {
		return CellBlank, err
	}
	if _, err := sh.cellRow("cell", i, j); err != nil {
		return CellBlank, err
	}
	if j >= len(sh.types[i]) {
		return CellBlank, nil
	}
	return sh.types[i][j], nil
}

// UpdateCell overwrites an existing cell. It never grows a row.
func (m *Manager) UpdateCell(name string, i, j int, value string) error {
	sh, err := m.sheet("update", name)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(sh.rows) {
		return outOfRange("update", name, i, -1, len(sh.rows))
	}
	if j < 0 || j >= len(sh.rows[i]) {
		return outOfRange("update", name, i, j, len(sh.rows[i]))
	}
	sh.rows[i][j] = value
	sh.types[i][j] = CellText
	sh.dirty = true
	return nil
}

// AddRow appends a copy of values as the last row of the named sheet. Its
// length is not checked against other rows.
func (m *Manager) AddRow(name string, values []string) error {
	sh, err := m.sheet("append", name)
	if err != nil {
		return err
	}
	row := make([]string, len(values))
	copy(row, values)
	types := make([]CellType, len(values))
	for k := range types {
		types[k] = CellText
	}
	sh.rows = append(sh.rows, row)
	sh.types = append(sh.types, types)
	sh.dirty = true
	return nil
}

// Dirty reports whether the named sheet changed since it was loaded or last saved.
func (m *Manager) Dirty(name string) bool {
	sh, ok := m.wb.sheets[name]
	return ok && sh.dirty
}

func (sh *sheet) width() int {
	if len(sh.rows) == 0 {
		return 0
	}
	return len(sh.rows[0])
}

// cellRow validates (i, j) for a read and returns row i.
func (sh *sheet) cellRow(op string, i, j int) ([]string, error) {
	if i < 0 || i >= len(sh.rows) {
		return nil, outOfRange(op, sh.name, i, -1, len(sh.rows))
	}
	row := sh.rows[i]
	bound := max(len(row), sh.width())
	if j < 0 || j >= bound {
		return nil, outOfRange(op, sh.name, i, j, bound)
	}
	return row, nil
}
