package xlsheet

import (
	"errors"
	"fmt"
)

// ErrFile indicates the underlying file could not be opened, read, or written.
var ErrFile = errors.New("file error")

// ErrFormat indicates the package opened but its workbook, worksheet, or
// shared-string structure is malformed.
var ErrFormat = errors.New("invalid workbook format")

// ErrNotFound indicates a sheet name that is not tracked by the Manager.
var ErrNotFound = errors.New("sheet not found")

// ErrIndexOutOfRange indicates a row or column index outside current bounds.
var ErrIndexOutOfRange = errors.New("index out of range")

// PackageError reports a failure tied to the package file or one of its parts.
type PackageError struct {
	Path string
	Part string // package part name, empty when the whole file is concerned
	Err  error
}

func (e *PackageError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Path, e.Part, e.Err)
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

// SheetError reports a failed accessor or mutator call against the table store.
type SheetError struct {
	Op    string // "row", "column", "cell", "update", "append", "save"
	Sheet string
	Row   int // -1 when not applicable
	Col   int // -1 when not applicable
	Err   error
}

func (e *SheetError) Error() string {
	switch {
	case e.Row >= 0 && e.Col >= 0:
		return fmt.Sprintf("%s %s: %v", e.Op, NewCellRef(e.Sheet, e.Row, e.Col), e.Err)
	case e.Row >= 0:
		return fmt.Sprintf("%s %q row %d: %v", e.Op, e.Sheet, e.Row, e.Err)
	case e.Col >= 0:
		return fmt.Sprintf("%s %q column %d: %v", e.Op, e.Sheet, e.Col, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

func fileError(path string, err error) error {
	return &PackageError{Path: path, Err: fmt.Errorf("%w: %w", ErrFile, err)}
}

func formatError(path, part string, format string, args ...any) error {
	return &PackageError{Path: path, Part: part, Err: fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))}
}

func notFound(op, sheet string) error {
	return &SheetError{Op: op, Sheet: sheet, Row: -1, Col: -1, Err: ErrNotFound}
}

func outOfRange(op, sheet string, row, col int, bound int) error {
	return &SheetError{Op: op, Sheet: sheet, Row: row, Col: col,
		Err: fmt.Errorf("%w (bound %d)", ErrIndexOutOfRange, bound)}
}
