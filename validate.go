package xlsheet

import (
	"fmt"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Sheet cannot be read as a table
	SeverityWarning                 // Sheet reads, but may produce unexpected results
)

// ValidationIssue is a single problem found in a sheet's table shape.
type ValidationIssue struct {
	Severity Severity
	CellRef  CellRef
	Message  string
}

// String formats the issue as "[ERROR] Sheet1!A2: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.CellRef, v.Message)
}

// Validate checks that the named sheet has the shape of a header-plus-rows
// table. It never changes the store. A non-nil error means the sheet is unknown.
func (m *Manager) Validate(name string) ([]ValidationIssue, error) {
	sh, err := m.sheet("validate", name)
	if err != nil {
		return nil, err
	}
	if len(sh.rows) == 0 {
		return []ValidationIssue{{
			Severity: SeverityError,
			CellRef:  NewCellRef(name, 0, 0),
			Message:  "sheet has no rows",
		}}, nil
	}

	var issues []ValidationIssue
	issues = append(issues, validateHeader(name, sh.rows[0])...)
	issues = append(issues, validateRowLengths(name, sh)...)
	return issues, nil
}

// validateHeader reports empty and duplicate header cells.
func validateHeader(name string, header []string) []ValidationIssue {
	if len(header) == 0 {
		return []ValidationIssue{{
			Severity: SeverityError,
			CellRef:  NewCellRef(name, 0, 0),
			Message:  "header row is empty",
		}}
	}
	var issues []ValidationIssue
	seen := make(map[string]int, len(header))
	for j, h := range header {
		key := strings.TrimSpace(h)
		if key == "" {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				CellRef:  NewCellRef(name, 0, j),
				Message:  fmt.Sprintf("empty header, column is addressed as %q", ColToName(j)),
			})
			continue
		}
		if first, dup := seen[key]; dup {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				CellRef:  NewCellRef(name, 0, j),
				Message:  fmt.Sprintf("duplicate header %q (first in column %s)", key, ColToName(first)),
			})
			continue
		}
		seen[key] = j
		if key == "row" || key == "num" {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				CellRef:  NewCellRef(name, 0, j),
				Message:  fmt.Sprintf("header %q hides the Filter builtin of the same name", key),
			})
		}
	}
	return issues
}

// validateRowLengths reports rows shorter or longer than the header.
func validateRowLengths(name string, sh *sheet) []ValidationIssue {
	var issues []ValidationIssue
	width := sh.width()
	for i, row := range sh.rows[1:] {
		switch {
		case len(row) < width:
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				CellRef:  NewCellRef(name, i+1, len(row)),
				Message:  fmt.Sprintf("row has %d cells, header has %d; missing cells read as empty", len(row), width),
			})
		case len(row) > width:
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				CellRef:  NewCellRef(name, i+1, width),
				Message:  fmt.Sprintf("row has %d cells, header has %d; extra cells are outside Column's bound", len(row), width),
			})
		}
	}
	return issues
}
