package xlsheet

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable tree of the workbook: every sheet with
// its row count, declared width, and header row.
func (m *Manager) Describe() string {
	var b strings.Builder
	b.WriteString("Workbook: ")
	b.WriteString(m.path)
	b.WriteByte('\n')

	for _, name := range m.wb.order {
		sh := m.wb.sheets[name]
		fmt.Fprintf(&b, "  %s (%dx%d)", name, sh.width(), len(sh.rows))
		if sh.dirty {
			b.WriteString(" modified")
		}
		b.WriteByte('\n')
		if len(sh.rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    Header: %s\n", strings.Join(quoteAll(sh.rows[0]), ", "))
		if ragged := raggedRows(sh); ragged > 0 {
			fmt.Fprintf(&b, "    Ragged rows: %d\n", ragged)
		}
	}
	return b.String()
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

// raggedRows counts rows whose length differs from the header's.
func raggedRows(sh *sheet) int {
	n := 0
	for _, row := range sh.rows[1:] {
		if len(row) != sh.width() {
			n++
		}
	}
	return n
}
