package xlsheet

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Save writes the current rows of every tracked sheet back into the package
// the Manager was opened from.
//
// Only the <sheetData> element of each rewritten worksheet part changes, along
// with the ref of its <dimension> which is recomputed from the current rows;
// every other part is copied without being recompressed. Cells are written as
// literal text (t="str") unless WithPreserveTypes is set. A tracked sheet that
// has no worksheet part in the package (a renamed or removed sheet, or a
// chartsheet) is skipped, or reported as ErrNotFound under WithStrictSave.
//
// The new package is assembled in a temporary file next to the original and
// renamed over it once complete, so a failed Save leaves the file untouched.
func (m *Manager) Save() error {
	return m.saveTo(m.path)
}

// SaveAs writes the package to dst, using the file the Manager was opened
// from as the source of every part it does not rewrite.
func (m *Manager) SaveAs(dst string) error {
	return m.saveTo(dst)
}

func (m *Manager) saveTo(dst string) (err error) {
	if m.opts.preSave != nil {
		if err := m.opts.preSave(m); err != nil {
			return fmt.Errorf("pre-save: %w", err)
		}
	}

	pkg, err := openPackage(m.path)
	if err != nil {
		return err
	}
	pkgOpen := true
	defer func() {
		if pkgOpen {
			pkg.Close()
		}
	}()

	rewrites := make(map[string]*sheet)
	for _, name := range m.wb.order {
		sh := m.wb.sheets[name]
		if m.opts.dirtyOnly && !sh.dirty {
			continue
		}
		part, ok := pkg.sheetPart(name)
		if !ok {
			if m.opts.strictSave {
				return &SheetError{Op: "save", Sheet: name, Row: -1, Col: -1,
					Err: fmt.Errorf("%w: no worksheet part in package %s", ErrNotFound, m.path)}
			}
			if def, found := pkg.lookupSheet(name); found {
				m.logger.Warn("sheet is not a worksheet, skipped", "sheet", name, "part", def.Part, "type", def.Type)
			} else {
				m.logger.Warn("sheet has no worksheet part, skipped", "sheet", name, "path", m.path)
			}
			continue
		}
		rewrites[strings.ToLower(part)] = sh
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(m.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fileError(dst, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, f := range pkg.zr.File {
		sh, ok := rewrites[strings.ToLower(strings.TrimPrefix(f.Name, "/"))]
		if !ok {
			if err = zw.Copy(f); err != nil {
				return fileError(dst, err)
			}
			continue
		}
		if err = m.rewriteWorksheet(pkg, zw, f, sh); err != nil {
			return err
		}
		m.logger.Debug("sheet written", "sheet", sh.name, "part", f.Name, "rows", len(sh.rows))
	}
	if err = zw.Close(); err != nil {
		return fileError(dst, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fileError(dst, err)
	}
	if err = tmp.Close(); err != nil {
		return fileError(dst, err)
	}
	pkgOpen = false
	if err = pkg.Close(); err != nil {
		return fileError(m.path, err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fileError(dst, err)
	}

	if sameFile(dst, m.path) {
		for _, sh := range rewrites {
			sh.dirty = false
		}
	}
	m.logger.Debug("package saved", "path", dst, "sheets", len(rewrites))
	return nil
}

// rewriteWorksheet copies a worksheet part into zw with its <sheetData>
// replaced by the rows of sh.
func (m *Manager) rewriteWorksheet(pkg *opcPackage, zw *zip.Writer, f *zip.File, sh *sheet) error {
	part := strings.TrimPrefix(f.Name, "/")
	data, err := pkg.readPart(part)
	if err != nil {
		return err
	}
	start, end, prefix, err := locateSheetData(data)
	if err != nil {
		return formatError(pkg.path, part, "%v", err)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.Name,
		Method:   f.Method,
		Modified: f.Modified,
	})
	if err != nil {
		return fileError(pkg.path, err)
	}
	head := data[:start]
	if refStart, refEnd, ok := locateDimensionRef(head); ok {
		if _, err := w.Write(head[:refStart]); err != nil {
			return fileError(pkg.path, err)
		}
		if _, err := io.WriteString(w, dimensionRef(sh.rows)); err != nil {
			return fileError(pkg.path, err)
		}
		head = head[refEnd:]
	}
	if _, err := w.Write(head); err != nil {
		return fileError(pkg.path, err)
	}
	if err := writeSheetData(w, prefix, sh, m.opts.preserveTypes); err != nil {
		var se *SheetError
		if errors.As(err, &se) {
			return err
		}
		return fileError(pkg.path, err)
	}
	if _, err := w.Write(data[end:]); err != nil {
		return fileError(pkg.path, err)
	}
	return nil
}

// locateSheetData returns the byte span of the <sheetData> element in a
// worksheet part, and the namespace prefix (with colon) its tag uses.
func locateSheetData(data []byte) (start, end int, prefix string, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return 0, 0, "", errors.New("worksheet has no sheetData element")
		}
		if err != nil {
			return 0, 0, "", err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheetData" {
			continue
		}
		if err := dec.Skip(); err != nil {
			return 0, 0, "", err
		}
		return int(offset), int(dec.InputOffset()), tagPrefix(data[offset:]), nil
	}
}

var refAttr = regexp.MustCompile(`\sref\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// locateDimensionRef returns the byte span of the ref attribute value of the
// <dimension> element in head, the part of a worksheet before <sheetData>.
func locateDimensionRef(head []byte) (start, end int, ok bool) {
	dec := xml.NewDecoder(bytes.NewReader(head))
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return 0, 0, false
		}
		se, isStart := tok.(xml.StartElement)
		if !isStart || se.Name.Local != "dimension" {
			continue
		}
		raw := head[offset:dec.InputOffset()]
		loc := refAttr.FindSubmatchIndex(raw)
		if loc == nil {
			return 0, 0, false
		}
		if loc[2] < 0 {
			loc[2], loc[3] = loc[4], loc[5]
		}
		return int(offset) + loc[2], int(offset) + loc[3], true
	}
}

// dimensionRef returns the used range of rows, "A1" when nothing is used.
func dimensionRef(rows [][]string) string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 || (width == 1 && len(rows) == 1) {
		return "A1"
	}
	last, err := excelize.CoordinatesToCellName(width, len(rows))
	if err != nil {
		return "A1"
	}
	return "A1:" + last
}

// tagPrefix extracts "x:" from raw bytes starting with "<x:name".
func tagPrefix(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte("<"))
	if i := bytes.IndexAny(raw, " \t\r\n/>"); i >= 0 {
		raw = raw[:i]
	}
	if i := bytes.IndexByte(raw, ':'); i >= 0 {
		return string(raw[:i+1])
	}
	return ""
}

// writeSheetData serializes rows as a <sheetData> element. Every cell is
// written, empty ones included, so row lengths survive a reload.
func writeSheetData(w io.Writer, prefix string, sh *sheet, preserveTypes bool) error {
	bw := bufio.NewWriter(w)
	sheetData, rowTag, cTag, vTag := prefix+"sheetData", prefix+"row", prefix+"c", prefix+"v"

	if len(sh.rows) == 0 {
		fmt.Fprintf(bw, "<%s/>", sheetData)
		return bw.Flush()
	}
	fmt.Fprintf(bw, "<%s>", sheetData)
	for i, row := range sh.rows {
		fmt.Fprintf(bw, `<%s r="%d">`, rowTag, i+1)
		for j, v := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return &SheetError{Op: "save", Sheet: sh.name, Row: i, Col: j, Err: err}
			}
			fmt.Fprintf(bw, `<%s r="%s"%s><%s>`, cTag, ref, typeAttr(sh.types[i][j], v, preserveTypes), vTag)
			if err := xml.EscapeText(bw, []byte(v)); err != nil {
				return err
			}
			fmt.Fprintf(bw, "</%s></%s>", vTag, cTag)
		}
		fmt.Fprintf(bw, "</%s>", rowTag)
	}
	fmt.Fprintf(bw, "</%s>", sheetData)
	return bw.Flush()
}

// typeAttr picks the t attribute for a serialized cell. Without
// preserveTypes every cell is literal text.
func typeAttr(ct CellType, v string, preserveTypes bool) string {
	if preserveTypes {
		switch ct {
		case CellNumber:
			if _, err := strconv.ParseFloat(v, 64); err == nil {
				return ""
			}
		case CellBoolean:
			if v == "0" || v == "1" {
				return ` t="b"`
			}
		}
	}
	return ` t="str"`
}

func sameFile(a, b string) bool {
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return os.SameFile(ai, bi)
}
