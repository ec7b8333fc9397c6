package xlsheet

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
)

// sheet holds the in-memory rows of one worksheet. types parallels rows.
type sheet struct {
	name  string
	rows  [][]string
	types [][]CellType
	dirty bool
}

// workbook is the table store: sheet name → rows, plus definition order.
type workbook struct {
	order  []string
	sheets map[string]*sheet
}

// load opens the package at path and materializes every sheet.
// No partial workbook is returned on failure.
func load(path string, logger *slog.Logger) (*workbook, error) {
	pkg, err := openPackage(path)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()

	var sst sharedStrings
	if pkg.sharedStrings != "" && pkg.has(pkg.sharedStrings) {
		rc, err := pkg.open(pkg.sharedStrings)
		if err != nil {
			return nil, err
		}
		sst, err = parseSharedStrings(rc)
		rc.Close()
		if err != nil {
			return nil, formatError(path, pkg.sharedStrings, "parse shared strings: %v", err)
		}
	}
	logger.Debug("package opened", "path", path, "workbook", pkg.workbookPart,
		"sheets", len(pkg.sheets), "sharedStrings", len(sst))

	wb := &workbook{sheets: make(map[string]*sheet, len(pkg.sheets))}
	for _, def := range pkg.sheets {
		if _, dup := wb.sheets[def.Name]; dup {
			return nil, formatError(path, pkg.workbookPart, "duplicate sheet name %q", def.Name)
		}
		rc, err := pkg.open(def.Part)
		if err != nil {
			return nil, err
		}
		sh, err := readWorksheet(rc, def.Name, sst)
		rc.Close()
		if err != nil {
			return nil, formatError(path, def.Part, "%v", err)
		}
		wb.order = append(wb.order, def.Name)
		wb.sheets[def.Name] = sh
		logger.Debug("sheet loaded", "sheet", def, "rows", len(sh.rows))
	}
	return wb, nil
}

// readWorksheet reads the rows and cells of <sheetData> in document order.
func readWorksheet(r io.Reader, name string, sst sharedStrings) (*sheet, error) {
	sh := &sheet{name: name}
	dec := xml.NewDecoder(r)
	inSheetData := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return sh, nil
		}
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %v", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "sheetData":
				inSheetData = true
			case !inSheetData:
			case t.Name.Local == "row":
				sh.rows = append(sh.rows, []string{})
				sh.types = append(sh.types, []CellType{})
			case t.Name.Local == "c":
				if len(sh.rows) == 0 {
					return nil, fmt.Errorf("sheet %q: cell outside of a row", name)
				}
				val, typ, err := readCell(dec, t, sst)
				if err != nil {
					return nil, fmt.Errorf("sheet %q row %d: %v", name, len(sh.rows)-1, err)
				}
				last := len(sh.rows) - 1
				sh.rows[last] = append(sh.rows[last], val)
				sh.types[last] = append(sh.types[last], typ)
			}
		case xml.EndElement:
			if t.Name.Local == "sheetData" {
				inSheetData = false
			}
		}
	}
}

// readCell consumes a <c> element and returns its text value and original type.
func readCell(dec *xml.Decoder, start xml.StartElement, sst sharedStrings) (string, CellType, error) {
	var t, ref string
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "t":
			t = a.Value
		case "r":
			ref = a.Value
		}
	}

	var value, inline string
	hasValue, hasInline := false, false
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", CellBlank, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "v":
				if err := dec.DecodeElement(&value, &el); err != nil {
					return "", CellBlank, err
				}
				hasValue = true
			case "is":
				if inline, err = readRichText(dec, el); err != nil {
					return "", CellBlank, err
				}
				hasInline = true
			default:
				if err := dec.Skip(); err != nil {
					return "", CellBlank, err
				}
			}
		case xml.EndElement:
			if el.Name == start.Name {
				typ := cellTypeOf(t, hasValue || hasInline)
				switch typ {
				case CellSharedString:
					if !hasValue {
						return "", typ, nil
					}
					s, err := sst.lookup(value)
					if err != nil {
						return "", typ, fmt.Errorf("cell %s: %v", ref, err)
					}
					return s, typ, nil
				case CellInlineString:
					return inline, typ, nil
				}
				return value, typ, nil
			}
		}
	}
}
