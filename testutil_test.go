package xlsheet

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// createLevelsWorkbook creates a workbook built by excelize.
// Layout of Sheet1:
//
//	A1: "Name"  B1: "H_m"  C1: "H_ft"
//	A2: "L1"    B2: "0"    C2: "0"
//	A3: "L2"    B3: "3.5"  C3: "11.48"
//
// A second sheet "Notes" holds a single styled cell.
func createLevelsWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Name", "H_m", "H_ft"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"L1", "0", "0"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"L2", "3.5", "11.48"}))

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "Imported from survey"))
	require.NoError(t, f.SetCellStyle("Notes", "A1", "A1", bold))

	path := filepath.Join(t.TempDir(), "levels.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// fixtureSheet is one worksheet of a hand-assembled package. sheetData is
// the raw content of the <sheetData> element.
type fixtureSheet struct {
	name      string
	sheetData string
}

const (
	nsMain = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkg  = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// packageParts builds the parts of a minimal workbook package. A nil sst
// leaves out the shared-string part.
func packageParts(sst []string, sheets ...fixtureSheet) map[string]string {
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/></Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="` + nsPkg + `">` +
			`<Relationship Id="rId1" Type="` + nsRel + `/officeDocument" Target="xl/workbook.xml"/>` +
			`</Relationships>`,
		"xl/styles.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<styleSheet xmlns="` + nsMain + `"><numFmts count="1"><numFmt numFmtId="164" formatCode="0.00"/></numFmts></styleSheet>`,
	}

	var wb, rels strings.Builder
	wb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	wb.WriteString(`<workbook xmlns="` + nsMain + `" xmlns:r="` + nsRel + `"><sheets>`)
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	rels.WriteString(`<Relationships xmlns="` + nsPkg + `">`)
	for i, s := range sheets {
		id := fmt.Sprintf("rId%d", i+1)
		fmt.Fprintf(&wb, `<sheet name="%s" sheetId="%d" r:id="%s"/>`, s.name, i+1, id)
		fmt.Fprintf(&rels, `<Relationship Id="%s" Type="%s/worksheet" Target="worksheets/sheet%d.xml"/>`, id, nsRel, i+1)
		parts[fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)] = worksheetXML(s.sheetData)
	}
	wb.WriteString(`</sheets><definedNames><definedName name="Heights">Sheet1!$B$2:$B$3</definedName></definedNames></workbook>`)
	if sst != nil {
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="%s/sharedStrings" Target="sharedStrings.xml"/>`, len(sheets)+1, nsRel)
		var b strings.Builder
		fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><sst xmlns="%s" count="%d" uniqueCount="%d">`, nsMain, len(sst), len(sst))
		for _, s := range sst {
			b.WriteString("<si><t>" + s + "</t></si>")
		}
		b.WriteString("</sst>")
		parts["xl/sharedStrings.xml"] = b.String()
	}
	rels.WriteString(`</Relationships>`)
	parts["xl/workbook.xml"] = wb.String()
	parts["xl/_rels/workbook.xml.rels"] = rels.String()
	return parts
}

func worksheetXML(sheetData string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<worksheet xmlns="` + nsMain + `" xmlns:r="` + nsRel + `">` +
		`<dimension ref="A1:C3"/><sheetViews><sheetView workbookViewId="0"/></sheetViews>` +
		`<sheetData>` + sheetData + `</sheetData>` +
		`<mergeCells count="1"><mergeCell ref="A5:B5"/></mergeCells>` +
		`<pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/>` +
		`</worksheet>`
}

// writePackage zips parts into a new file and returns its path.
func writePackage(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writePackageTo(t, path, parts)
	return path
}

func writePackageTo(t *testing.T, path string, parts map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, parts[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// readParts returns the uncompressed content of every part of a package.
func readParts(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[f.Name] = string(data)
	}
	return parts
}

// worksheetPart returns the content of the worksheet part that excelize
// maps to the given sheet name.
func worksheetPart(t *testing.T, path, sheet string) string {
	t.Helper()
	pkg, err := openPackage(path)
	require.NoError(t, err)
	defer pkg.Close()
	part, ok := pkg.sheetPart(sheet)
	require.True(t, ok, "sheet %q has no part", sheet)
	data, err := pkg.readPart(part)
	require.NoError(t, err)
	return string(data)
}

// xmlRow builds the XML of one <row> holding string-typed literal cells.
func xmlRow(r int, values ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<row r="%d">`, r)
	for j, v := range values {
		ref, _ := excelize.CoordinatesToCellName(j+1, r)
		fmt.Fprintf(&b, `<c r="%s" t="str"><v>%s</v></c>`, ref, v)
	}
	b.WriteString("</row>")
	return b.String()
}

// addChartsheet appends a chartsheet named name to the parts built by
// packageParts. Its part is xl/chartsheets/sheet1.xml.
func addChartsheet(parts map[string]string, name string) {
	parts["xl/workbook.xml"] = strings.Replace(parts["xl/workbook.xml"], "</sheets>",
		`<sheet name="`+name+`" sheetId="99" r:id="rIdChart"/></sheets>`, 1)
	parts["xl/_rels/workbook.xml.rels"] = strings.Replace(parts["xl/_rels/workbook.xml.rels"], "</Relationships>",
		`<Relationship Id="rIdChart" Type="`+nsRel+`/chartsheet" Target="chartsheets/sheet1.xml"/></Relationships>`, 1)
	parts["xl/chartsheets/sheet1.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<chartsheet xmlns="` + nsMain + `" xmlns:r="` + nsRel + `">` +
		`<sheetViews><sheetView workbookViewId="0"/></sheetViews><drawing r:id="rId1"/></chartsheet>`
}
