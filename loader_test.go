package xlsheet

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SharedStrings(t *testing.T) {
	sst := []string{"Level", "Height(m)", "Height(ft)"}
	path := writePackage(t, packageParts(sst, fixtureSheet{
		name: "Sheet1",
		sheetData: `<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>` +
			`<row r="2"><c r="A2" t="s"><v>2</v></c></row>`,
	}))

	m, err := Open(path)
	require.NoError(t, err)

	v, err := m.Cell("Sheet1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "Height(ft)", v)

	r, err := m.Row("Sheet1", 0)
	require.NoError(t, err)
	assert.Equal(t, sst, r)

	ct, err := m.CellType("Sheet1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, CellSharedString, ct)
}

func TestOpen_SharedStringOutOfRange(t *testing.T) {
	path := writePackage(t, packageParts([]string{"only"}, fixtureSheet{
		name:      "Sheet1",
		sheetData: `<row r="1"><c r="A1" t="s"><v>3</v></c></row>`,
	}))

	m, err := Open(path)
	assert.Nil(t, m)
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "A1")
	assert.Contains(t, err.Error(), "out of range")
}

func TestOpen_SharedStringWithoutTable(t *testing.T) {
	path := writePackage(t, packageParts(nil, fixtureSheet{
		name:      "Sheet1",
		sheetData: `<row r="1"><c r="A1" t="s"><v>0</v></c></row>`,
	}))
	_, err := Open(path)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpen_RichTextSharedString(t *testing.T) {
	parts := packageParts([]string{"plain"}, fixtureSheet{
		name:      "Sheet1",
		sheetData: `<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>`,
	})
	parts["xl/sharedStrings.xml"] = `<sst xmlns="` + nsMain + `" count="2" uniqueCount="2">` +
		`<si><t xml:space="preserve"> plain </t></si>` +
		`<si><r><rPr><b/></rPr><t>Bold</t></r><r><t xml:space="preserve"> tail</t></r><rPh sb="0" eb="1"><t>ignored</t></rPh></si>` +
		`</sst>`
	m, err := Open(writePackage(t, parts))
	require.NoError(t, err)

	r, err := m.Row("Sheet1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{" plain ", "Bold tail"}, r)
}

func TestOpen_CellValuesVerbatim(t *testing.T) {
	path := writePackage(t, packageParts(nil, fixtureSheet{
		name: "Sheet1",
		sheetData: `<row r="1">` +
			`<c r="A1"><v>45123</v></c>` +
			`<c r="B1" t="n"><v>1.50</v></c>` +
			`<c r="C1" t="b"><v>1</v></c>` +
			`<c r="D1" t="inlineStr"><is><t>inline</t></is></c>` +
			`<c r="E1" t="str"><f>A1&amp;"x"</f><v>45123x</v></c>` +
			`<c r="F1" s="3"/>` +
			`<c r="G1" t="e"><v>#DIV/0!</v></c>` +
			`<c r="H1" t="d"><v>2024-01-02T00:00:00</v></c>` +
			`</row>`,
	}))

	m, err := Open(path)
	require.NoError(t, err)

	r, err := m.Row("Sheet1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"45123", "1.50", "1", "inline", "45123x", "", "#DIV/0!", "2024-01-02T00:00:00"}, r)

	want := []CellType{CellNumber, CellNumber, CellBoolean, CellInlineString, CellText, CellBlank, CellError, CellDate}
	for j, ct := range want {
		got, err := m.CellType("Sheet1", 0, j)
		require.NoError(t, err)
		assert.Equal(t, ct, got, "column %s", ColToName(j))
	}
}

func TestOpen_NoPaddingForSparseCells(t *testing.T) {
	path := writePackage(t, packageParts(nil, fixtureSheet{
		name:      "Sheet1",
		sheetData: `<row r="1"><c r="A1" t="str"><v>a</v></c><c r="D1" t="str"><v>d</v></c></row><row r="5"><c r="B5" t="str"><v>b</v></c></row>`,
	}))
	m, err := Open(path)
	require.NoError(t, err)

	rows, err := m.Worksheet("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "d"}, {"b"}}, rows)
}

func TestOpen_SheetOrderFollowsWorkbook(t *testing.T) {
	path := writePackage(t, packageParts(nil,
		fixtureSheet{name: "Zeta", sheetData: xmlRow(1, "z")},
		fixtureSheet{name: "Alpha", sheetData: xmlRow(1, "a")},
		fixtureSheet{name: "Mid", sheetData: xmlRow(1, "m")},
	))
	for i := 0; i < 3; i++ {
		m, err := Open(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, m.SheetNames())
	}
}

func TestOpen_DuplicateSheetName(t *testing.T) {
	path := writePackage(t, packageParts(nil,
		fixtureSheet{name: "Same", sheetData: xmlRow(1, "a")},
		fixtureSheet{name: "Same", sheetData: xmlRow(1, "b")},
	))
	_, err := Open(path)
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.ErrorIs(t, err, ErrFile)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var pe *PackageError
	require.True(t, errors.As(err, &pe))
	assert.Empty(t, pe.Part)
}

func TestOpen_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("Name,H_m\nL1,0\n"), 0o644))
	_, err := Open(path)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpen_MissingWorkbook(t *testing.T) {
	parts := packageParts(nil, fixtureSheet{name: "Sheet1", sheetData: xmlRow(1, "a")})
	delete(parts, "xl/workbook.xml")
	_, err := Open(writePackage(t, parts))
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "xl/workbook.xml")
}

func TestOpen_MissingWorksheetPart(t *testing.T) {
	parts := packageParts(nil,
		fixtureSheet{name: "Sheet1", sheetData: xmlRow(1, "a")},
		fixtureSheet{name: "Sheet2", sheetData: xmlRow(1, "b")},
	)
	delete(parts, "xl/worksheets/sheet2.xml")
	_, err := Open(writePackage(t, parts))
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), `"Sheet2"`)
}

func TestOpen_UnknownRelationship(t *testing.T) {
	parts := packageParts(nil, fixtureSheet{name: "Sheet1", sheetData: xmlRow(1, "a")})
	parts["xl/workbook.xml"] = strings.Replace(parts["xl/workbook.xml"], `r:id="rId1"`, `r:id="rId9"`, 1)
	_, err := Open(writePackage(t, parts))
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "rId9")
}

func TestOpen_MalformedWorksheet(t *testing.T) {
	parts := packageParts(nil, fixtureSheet{name: "Sheet1", sheetData: xmlRow(1, "a")})
	parts["xl/worksheets/sheet1.xml"] = `<worksheet xmlns="` + nsMain + `"><sheetData><row><c><v>1</v></row></sheetData></worksheet>`
	_, err := Open(writePackage(t, parts))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpen_AbsoluteTargetsAndCustomWorkbookPath(t *testing.T) {
	parts := packageParts(nil, fixtureSheet{name: "Data", sheetData: xmlRow(1, "x", "y")})
	parts["book/main.xml"] = parts["xl/workbook.xml"]
	parts["book/_rels/main.xml.rels"] = strings.Replace(parts["xl/_rels/workbook.xml.rels"],
		`Target="worksheets/sheet1.xml"`, `Target="/xl/worksheets/sheet1.xml"`, 1)
	delete(parts, "xl/workbook.xml")
	delete(parts, "xl/_rels/workbook.xml.rels")
	parts["_rels/.rels"] = strings.Replace(parts["_rels/.rels"], `Target="xl/workbook.xml"`, `Target="book/main.xml"`, 1)

	m, err := Open(writePackage(t, parts))
	require.NoError(t, err)
	r, err := m.Row("Data", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, r)
}

func TestOpen_PrefixedWorksheet(t *testing.T) {
	parts := packageParts(nil, fixtureSheet{name: "Sheet1"})
	parts["xl/worksheets/sheet1.xml"] = `<x:worksheet xmlns:x="` + nsMain + `"><x:sheetData>` +
		`<x:row r="1"><x:c r="A1" t="inlineStr"><x:is><x:t>pfx</x:t></x:is></x:c><x:c r="B1"><x:v>2</x:v></x:c></x:row>` +
		`</x:sheetData></x:worksheet>`
	m, err := Open(writePackage(t, parts))
	require.NoError(t, err)
	r, err := m.Row("Sheet1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"pfx", "2"}, r)
}
