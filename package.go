package xlsheet

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	relTypeOfficeDocument = "/officeDocument"
	relTypeSharedStrings  = "/sharedStrings"
	relTypeWorksheet      = "/worksheet"
	defaultWorkbookPart   = "xl/workbook.xml"
)

// xlsxRelationships maps a package relationships part (_rels/*.rels).
type xlsxRelationships struct {
	Relationships []xlsxRelationship `xml:"Relationship"`
}

type xlsxRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// xlsxWorkbook maps the parts of workbook.xml the manager cares about.
type xlsxWorkbook struct {
	Sheets []xlsxSheet `xml:"sheets>sheet"`
}

// xlsxSheet is one <sheet> entry. The relationship id lives in a namespaced
// attribute (r:id) whose namespace differs between transitional and strict
// documents, so it is picked out of the raw attribute list.
type xlsxSheet struct {
	Name    string     `xml:"name,attr"`
	SheetID string     `xml:"sheetId,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`
}

func (s xlsxSheet) relID() string {
	for _, a := range s.Attrs {
		if a.Name.Local == "id" && a.Name.Space != "" {
			return a.Value
		}
	}
	return ""
}

// sheetDef is one sheet definition resolved to its part. Type is the
// relationship type, which tells worksheets from chartsheets, dialog sheets
// and macro sheets.
type sheetDef struct {
	Name string
	ID   string
	Part string
	Type string
}

// isWorksheet reports whether the part carries <sheetData>. A relationship
// without a type is taken to be a worksheet.
func (d sheetDef) isWorksheet() bool {
	return d.Type == "" || strings.HasSuffix(d.Type, relTypeWorksheet)
}

// opcPackage is an opened workbook package.
type opcPackage struct {
	path          string
	zr            *zip.ReadCloser
	files         map[string]*zip.File // lower-cased part name → entry
	workbookPart  string
	sharedStrings string // part name, empty if the workbook has none
	sheets        []sheetDef
}

// openPackage opens the zip container at path and resolves the workbook
// definition and the sheet → worksheet part mapping.
func openPackage(filePath string) (*opcPackage, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) || errors.Is(err, zip.ErrChecksum) {
			return nil, formatError(filePath, "", "not a zip package: %v", err)
		}
		return nil, fileError(filePath, err)
	}
	p := &opcPackage{
		path:  filePath,
		zr:    zr,
		files: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		p.files[strings.ToLower(strings.TrimPrefix(f.Name, "/"))] = f
	}
	if err := p.resolve(); err != nil {
		zr.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the underlying file.
func (p *opcPackage) Close() error {
	return p.zr.Close()
}

func (p *opcPackage) lookup(part string) *zip.File {
	return p.files[strings.ToLower(part)]
}

func (p *opcPackage) has(part string) bool {
	return p.lookup(part) != nil
}

// open returns a reader over the uncompressed content of a part.
func (p *opcPackage) open(part string) (io.ReadCloser, error) {
	f := p.lookup(part)
	if f == nil {
		return nil, formatError(p.path, part, "part missing from package")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, formatError(p.path, part, "open part: %v", err)
	}
	return rc, nil
}

// readPart returns the full uncompressed content of a part.
func (p *opcPackage) readPart(part string) ([]byte, error) {
	rc, err := p.open(part)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, formatError(p.path, part, "read part: %v", err)
	}
	return data, nil
}

func (p *opcPackage) decodePart(part string, v any) error {
	rc, err := p.open(part)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return formatError(p.path, part, "decode xml: %v", err)
	}
	return nil
}

// relationships reads the .rels part belonging to part. A missing rels part
// yields no relationships.
func (p *opcPackage) relationships(part string) ([]xlsxRelationship, error) {
	relsPart := relsPartFor(part)
	if !p.has(relsPart) {
		return nil, nil
	}
	var rels xlsxRelationships
	if err := p.decodePart(relsPart, &rels); err != nil {
		return nil, err
	}
	return rels.Relationships, nil
}

func (p *opcPackage) resolve() error {
	rootRels, err := p.relationships("")
	if err != nil {
		return err
	}
	p.workbookPart = defaultWorkbookPart
	for _, r := range rootRels {
		if strings.HasSuffix(r.Type, relTypeOfficeDocument) {
			p.workbookPart = resolveTarget("", r.Target)
			break
		}
	}
	if !p.has(p.workbookPart) {
		return formatError(p.path, p.workbookPart, "workbook definition missing")
	}

	var wb xlsxWorkbook
	if err := p.decodePart(p.workbookPart, &wb); err != nil {
		return err
	}
	wbRels, err := p.relationships(p.workbookPart)
	if err != nil {
		return err
	}
	targets := make(map[string]xlsxRelationship, len(wbRels))
	for _, r := range wbRels {
		if r.TargetMode == "External" {
			continue
		}
		target := resolveTarget(p.workbookPart, r.Target)
		targets[r.ID] = xlsxRelationship{ID: r.ID, Type: r.Type, Target: target}
		if strings.HasSuffix(r.Type, relTypeSharedStrings) && p.sharedStrings == "" {
			p.sharedStrings = target
		}
	}

	for _, s := range wb.Sheets {
		id := s.relID()
		rel, ok := targets[id]
		if !ok {
			return formatError(p.path, p.workbookPart, "sheet %q references unknown relationship %q", s.Name, id)
		}
		if !p.has(rel.Target) {
			return formatError(p.path, rel.Target, "worksheet part for sheet %q missing", s.Name)
		}
		p.sheets = append(p.sheets, sheetDef{Name: s.Name, ID: id, Part: rel.Target, Type: rel.Type})
	}
	return nil
}

// lookupSheet returns the first sheet definition named name.
func (p *opcPackage) lookupSheet(name string) (sheetDef, bool) {
	for _, s := range p.sheets {
		if s.Name == name {
			return s, true
		}
	}
	return sheetDef{}, false
}

// sheetPart returns the worksheet part of the sheet named name. Sheets whose
// part is not a worksheet have none.
func (p *opcPackage) sheetPart(name string) (string, bool) {
	def, ok := p.lookupSheet(name)
	if !ok || !def.isWorksheet() {
		return "", false
	}
	return def.Part, true
}

// relsPartFor returns the relationships part name for a source part;
// the empty string denotes the package root.
func relsPartFor(part string) string {
	if part == "" {
		return "_rels/.rels"
	}
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// resolveTarget resolves a relationship target against its source part.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(path.Dir(source), target)
}

func (d sheetDef) String() string {
	return fmt.Sprintf("%s (%s → %s)", d.Name, d.ID, d.Part)
}
