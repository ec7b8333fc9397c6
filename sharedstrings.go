package xlsheet

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// sharedStrings is the workbook's shared string table, in index order.
type sharedStrings []string

// parseSharedStrings reads every <si> item of a shared-string part.
func parseSharedStrings(r io.Reader) (sharedStrings, error) {
	dec := xml.NewDecoder(r)
	var sst sharedStrings
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return sst, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "si" {
			continue
		}
		text, err := readRichText(dec, start)
		if err != nil {
			return nil, err
		}
		sst = append(sst, text)
	}
}

// lookup resolves the raw <v> text of a shared-string cell.
func (s sharedStrings) lookup(raw string) (string, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("shared string index %q is not an integer", raw)
	}
	if idx < 0 || idx >= len(s) {
		return "", fmt.Errorf("shared string index %d out of range [0,%d)", idx, len(s))
	}
	return s[idx], nil
}

// readRichText collects the text of an <si> or <is> element: either its
// direct <t> child or the concatenated <t> of each <r> run. Phonetic runs
// (<rPh>) are skipped.
func readRichText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return "", err
				}
				b.WriteString(s)
			case "rPh":
				if err := dec.Skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return b.String(), nil
			}
		}
	}
}
