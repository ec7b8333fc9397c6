package xlsheet

// CellType records the value type a cell carried in the package when it was
// loaded. Values themselves are always plain text; the type is kept only so
// callers can see what the text normalization discarded.
type CellType int

const (
	CellBlank CellType = iota
	CellText
	CellNumber
	CellBoolean
	CellSharedString
	CellInlineString
	CellDate
	CellError
)

// String returns a human-readable name for the CellType.
func (ct CellType) String() string {
	switch ct {
	case CellBlank:
		return "Blank"
	case CellText:
		return "Text"
	case CellNumber:
		return "Number"
	case CellBoolean:
		return "Boolean"
	case CellSharedString:
		return "SharedString"
	case CellInlineString:
		return "InlineString"
	case CellDate:
		return "Date"
	case CellError:
		return "Error"
	default:
		return "Unknown"
	}
}

// cellTypeOf maps the t attribute of a <c> element to a CellType.
// hasValue reports whether the cell carried a value node.
func cellTypeOf(t string, hasValue bool) CellType {
	switch t {
	case "s":
		return CellSharedString
	case "inlineStr":
		return CellInlineString
	case "b":
		return CellBoolean
	case "str":
		return CellText
	case "e":
		return CellError
	case "d":
		return CellDate
	}
	if !hasValue {
		return CellBlank
	}
	return CellNumber
}
