package domain

import "fmt"

// PositionKind discriminates the positional context a page carries.
type PositionKind int

const (
	// PositionNone means the page has no positional context.
	PositionNone PositionKind = iota
	// PositionPage locates content by PDF page number.
	PositionPage
	// PositionSection locates content by DOCX section and paragraph.
	PositionSection
	// PositionSheet locates content by XLSX sheet and row.
	PositionSheet
)

// Position is the positional context of a page within its source document.
// Exactly one kind is set; the zero value means no position.
type Position struct {
	Kind PositionKind

	Page int // PositionPage

	Section   string // PositionSection
	Paragraph int    // PositionSection, 0 = absent

	Sheet string // PositionSheet
	Row   int    // PositionSheet, 0 = absent
}

// PagePosition locates content on a one-based PDF page.
func PagePosition(page int) Position {
	return Position{Kind: PositionPage, Page: page}
}

// SectionPosition locates content in a DOCX section. paragraph may be 0.
func SectionPosition(section string, paragraph int) Position {
	return Position{Kind: PositionSection, Section: section, Paragraph: paragraph}
}

// SheetPosition locates content in an XLSX sheet. row may be 0.
func SheetPosition(sheet string, row int) Position {
	return Position{Kind: PositionSheet, Sheet: sheet, Row: row}
}

// Citation renders the position as a citation suffix: ", page 3",
// `, section "Lockout", paragraph 2`, `, sheet "Q1", row 4` or "".
// Precedence across kinds is fixed: page > section > sheet > none.
func (p Position) Citation() string {
	switch p.Kind {
	case PositionPage:
		return fmt.Sprintf(", page %d", p.Page)
	case PositionSection:
		s := fmt.Sprintf(", section %q", p.Section)
		if p.Paragraph > 0 {
			s += fmt.Sprintf(", paragraph %d", p.Paragraph)
		}
		return s
	case PositionSheet:
		s := fmt.Sprintf(", sheet %q", p.Sheet)
		if p.Row > 0 {
			s += fmt.Sprintf(", row %d", p.Row)
		}
		return s
	default:
		return ""
	}
}

// Page is one unit of extracted source content before chunking.
type Page struct {
	Text     string
	Position Position
}
